// Package inspect reads a UBL Invoice document and summarizes it.
// It is used to check generated output, not to import invoices.
package inspect

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/xrechnung-generator/internal/decimal"
	"github.com/rezonia/xrechnung-generator/internal/ubl"
)

// Party summarizes a supplier or customer
type Party struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city,omitempty"`
}

// Line summarizes an invoice line
type Line struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Amount      string `json:"amount"`
}

// Summary holds the key values of a UBL Invoice
type Summary struct {
	ID              string   `json:"id"`
	CustomizationID string   `json:"customization_id"`
	ProfileID       string   `json:"profile_id"`
	IssueDate       string   `json:"issue_date"`
	DueDate         string   `json:"due_date,omitempty"`
	Currency        string   `json:"currency"`
	Notes           []string `json:"notes,omitempty"`
	PaymentMeans    bool     `json:"payment_means"`
	Supplier        Party    `json:"supplier"`
	Customer        Party    `json:"customer"`
	TaxAmount       string   `json:"tax_amount"`
	TaxPercent      string   `json:"tax_percent"`
	Lines           []Line   `json:"lines"`
	LineTotal       string   `json:"line_total"`
	Warnings        []string `json:"warnings,omitempty"`
}

// IsXRechnung reports whether the document carries the EN16931
// customization and PEPPOL billing profile
func (s *Summary) IsXRechnung() bool {
	return s.CustomizationID == ubl.CustomizationID && s.ProfileID == ubl.ProfileID
}

// LooksLikeInvoice is a cheap check for a UBL Invoice root
func LooksLikeInvoice(content []byte) bool {
	return bytes.Contains(content, []byte("<Invoice")) &&
		bytes.Contains(content, []byte(ubl.NamespaceInvoice))
}

// Read parses a UBL Invoice document
func Read(data []byte) (*Summary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}
	if root.Tag != "Invoice" {
		return nil, fmt.Errorf("unexpected root element %q, want Invoice", root.FullTag())
	}
	if ns := root.SelectAttrValue("xmlns", ""); ns != ubl.NamespaceInvoice {
		return nil, fmt.Errorf("unexpected default namespace %q", ns)
	}

	s := &Summary{
		ID:              text(root, "cbc:ID"),
		CustomizationID: text(root, "cbc:CustomizationID"),
		ProfileID:       text(root, "cbc:ProfileID"),
		IssueDate:       text(root, "cbc:IssueDate"),
		DueDate:         text(root, "cbc:DueDate"),
		Currency:        text(root, "cbc:DocumentCurrencyCode"),
		PaymentMeans:    root.SelectElement("cac:PaymentMeans") != nil,
		Supplier:        party(root.FindElement("cac:AccountingSupplierParty/cac:Party")),
		Customer:        party(root.FindElement("cac:AccountingCustomerParty/cac:Party")),
		TaxAmount:       text(root, "cac:TaxTotal/cbc:TaxAmount"),
		TaxPercent:      text(root, "cac:TaxTotal/cac:TaxSubtotal/cbc:Percent"),
	}

	for _, note := range root.SelectElements("cbc:Note") {
		s.Notes = append(s.Notes, note.Text())
	}

	for _, el := range root.SelectElements("cac:InvoiceLine") {
		s.Lines = append(s.Lines, Line{
			ID:          text(el, "cbc:ID"),
			Description: text(el, "cac:Item/cbc:Description"),
			Quantity:    text(el, "cbc:InvoicedQuantity"),
			Amount:      text(el, "cbc:LineExtensionAmount"),
		})
	}

	s.Warnings = check(s)
	s.LineTotal, s.Warnings = lineTotal(s.Lines, s.Warnings)
	return s, nil
}

func check(s *Summary) []string {
	var warnings []string
	if s.ID == "" {
		warnings = append(warnings, "missing invoice ID")
	}
	if s.IssueDate == "" {
		warnings = append(warnings, "missing issue date")
	}
	if !s.IsXRechnung() {
		warnings = append(warnings, "customization or profile is not XRechnung / PEPPOL billing")
	}
	if s.Supplier.Country == "" {
		warnings = append(warnings, "missing supplier country")
	}
	if s.Customer.Country == "" {
		warnings = append(warnings, "missing customer country")
	}
	if len(s.Lines) == 0 {
		warnings = append(warnings, "no invoice lines")
	}
	return warnings
}

// lineTotal sums the line extension amounts
func lineTotal(lines []Line, warnings []string) (string, []string) {
	amounts := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		d, err := money.FromString(l.Amount)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %s: unreadable amount %q", l.ID, l.Amount))
			continue
		}
		amounts = append(amounts, d)
	}
	return money.Fixed2(money.Sum(amounts)), warnings
}

func party(el *etree.Element) Party {
	if el == nil {
		return Party{}
	}
	return Party{
		Name:    text(el, "cac:PartyName/cbc:Name"),
		Country: text(el, "cac:PostalAddress/cac:Country/cbc:IdentificationCode"),
		City:    text(el, "cac:PostalAddress/cbc:CityName"),
	}
}

func text(el *etree.Element, path string) string {
	if found := el.FindElement(path); found != nil {
		return found.Text()
	}
	return ""
}
