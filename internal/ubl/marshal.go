// Package ubl renders invoice records as UBL 2.1 Invoice documents using
// the XRechnung (EN16931 / PEPPOL BIS Billing 3) customization.
//
// The document is written as flat text in a fixed element order rather
// than through encoding/xml, so namespace declarations, indentation and
// the position of every optional element are stable byte for byte.
package ubl

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/xrechnung-generator/internal/decimal"
	"github.com/rezonia/xrechnung-generator/internal/model"
)

// XML namespaces
const (
	NamespaceInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceCAC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCBC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// Document identity, identical in every generated invoice
const (
	UBLVersionID    = "2.1"
	CustomizationID = "urn:cen.eu:en16931:2017"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	// InvoiceTypeCode 380 is a commercial invoice (UNTDID 1001)
	InvoiceTypeCode = "380"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="` + NamespaceInvoice + `"
         xmlns:cac="` + NamespaceCAC + `"
         xmlns:cbc="` + NamespaceCBC + `">
`

// Marshal renders inv as an XRechnung UBL Invoice document.
//
// inv must already have passed validation. Marshal only checks the parts
// it cannot render at all (a nil record, a missing tax total, no line
// items, an unset amount) and reports those as a *model.ContractError
// without returning any partial output. inv is not modified.
func Marshal(inv *model.Invoice) (string, error) {
	if err := checkShape(inv); err != nil {
		return "", err
	}

	w := &writer{}
	w.raw(header)

	w.leaf(1, "cbc:UBLVersionID", UBLVersionID)
	w.leaf(1, "cbc:CustomizationID", CustomizationID)
	w.leaf(1, "cbc:ProfileID", ProfileID)
	w.text(1, "cbc:ID", inv.ID)
	w.text(1, "cbc:IssueDate", inv.IssueDate)
	w.optional(1, "cbc:DueDate", inv.DueDate)
	w.leaf(1, "cbc:InvoiceTypeCode", InvoiceTypeCode)
	w.text(1, "cbc:DocumentCurrencyCode", inv.Currency)

	for _, note := range inv.Notes {
		w.text(1, "cbc:Note", note)
	}

	if inv.HasPaymentMeans() {
		writePaymentMeans(w, inv.PaymentDetails)
	}

	writeParty(w, "cac:AccountingSupplierParty", &inv.Supplier)
	writeParty(w, "cac:AccountingCustomerParty", &inv.Customer)

	writeTaxTotal(w, inv.TaxTotal)

	for i := range inv.LineItems {
		writeInvoiceLine(w, &inv.LineItems[i])
	}

	w.close(0, "Invoice")
	return w.String(), nil
}

func checkShape(inv *model.Invoice) error {
	if inv == nil {
		return model.NewContractError("invoice", "record is nil")
	}
	if inv.TaxTotal == nil {
		return model.NewContractError("taxTotal", "required object is missing")
	}
	if len(inv.LineItems) == 0 {
		return model.NewContractError("lineItems", "at least one line item is required")
	}

	if !inv.TaxTotal.TaxAmount.Valid {
		return missingAmount("taxTotal.taxAmount")
	}
	if !inv.TaxTotal.TaxPercentage.Valid {
		return missingAmount("taxTotal.taxPercentage")
	}
	for i, item := range inv.LineItems {
		switch {
		case !item.Quantity.Valid:
			return missingAmount(fmt.Sprintf("lineItems[%d].quantity", i))
		case !item.UnitPrice.Valid:
			return missingAmount(fmt.Sprintf("lineItems[%d].unitPrice", i))
		case !item.LineTotal.Valid:
			return missingAmount(fmt.Sprintf("lineItems[%d].lineTotal", i))
		}
	}
	return nil
}

func missingAmount(field string) error {
	return model.NewContractError(field, "required amount is missing")
}

func writePaymentMeans(w *writer, p *model.PaymentInfo) {
	w.open(1, "cac:PaymentMeans")
	w.optional(2, "cbc:PaymentMeansCode", p.PaymentMeansCode)
	w.optional(2, "cbc:PaymentID", p.PaymentID)

	if b := p.BankDetails; b != nil {
		w.open(2, "cac:PayeeFinancialAccount")
		w.optional(3, "cbc:Name", b.AccountName)
		w.optional(3, "cbc:ID", b.IBAN)
		w.optional(3, "cbc:SchemeID", b.BIC)
		w.optional(3, "cbc:BankName", b.BankName)
		w.close(2, "cac:PayeeFinancialAccount")
	}

	w.close(1, "cac:PaymentMeans")
}

// writeParty is shared by supplier and customer. Country is written
// unconditionally; an empty code yields an empty element.
func writeParty(w *writer, role string, p *model.Party) {
	w.open(1, role)
	w.open(2, "cac:Party")

	w.open(3, "cac:PartyName")
	w.text(4, "cbc:Name", p.Name)
	w.close(3, "cac:PartyName")

	w.open(3, "cac:PostalAddress")
	w.optional(4, "cbc:StreetName", p.Street)
	w.optional(4, "cbc:CityName", p.City)
	w.optional(4, "cbc:PostalZone", p.PostalCode)
	w.open(4, "cac:Country")
	w.text(5, "cbc:IdentificationCode", p.Country)
	w.close(4, "cac:Country")
	w.close(3, "cac:PostalAddress")

	w.close(2, "cac:Party")
	w.close(1, role)
}

func writeTaxTotal(w *writer, t *model.TaxSummary) {
	w.open(1, "cac:TaxTotal")
	w.amount(2, "cbc:TaxAmount", t.TaxAmount)
	w.open(2, "cac:TaxSubtotal")
	w.amount(3, "cbc:Percent", t.TaxPercentage)
	w.close(2, "cac:TaxSubtotal")
	w.close(1, "cac:TaxTotal")
}

func writeInvoiceLine(w *writer, item *model.LineItem) {
	w.open(1, "cac:InvoiceLine")
	w.text(2, "cbc:ID", item.ID)
	w.amount(2, "cbc:InvoicedQuantity", item.Quantity)
	w.amount(2, "cbc:LineExtensionAmount", item.LineTotal)

	w.open(2, "cac:Item")
	w.text(3, "cbc:Description", item.Description)
	w.close(2, "cac:Item")

	w.open(2, "cac:Price")
	w.amount(3, "cbc:PriceAmount", item.UnitPrice)
	w.close(2, "cac:Price")

	w.close(1, "cac:InvoiceLine")
}

// writer appends indented elements, two spaces per level
type writer struct {
	strings.Builder
}

func (w *writer) raw(s string) {
	w.WriteString(s)
}

func (w *writer) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString("  ")
	}
}

func (w *writer) open(depth int, tag string) {
	w.indent(depth)
	w.WriteString("<" + tag + ">\n")
}

func (w *writer) close(depth int, tag string) {
	w.indent(depth)
	w.WriteString("</" + tag + ">\n")
}

// leaf writes value verbatim
func (w *writer) leaf(depth int, tag, value string) {
	w.indent(depth)
	w.WriteString("<" + tag + ">")
	w.WriteString(value)
	w.WriteString("</" + tag + ">\n")
}

func (w *writer) text(depth int, tag, value string) {
	w.leaf(depth, tag, Escape(value))
}

func (w *writer) optional(depth int, tag, value string) {
	if value == "" {
		return
	}
	w.text(depth, tag, value)
}

func (w *writer) amount(depth int, tag string, d decimal.NullDecimal) {
	w.leaf(depth, tag, money.Fixed2(d.Decimal))
}
