package model

import (
	"github.com/shopspring/decimal"
)

// Invoice is the input record for XRechnung generation.
// Empty optional strings are treated as absent.
type Invoice struct {
	ID        string `json:"id" validate:"required"`
	IssueDate string `json:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate   string `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency  string `json:"currency" validate:"required,iso4217"`

	// TotalAmount is informational only; it is never cross-checked.
	TotalAmount decimal.Decimal `json:"totalAmount"`

	Supplier Party `json:"supplier"`
	Customer Party `json:"customer"`

	TaxTotal *TaxSummary `json:"taxTotal" validate:"required"`

	// PaymentDetails gates the PaymentMeans block by presence, not by content.
	PaymentDetails *PaymentInfo `json:"paymentDetails,omitempty"`

	Notes     []string   `json:"notes,omitempty"`
	LineItems []LineItem `json:"lineItems" validate:"required,min=1,dive"`
}

// Party is the supplier or customer of an invoice
type Party struct {
	Name       string `json:"name" validate:"required"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`

	// Reserved: accepted and validated, not written to the document.
	TaxNumber     string `json:"taxNumber,omitempty"`
	LegalEntityID string `json:"legalEntityID,omitempty"`
}

// TaxSummary holds the document level tax total.
// Amounts are NullDecimal so an absent or null value stays distinguishable
// from a real zero.
type TaxSummary struct {
	TaxAmount     decimal.NullDecimal `json:"taxAmount" validate:"required,gte=0"`
	TaxPercentage decimal.NullDecimal `json:"taxPercentage" validate:"required,gte=0,lte=100"`
}

// PaymentInfo describes how the invoice is to be paid
type PaymentInfo struct {
	PaymentMeansCode string       `json:"paymentMeansCode,omitempty" validate:"omitempty,numeric"`
	PaymentID        string       `json:"paymentID,omitempty"`
	BankDetails      *BankDetails `json:"bankDetails,omitempty"`
}

// BankDetails is the payee financial account
type BankDetails struct {
	AccountName string `json:"accountName,omitempty"`
	IBAN        string `json:"iban,omitempty" validate:"omitempty,alphanum,min=15,max=34"`
	BIC         string `json:"bic,omitempty" validate:"omitempty,bic"`
	BankName    string `json:"bankName,omitempty"`
}

// LineItem is one billable entry on the invoice
type LineItem struct {
	ID          string              `json:"id" validate:"required"`
	Description string              `json:"description" validate:"required"`
	Quantity    decimal.NullDecimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.NullDecimal `json:"unitPrice" validate:"required"`

	// LineTotal is emitted as the line extension amount as given.
	LineTotal decimal.NullDecimal `json:"lineTotal" validate:"required"`
}

// HasPaymentMeans reports whether a PaymentMeans block will be emitted
func (inv *Invoice) HasPaymentMeans() bool {
	return inv.PaymentDetails != nil
}
