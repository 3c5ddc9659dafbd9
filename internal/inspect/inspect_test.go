package inspect_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/xrechnung-generator/internal/inspect"
	"github.com/rezonia/xrechnung-generator/internal/model"
	"github.com/rezonia/xrechnung-generator/internal/ubl"
)

func generated(t *testing.T) []byte {
	t.Helper()
	inv := &model.Invoice{
		ID:        "INV-042",
		IssueDate: "2024-03-01",
		DueDate:   "2024-03-31",
		Currency:  "EUR",
		Notes:     []string{"Tom & Jerry"},
		Supplier:  model.Party{Name: "Supplier Inc.", City: "Berlin", Country: "DE"},
		Customer:  model.Party{Name: "Customer Ltd.", Country: "AT"},
		TaxTotal: &model.TaxSummary{
			TaxAmount:     decimal.NewNullDecimal(decimal.RequireFromString("3.8")),
			TaxPercentage: decimal.NewNullDecimal(decimal.NewFromInt(19)),
		},
		PaymentDetails: &model.PaymentInfo{},
		LineItems: []model.LineItem{
			{ID: "1", Description: "Pen", Quantity: decimal.NewNullDecimal(decimal.NewFromInt(4)), UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(5)), LineTotal: decimal.NewNullDecimal(decimal.NewFromInt(20))},
			{ID: "2", Description: "Ink <blue>", Quantity: decimal.NewNullDecimal(decimal.NewFromInt(1)), UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(0)), LineTotal: decimal.NewNullDecimal(decimal.NewFromInt(0))},
		},
	}
	out, err := ubl.Marshal(inv)
	require.NoError(t, err)
	return []byte(out)
}

func TestRead_GeneratedDocument(t *testing.T) {
	data := generated(t)
	require.True(t, inspect.LooksLikeInvoice(data))

	s, err := inspect.Read(data)
	require.NoError(t, err)

	assert.Equal(t, "INV-042", s.ID)
	assert.Equal(t, "2024-03-01", s.IssueDate)
	assert.Equal(t, "2024-03-31", s.DueDate)
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, []string{"Tom & Jerry"}, s.Notes)
	assert.True(t, s.PaymentMeans)
	assert.True(t, s.IsXRechnung())

	assert.Equal(t, inspect.Party{Name: "Supplier Inc.", Country: "DE", City: "Berlin"}, s.Supplier)
	assert.Equal(t, inspect.Party{Name: "Customer Ltd.", Country: "AT"}, s.Customer)
	assert.Equal(t, "3.80", s.TaxAmount)
	assert.Equal(t, "19.00", s.TaxPercent)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, inspect.Line{ID: "1", Description: "Pen", Quantity: "4.00", Amount: "20.00"}, s.Lines[0])
	assert.Equal(t, "Ink <blue>", s.Lines[1].Description)
	assert.Equal(t, "20.00", s.LineTotal)
	assert.Empty(t, s.Warnings)
}

func TestRead_Warnings(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
         xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
         xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:CustomizationID>urn:cen.eu:en16931:2017</cbc:CustomizationID>
</Invoice>`)

	s, err := inspect.Read(data)
	require.NoError(t, err)
	assert.False(t, s.IsXRechnung())
	assert.Contains(t, s.Warnings, "missing invoice ID")
	assert.Contains(t, s.Warnings, "no invoice lines")
	assert.Contains(t, s.Warnings, "missing supplier country")
	assert.Equal(t, "0.00", s.LineTotal)
}

func TestRead_UnreadableAmount(t *testing.T) {
	data := []byte(`<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
         xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
         xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cac:InvoiceLine>
    <cbc:ID>1</cbc:ID>
    <cbc:LineExtensionAmount>12.50</cbc:LineExtensionAmount>
  </cac:InvoiceLine>
  <cac:InvoiceLine>
    <cbc:ID>2</cbc:ID>
    <cbc:LineExtensionAmount>n/a</cbc:LineExtensionAmount>
  </cac:InvoiceLine>
</Invoice>`)

	s, err := inspect.Read(data)
	require.NoError(t, err)
	assert.Equal(t, "12.50", s.LineTotal)
	assert.Contains(t, s.Warnings, `line 2: unreadable amount "n/a"`)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"malformed", "<Invoice><ID></Invoice>", "parse"},
		{"empty", "", "empty"},
		{"wrong root", `<CreditNote xmlns="urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"/>`, "unexpected root"},
		{"wrong namespace", `<Invoice xmlns="urn:example"/>`, "namespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inspect.Read([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLooksLikeInvoice(t *testing.T) {
	assert.False(t, inspect.LooksLikeInvoice([]byte(`{"id":"INV-1"}`)))
	assert.False(t, inspect.LooksLikeInvoice([]byte(`<Invoice><InvoiceNo>1</InvoiceNo></Invoice>`)))
}
