// Package xrechnung provides a public API for generating XRechnung
// (UBL 2.1) invoice documents.
//
// This package exposes the invoice record types, the generator and the
// error types callers need to tell a rejected record from an I/O failure.
//
// Example usage:
//
//	gen, err := xrechnung.New(invoice)
//	if err != nil {
//	    var verrs xrechnung.ValidationErrors
//	    if errors.As(err, &verrs) {
//	        log.Fatalf("invalid fields: %v", verrs.Fields())
//	    }
//	    log.Fatal(err)
//	}
//	err = gen.WriteFile(ctx, "invoice.xml")
package xrechnung

import (
	"github.com/rezonia/xrechnung-generator/internal/generator"
	"github.com/rezonia/xrechnung-generator/internal/model"
	"github.com/rezonia/xrechnung-generator/internal/ubl"
)

// Re-export core types for public API
type (
	Invoice     = model.Invoice
	Party       = model.Party
	TaxSummary  = model.TaxSummary
	PaymentInfo = model.PaymentInfo
	BankDetails = model.BankDetails
	LineItem    = model.LineItem
)

// Re-export error types
type (
	DecodeError      = model.DecodeError
	ValidationError  = model.ValidationError
	ValidationErrors = model.ValidationErrors
	ContractError    = model.ContractError
)

// ErrContractViolation is wrapped by errors for records that skipped validation
var ErrContractViolation = model.ErrContractViolation

// Re-export document identifiers
const (
	CustomizationID = ubl.CustomizationID
	ProfileID       = ubl.ProfileID
	MIMEType        = generator.MIMEType
)
