package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rezonia/xrechnung-generator/internal/model"
	"github.com/rezonia/xrechnung-generator/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice records",
	Long: `Validate one or more invoice records without rendering them.

Checks performed:
  - Required fields present (id, issue date, currency, parties, tax total, lines)
  - Dates in YYYY-MM-DD form
  - ISO 4217 currency and ISO 3166-1 alpha-2 country codes
  - Tax amount and percentage ranges
  - IBAN and BIC format when bank details are given

Examples:
  xrechnung validate invoice.json
  xrechnung validate invoices/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidationResult holds the result of validating a single record
type ValidationResult struct {
	File   string                   `json:"file"`
	Valid  bool                     `json:"valid"`
	Errors []*model.ValidationError `json:"errors,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, isRecordFile)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no invoice records found")
	}

	v := validation.New()
	results := make([]*ValidationResult, 0, len(files))
	invalid := 0

	for _, file := range files {
		result := validateFile(v, file)
		results = append(results, result)

		if !result.Valid {
			invalid++
		}
	}

	if err := outputValidationResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d invoices failed validation", invalid, len(files))
	}
	return nil
}

func validateFile(v validation.Validator, file string) *ValidationResult {
	result := &ValidationResult{File: file}

	inv, err := model.DecodeFile(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	err = v.Validate(inv)
	if err == nil {
		result.Valid = true
		return result
	}

	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		result.Errors = verrs
	} else {
		result.Error = err.Error()
	}
	logger.Debug("invoice invalid", "file", file, "error", err)
	return result
}

func outputValidationResults(w io.Writer, results []*ValidationResult) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s: VALID\n", r.File)
			continue
		}
		fmt.Fprintf(w, "✗ %s: INVALID\n", r.File)
		if r.Error != "" {
			fmt.Fprintf(w, "  - %s\n", r.Error)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s: %s\n", e.Field, e.Message)
		}
	}
	return nil
}
