package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/xrechnung-generator/internal/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [files...]",
	Short: "Summarize generated XRechnung documents",
	Long: `Read one or more UBL Invoice documents and print their key values:
invoice ID, dates, currency, parties, tax total and lines.

Warnings are listed for values a receiving system would reject, such as a
missing country code or a document without lines.

Examples:
  xrechnung inspect out/INV-001.xml
  xrechnung inspect out/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// InspectResult holds the summary of a single document
type InspectResult struct {
	File    string           `json:"file"`
	Summary *inspect.Summary `json:"summary,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, isXMLFile)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no XML documents found")
	}

	results := make([]*InspectResult, 0, len(files))
	failed := 0
	for _, file := range files {
		result := inspectFile(file)
		if result.Error != "" {
			failed++
		}
		results = append(results, result)
	}

	if err := outputInspectResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be read", failed, len(files))
	}
	return nil
}

func inspectFile(file string) *InspectResult {
	result := &InspectResult{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}
	if !inspect.LooksLikeInvoice(data) {
		result.Error = "not a UBL invoice document"
		return result
	}

	summary, err := inspect.Read(data)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Summary = summary
	return result
}

func outputInspectResults(w io.Writer, results []*InspectResult) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tINVOICE\tISSUED\tDUE\tCURRENCY\tSUPPLIER\tCUSTOMER\tTAX\tLINES\tPAYMENT\tXRECHNUNG")
	fmt.Fprintln(tw, "----\t-------\t------\t---\t--------\t--------\t--------\t---\t-----\t-------\t---------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\t\t\t\n", r.File, r.Error)
			continue
		}
		s := r.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.File,
			s.ID,
			s.IssueDate,
			s.DueDate,
			s.Currency,
			partyLabel(s.Supplier),
			partyLabel(s.Customer),
			s.TaxAmount,
			len(s.Lines),
			yesNo(s.PaymentMeans),
			yesNo(s.IsXRechnung()),
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		if r.Summary == nil {
			continue
		}
		for _, warning := range r.Summary.Warnings {
			fmt.Fprintf(w, "⚠ %s: %s\n", r.File, warning)
		}
	}
	return nil
}

func partyLabel(p inspect.Party) string {
	parts := []string{p.Name}
	if p.Country != "" {
		parts = append(parts, "("+p.Country+")")
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
