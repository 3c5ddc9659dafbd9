package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/xrechnung-generator/internal/generator"
	"github.com/rezonia/xrechnung-generator/internal/model"
)

var (
	outputFile string
	outDir     string
	jobs       int
	toStdout   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Render invoice records as XRechnung XML",
	Long: `Render one or more invoice records (.json, .yaml, .yml) as UBL 2.1
Invoice documents.

Each record is validated first; a record with field errors is reported and
no file is written for it. With a single input, -o names the output file.
Otherwise every record is written to <out-dir>/<invoice id>.xml. When two
records share an invoice id, the later one fails and the first is kept.

Examples:
  xrechnung generate invoice.json -o invoice.xml
  xrechnung generate invoices/ --out-dir out --jobs 8
  xrechnung generate invoice.yaml --stdout`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (single input only)")
	generateCmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: generate.output_dir)")
	generateCmd.Flags().IntVar(&jobs, "jobs", 0, "Invoices rendered in parallel (default: generate.jobs)")
	generateCmd.Flags().BoolVar(&toStdout, "stdout", false, "Print XML to stdout instead of writing files")
}

// GenerateResult holds the result of rendering a single record
type GenerateResult struct {
	File      string                   `json:"file"`
	InvoiceID string                   `json:"invoice_id,omitempty"`
	Output    string                   `json:"output,omitempty"`
	Bytes     int                      `json:"bytes,omitempty"`
	Fields    []*model.ValidationError `json:"fields,omitempty"`
	Error     string                   `json:"error,omitempty"`

	gen *generator.Generator
}

func runGenerate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, isRecordFile)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no invoice records found")
	}
	if outputFile != "" && len(files) > 1 {
		return fmt.Errorf("--output requires a single input, got %d", len(files))
	}
	if outputFile != "" && toStdout {
		return fmt.Errorf("--output and --stdout are mutually exclusive")
	}

	dir := outDir
	if dir == "" {
		dir = cfg.Generate.OutputDir
	}
	limit := jobs
	if limit <= 0 {
		limit = cfg.Generate.Jobs
	}

	if !toStdout && outputFile == "" {
		if err := appFs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logger.Debug("generating invoices", "files", len(files), "jobs", limit, "out_dir", dir)
	start := time.Now()

	results := make([]*GenerateResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(limit)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = generateFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !toStdout {
		if err := writeResults(cmd.Context(), results, dir, limit); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			logger.Warn("invoice not generated", "file", r.File, "error", r.Error)
		}
	}
	logger.Debug("generation finished", "files", len(files), "failed", failed, "elapsed", time.Since(start))

	if toStdout {
		out := cmd.OutOrStdout()
		for _, r := range results {
			if r.Error == "" {
				if _, err := out.Write(r.gen.Bytes()); err != nil {
					return err
				}
			}
		}
	} else if err := outputGenerateResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d invoices failed", failed, len(files))
	}
	return nil
}

// generateFile decodes and renders one record without writing it
func generateFile(file string) *GenerateResult {
	result := &GenerateResult{File: file}

	inv, err := model.DecodeFile(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.InvoiceID = inv.ID

	gen, err := generator.New(inv,
		generator.WithFs(appFs),
		generator.WithLogger(logger.With("file", file)),
	)
	if err != nil {
		result.Error = err.Error()
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			result.Fields = verrs
		}
		return result
	}
	result.Bytes = len(gen.String())
	result.gen = gen
	return result
}

// writeResults assigns output paths in input order and writes the rendered
// documents. A record whose path was already taken by an earlier record
// fails instead of overwriting it.
func writeResults(ctx context.Context, results []*GenerateResult, dir string, limit int) error {
	owners := make(map[string]string, len(results))
	paths := make([]string, len(results))
	for i, r := range results {
		if r.Error != "" {
			continue
		}
		path := outputFile
		if path == "" {
			path = filepath.Join(dir, outputName(r.InvoiceID))
		}
		if owner, taken := owners[path]; taken {
			r.Error = fmt.Sprintf("output %s already used by %s (duplicate invoice id %q)", path, owner, r.InvoiceID)
			continue
		}
		owners[path] = r.File
		paths[i] = path
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, r := range results {
		if paths[i] == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.gen.WriteFile(ctx, paths[i]); err != nil {
				r.Error = fmt.Sprintf("failed to write %s: %v", paths[i], err)
				return nil
			}
			r.Output = paths[i]
			return nil
		})
	}
	return g.Wait()
}

// outputName derives a file name from an invoice ID
func outputName(id string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, id)
	return safe + ".xml"
}

func outputGenerateResults(w io.Writer, results []*GenerateResult) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tINVOICE\tOUTPUT\tBYTES")
	fmt.Fprintln(tw, "----\t-------\t------\t-----")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\t%s\tERROR: %s\t\n", r.File, r.InvoiceID, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.File, r.InvoiceID, r.Output, r.Bytes)
	}

	return tw.Flush()
}
