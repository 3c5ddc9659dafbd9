package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rezonia/xrechnung-generator/internal/config"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configPath   string

	cfg    *config.Config
	logger *slog.Logger

	// appFs receives generated documents
	appFs afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "xrechnung",
	Short: "Generate XRechnung (UBL 2.1) invoice XML",
	Long: `xrechnung renders invoice records as XRechnung compliant UBL 2.1
Invoice documents.

Invoice records are read from JSON or YAML files and validated before
rendering. Output follows the EN16931 core with the PEPPOL BIS Billing 3.0
profile.

Examples:
  # Render a single invoice
  xrechnung generate invoice.json -o invoice.xml

  # Render a directory of invoices, four at a time
  xrechnung generate invoices/ --out-dir out --jobs 4

  # Check records without rendering them
  xrechnung validate invoices/*.yaml

  # Summarize a generated document
  xrechnung inspect out/INV-001.xml`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $HOME/.xrechnung/xrechnung.yaml or ./xrechnung.yaml)")
}

func setup(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "json", "table":
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(cmd.ErrOrStderr())
	return nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose || (cfg != nil && cfg.Logging.Level == "debug") {
		level = slog.LevelDebug
	} else if cfg != nil {
		switch cfg.Logging.Level {
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
