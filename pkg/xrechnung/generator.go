package xrechnung

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/rezonia/xrechnung-generator/internal/generator"
	"github.com/rezonia/xrechnung-generator/internal/model"
	"github.com/rezonia/xrechnung-generator/internal/validation"
)

type (
	// Generator holds one rendered invoice document
	Generator = generator.Generator

	// Blob is a rendered document with its MIME type
	Blob = generator.Blob

	// Option configures a Generator
	Option = generator.Option

	// Validator checks an invoice record before rendering
	Validator = validation.Validator
)

// New validates inv and renders it
func New(inv *Invoice, opts ...Option) (*Generator, error) {
	return generator.New(inv, opts...)
}

// WithValidator replaces the default struct tag validator
func WithValidator(v Validator) Option {
	return generator.WithValidator(v)
}

// WithFs sets the filesystem used by WriteFile
func WithFs(fs afero.Fs) Option {
	return generator.WithFs(fs)
}

// WithLogger sets the logger for debug output
func WithLogger(logger *slog.Logger) Option {
	return generator.WithLogger(logger)
}

// NewValidator returns the default invoice validator
func NewValidator() Validator {
	return validation.New()
}

// Decode reads an invoice record from r. format is "json" or "yaml".
func Decode(r io.Reader, format string) (*Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewDecodeError(format, "failed to read input", err)
	}

	switch format {
	case "json":
		return model.DecodeJSON(data)
	case "yaml", "yml":
		return model.DecodeYAML(data)
	default:
		return nil, model.NewDecodeError(format, fmt.Sprintf("unsupported format %q", format), nil)
	}
}

// Generate decodes a record from r and renders it
func Generate(r io.Reader, format string, opts ...Option) (*Generator, error) {
	inv, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return New(inv, opts...)
}
