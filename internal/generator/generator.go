// Package generator validates an invoice record once, renders it once, and
// exports the cached document as a string, bytes, a blob or a file.
package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/rezonia/xrechnung-generator/internal/model"
	"github.com/rezonia/xrechnung-generator/internal/ubl"
	"github.com/rezonia/xrechnung-generator/internal/validation"
)

// MIMEType is the content type of every exported document
const MIMEType = "application/xml;charset=utf-8"

// FileMode is used when WriteFile creates a file
const FileMode os.FileMode = 0o644

// Blob is an in-memory document tagged with its content type
type Blob struct {
	Type string
	Data []byte
}

// Size returns the blob length in bytes
func (b Blob) Size() int {
	return len(b.Data)
}

// Generator holds one rendered XRechnung document
type Generator struct {
	xml    string
	id     string
	fs     afero.Fs
	logger *slog.Logger
}

// Option configures the generator
type Option func(*config)

type config struct {
	validator validation.Validator
	fs        afero.Fs
	logger    *slog.Logger
}

// WithValidator replaces the default struct tag validator
func WithValidator(v validation.Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithFs sets the file system used by WriteFile
func WithFs(fs afero.Fs) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New validates inv and renders it. A validation failure is returned as
// model.ValidationErrors and nothing is rendered.
func New(inv *model.Invoice, opts ...Option) (*Generator, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.validator == nil {
		cfg.validator = validation.New()
	}
	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := cfg.validator.Validate(inv); err != nil {
		return nil, err
	}

	doc, err := ubl.Marshal(inv)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("invoice rendered", "invoice_id", inv.ID, "bytes", len(doc), "lines", len(inv.LineItems))

	return &Generator{
		xml:    doc,
		id:     inv.ID,
		fs:     cfg.fs,
		logger: cfg.logger,
	}, nil
}

// InvoiceID returns the ID of the rendered invoice
func (g *Generator) InvoiceID() string {
	return g.id
}

// String returns the XML document
func (g *Generator) String() string {
	return g.xml
}

// Bytes returns the UTF-8 encoded document. Each call returns a new slice.
func (g *Generator) Bytes() []byte {
	return []byte(g.xml)
}

// Blob returns the document tagged as application/xml
func (g *Generator) Blob() Blob {
	return Blob{Type: MIMEType, Data: g.Bytes()}
}

// WriteTo writes the document to w
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, g.xml)
	return int64(n), err
}

// WriteFile writes the document to path, creating or truncating it.
// The file is closed on every path; write and close errors are returned
// as they come from the file system.
func (g *Generator) WriteFile(ctx context.Context, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := g.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if _, err = io.WriteString(f, g.xml); err != nil {
		return err
	}

	g.logger.Debug("invoice written", "invoice_id", g.id, "path", path)
	return nil
}
