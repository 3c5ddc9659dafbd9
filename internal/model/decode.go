package model

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// DecodeJSON reads an invoice record from JSON.
// Unknown fields are rejected so typos in optional keys surface early.
func DecodeJSON(data []byte) (*Invoice, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var inv Invoice
	if err := dec.Decode(&inv); err != nil {
		return nil, NewDecodeError("json", "failed to decode invoice", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, NewDecodeError("json", "unexpected data after invoice", err)
	}
	return &inv, nil
}

// DecodeYAML reads an invoice record from YAML by way of its JSON form
func DecodeYAML(data []byte) (*Invoice, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, NewDecodeError("yaml", "failed to convert YAML", err)
	}
	inv, err := DecodeJSON(js)
	if err != nil {
		return nil, NewDecodeError("yaml", "failed to decode invoice", err)
	}
	return inv, nil
}

// DecodeFile reads an invoice record from a .json, .yaml or .yml file
func DecodeFile(path string) (*Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDecodeError(path, "failed to read file", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".json":
		return DecodeJSON(data)
	default:
		return nil, NewDecodeError(path, "unsupported input format, expected .json, .yaml or .yml", nil)
	}
}
