package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleRecord = filepath.Join("..", "..", "..", "internal", "ubl", "testdata", "end_to_end.json")
	sampleXML    = filepath.Join("..", "..", "..", "internal", "ubl", "testdata", "end_to_end.xml")
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	verbose = false
	outputFormat = "table"
	configPath = ""
	outputFile = ""
	outDir = ""
	jobs = 0
	toStdout = false

	fs := afero.NewMemMapFs()
	appFs = fs
	t.Cleanup(func() { appFs = afero.NewOsFs() })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeRecord(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGenerate_Stdout(t *testing.T) {
	out, err := execute(t, "generate", sampleRecord, "--stdout")
	require.NoError(t, err)

	expected, err := os.ReadFile(sampleXML)
	require.NoError(t, err)
	assert.Equal(t, string(expected), out)
}

func TestGenerate_OutputFile(t *testing.T) {
	out, err := execute(t, "generate", sampleRecord, "-o", "/invoice.xml")
	require.NoError(t, err)
	assert.Contains(t, out, "INV-001")

	data, err := afero.ReadFile(appFs, "/invoice.xml")
	require.NoError(t, err)

	expected, err := os.ReadFile(sampleXML)
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(data))
}

func TestGenerate_OutDir(t *testing.T) {
	dir := t.TempDir()
	record, err := os.ReadFile(sampleRecord)
	require.NoError(t, err)
	writeRecord(t, dir, "a.json", string(record))
	writeRecord(t, dir, "b.json", strings.Replace(string(record), `"INV-001"`, `"INV/002"`, 1))
	writeRecord(t, dir, "notes.txt", "ignored")

	out, err := execute(t, "generate", dir, "--out-dir", "/out", "--jobs", "2", "-f", "json")
	require.NoError(t, err)

	var results []GenerateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join("/out", "INV-001.xml"), results[0].Output)
	assert.Equal(t, filepath.Join("/out", "INV_002.xml"), results[1].Output)

	for _, name := range []string{"INV-001.xml", "INV_002.xml"} {
		exists, err := afero.Exists(appFs, filepath.Join("/out", name))
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
}

func TestGenerate_InvalidRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeRecord(t, dir, "bad.yaml", `
id: INV-9
issueDate: "2024-01-01"
currency: EUR
supplier: {name: S, country: DE}
customer: {name: C, country: DE}
taxTotal: {taxAmount: "0", taxPercentage: "0"}
lineItems: []
`)

	out, err := execute(t, "generate", path, "--out-dir", "/out", "-f", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 invoices failed")

	var results []GenerateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	require.Len(t, results[0].Fields, 1)
	assert.Equal(t, "lineItems", results[0].Fields[0].Field)

	exists, err := afero.Exists(appFs, "/out/INV-9.xml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerate_DuplicateInvoiceID(t *testing.T) {
	dir := t.TempDir()
	record, err := os.ReadFile(sampleRecord)
	require.NoError(t, err)
	writeRecord(t, dir, "a.json", string(record))
	writeRecord(t, dir, "b.json", strings.Replace(string(record), "Product A", "Product B", 1))

	out, err := execute(t, "generate", dir, "--out-dir", "/out", "--jobs", "2", "-f", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 invoices failed")

	var results []GenerateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join("/out", "INV-001.xml"), results[0].Output)
	assert.Empty(t, results[0].Error)

	assert.Empty(t, results[1].Output)
	assert.Contains(t, results[1].Error, "duplicate invoice id")
	assert.Contains(t, results[1].Error, filepath.Join(dir, "a.json"))

	data, err := afero.ReadFile(appFs, filepath.Join("/out", "INV-001.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Product A")
	assert.NotContains(t, string(data), "Product B")
}

func TestGenerate_FlagConflicts(t *testing.T) {
	dir := t.TempDir()
	record, err := os.ReadFile(sampleRecord)
	require.NoError(t, err)
	writeRecord(t, dir, "a.json", string(record))
	writeRecord(t, dir, "b.json", string(record))

	_, err = execute(t, "generate", dir, "-o", "/x.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single input")

	_, err = execute(t, "generate", sampleRecord, "-o", "/x.xml", "--stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestGenerate_MissingFile(t *testing.T) {
	_, err := execute(t, "generate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	bad := writeRecord(t, dir, "bad.json", `{
  "id": "INV-1",
  "issueDate": "01.02.2024",
  "currency": "EUR",
  "supplier": {"name": "S", "country": "DE"},
  "customer": {"name": "C", "country": "Germany"},
  "taxTotal": {"taxAmount": 1, "taxPercentage": 19},
  "lineItems": [{"id": "1", "description": "x", "quantity": 1, "unitPrice": 1, "lineTotal": 1}]
}`)

	t.Run("valid", func(t *testing.T) {
		out, err := execute(t, "validate", sampleRecord)
		require.NoError(t, err)
		assert.Contains(t, out, "VALID")
	})

	t.Run("invalid", func(t *testing.T) {
		out, err := execute(t, "validate", sampleRecord, bad, "-f", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 invoices failed validation")

		var results []ValidationResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.True(t, results[0].Valid)
		assert.False(t, results[1].Valid)

		fields := make([]string, 0, len(results[1].Errors))
		for _, e := range results[1].Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"issueDate", "customer.country"}, fields)
	})
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", sampleXML, "-f", "json")
	require.NoError(t, err)

	var results []InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Summary)
	assert.Equal(t, "INV-001", results[0].Summary.ID)
	assert.Equal(t, "Supplier Inc.", results[0].Summary.Supplier.Name)
	assert.Len(t, results[0].Summary.Lines, 1)
}

func TestInspect_Table(t *testing.T) {
	out, err := execute(t, "inspect", sampleXML)
	require.NoError(t, err)
	assert.Contains(t, out, "INV-001")
	assert.Contains(t, out, "Supplier Inc. (DE)")
}

func TestInspect_NotAnInvoice(t *testing.T) {
	path := writeRecord(t, t.TempDir(), "order.xml", `<Order><ID>1</ID></Order>`)

	out, err := execute(t, "inspect", path, "-f", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 documents could not be read")

	var results []InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "not a UBL invoice document", results[0].Error)
	assert.Nil(t, results[0].Summary)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := execute(t, "validate", sampleRecord, "-f", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestServerConfig_FlagsOverrideConfig(t *testing.T) {
	_, err := execute(t, "validate", sampleRecord)
	require.NoError(t, err)

	serverAddr = ":9999"
	serverDebug = true
	t.Cleanup(func() {
		serverAddr = ""
		serverDebug = false
	})

	sc := serverConfig()
	assert.Equal(t, ":9999", sc.Address)
	assert.True(t, sc.Debug)
	assert.Equal(t, cfg.Server.ReadTimeout, sc.ReadTimeout)
	assert.Equal(t, cfg.Server.MaxBodyBytes, sc.MaxBodyBytes)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "INV-001.xml", outputName("INV-001"))
	assert.Equal(t, "2024_01_7.xml", outputName(`2024/01\7`))
}
