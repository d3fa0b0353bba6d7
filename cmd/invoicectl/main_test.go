package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/export"
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/invoicetest"
)

func writeInvoice(t *testing.T, dir, name string, pages [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, invoicetest.BuildPDF(pages), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var samplePages = [][]string{
	{"FACTURA 2024-001", "010 ABC widget 2 PZ 1,250.00", "Pedido 98765", "12345 Pedido", "020 DEF gadget grande 1 KG 99.90"},
	{"Pedido retrasado", "Pos. Articulo Cant. Descripcion", "123456 XYZ9 5 Some description", "Posiciones en total 1"},
}

func TestConvert_XLSX(t *testing.T) {
	t.Chdir(t.TempDir())
	in := t.TempDir()
	out := t.TempDir()
	path := writeInvoice(t, in, "Factura Mayo.pdf", samplePages)

	stdout, _, err := execute(t, "convert", path, "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(2 items, 1 delayed)")

	f, err := excelize.OpenFile(filepath.Join(out, "Factura_Mayo_convertida.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	order, err := f.GetCellValue(export.ItemsSheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, "98765", order)

	order, err = f.GetCellValue(export.ItemsSheet, "G3")
	require.NoError(t, err)
	assert.Equal(t, "12345", order)

	pos, err := f.GetCellValue(export.DelayedSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "123456", pos)
}

func TestConvert_CSVNextToInput(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	path := writeInvoice(t, dir, "factura.pdf", samplePages)

	_, _, err := execute(t, "convert", path, "--format", "csv")
	require.NoError(t, err)

	items, err := os.ReadFile(filepath.Join(dir, "factura_convertida_items.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"Pos,Article Number,Description,Quantity,Unit,Net Price,Order Number\n"+
			"010,ABC,widget,2,PZ,1250.00,98765\n"+
			"020,DEF,gadget grande,1,KG,99.90,12345\n",
		string(items))

	delayed, err := os.ReadFile(filepath.Join(dir, "factura_convertida_delayed.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"Pos,Article Number,Open Quantity,Description\n"+
			"123456,XYZ9,5,Some description\n",
		string(delayed))
}

func TestConvert_ManyWorkers(t *testing.T) {
	t.Chdir(t.TempDir())
	in := t.TempDir()
	out := t.TempDir()

	gen := invoicetest.NewGeneratorWithSeed(7)
	args := []string{"convert", "--output", out, "--workers", "3"}
	for i := range 6 {
		doc := gen.Document(4, 1)
		args = append(args, writeInvoice(t, in, "f"+string(rune('a'+i))+".pdf", doc.PageLines(20)))
	}

	_, _, err := execute(t, args...)
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestConvert_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("just some text"), 0644))
	good := writeInvoice(t, dir, "factura.pdf", samplePages)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", []string{"convert"}, "requires at least 1 arg"},
		{"bad format", []string{"convert", good, "--format", "ods"}, `unknown format "ods"`},
		{"bad workers", []string{"convert", good, "--workers", "0"}, "workers must be at least 1"},
		{"missing file", []string{"convert", filepath.Join(dir, "missing.pdf")}, "failed to read file"},
		{"not a pdf", []string{"convert", notPDF}, "not a PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConvert_OutputCollisions(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0755))

	tests := []struct {
		name   string
		inputs []string
		format string
	}{
		{"same name in two directories", []string{"a/factura.pdf", "b/factura.pdf"}, "xlsx"},
		{"space and underscore", []string{"a/Factura Enero.pdf", "a/Factura_Enero.pdf"}, "xlsx"},
		{"non-ascii names", []string{"a/ñ.pdf", "a/ó.pdf"}, "csv"},
		{"case only", []string{"a/FACTURA.pdf", "b/factura.pdf"}, "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			args := []string{"convert", "--output", out, "--format", tt.format}
			for _, in := range tt.inputs {
				args = append(args, writeInvoice(t, root, in, samplePages))
			}

			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "would both write")

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}

	t.Run("same name next to each input", func(t *testing.T) {
		a := writeInvoice(t, root, "a/duplicada.pdf", samplePages)
		b := writeInvoice(t, root, "b/duplicada.pdf", samplePages)

		_, _, err := execute(t, "convert", a, b)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(root, "a", "duplicada_convertida.xlsx"))
		assert.FileExists(t, filepath.Join(root, "b", "duplicada_convertida.xlsx"))
	})
}

func TestInspect(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeInvoice(t, t.TempDir(), "factura.pdf", samplePages)

	t.Run("table", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", path)
		require.NoError(t, err)

		assert.Contains(t, stdout, "File: factura.pdf")
		assert.Contains(t, stdout, "Items: 2  Delayed: 1  Unresolved orders: 0  Net total: $1,349.90")
		assert.Contains(t, stdout, "1250.00")
		assert.Contains(t, stdout, "Some description")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", path, "--json")
		require.NoError(t, err)

		var out struct {
			File    string            `json:"file"`
			Items   []json.RawMessage `json:"items"`
			Delayed []json.RawMessage `json:"delayed"`
			Summary struct {
				UnresolvedOrders int `json:"unresolved_orders"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, "factura.pdf", out.File)
		assert.Len(t, out.Items, 2)
		assert.Len(t, out.Delayed, 1)
		assert.Zero(t, out.Summary.UnresolvedOrders)
	})

	t.Run("match", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", path, "--match", "GRANDE")
		require.NoError(t, err)

		assert.Contains(t, stdout, "gadget grande")
		assert.NotContains(t, stdout, "widget")
		assert.NotContains(t, stdout, "Some description")
	})
}

func TestMatches(t *testing.T) {
	tests := []struct {
		term        string
		description string
		article     string
		want        bool
	}{
		{"valvula", "Válvula esfera", "VAL100", true},
		{"tornhex", "Tornillo hexagonal", "TOR1", true},
		{"abc", "Cable cobre", "ABC1234", true},
		{"tuerca", "Tornillo hexagonal", "TOR1", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(tt.term, tt.description, tt.article))
		})
	}
}
