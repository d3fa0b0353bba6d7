package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/invoicetest"
)

func TestCheckPDF(t *testing.T) {
	pdf := invoicetest.BuildPDF([][]string{{"FACTURA"}})

	tests := []struct {
		name     string
		data     []byte
		declared string
		wantErr  error
	}{
		{"pdf declared as pdf", pdf, "application/pdf", nil},
		{"pdf declared as binary", pdf, "application/octet-stream", nil},
		{"declared type with parameters", pdf, "application/pdf; name=factura.pdf", nil},
		{"declared type in upper case", pdf, "Application/PDF", nil},
		{"no declared type", pdf, "", nil},
		{"image declared", pdf, "image/png", ErrUnsupportedType},
		{"malformed declared type", pdf, ";;", ErrUnsupportedType},
		{"empty payload", nil, "application/pdf", ErrEmptyFile},
		{"text payload", []byte("Factura 123\nPedido 98765\n"), "application/pdf", ErrNotPDF},
		{"png payload", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "application/octet-stream", ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPDF(tt.data, tt.declared)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("%PDF-1.4 a"))
	b := Fingerprint([]byte("%PDF-1.4 b"))

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Fingerprint([]byte("%PDF-1.4 a")))
}
