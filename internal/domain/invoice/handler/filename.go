package handler

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	defaultBaseName = "factura"
	maxBaseNameLen  = 60
	outputSuffix    = "_convertida.xlsx"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// OutputFilename derives the workbook name from the uploaded file name:
// "Factura Enero.pdf" becomes "Factura_Enero_convertida.xlsx".
func OutputFilename(uploaded string) string {
	base := filepath.Base(strings.ReplaceAll(uploaded, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}

	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}
	if base == "" {
		base = defaultBaseName
	}

	return base + outputSuffix
}
