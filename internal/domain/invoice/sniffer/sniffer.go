// Package sniffer validates uploaded documents before they reach the parser.
// It checks the declared content type, detects the real type from the
// payload's magic bytes and fingerprints the document.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPDF         = "application/pdf"
	MIMEOctetStream = "application/octet-stream"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrNotPDF          = errors.New("file is not a PDF document")
)

// Declared content types accepted from browsers and API clients. Some clients
// send PDFs as generic binary.
var acceptedTypes = map[string]bool{
	MIMEPDF:         true,
	MIMEOctetStream: true,
}

// CheckPDF validates an upload. An empty declaredType skips the declared-type
// check, as for files read from disk.
func CheckPDF(data []byte, declaredType string) error {
	if declaredType != "" {
		mediaType, _, err := mime.ParseMediaType(declaredType)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnsupportedType, declaredType)
		}
		if !acceptedTypes[strings.ToLower(mediaType)] {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
		}
	}

	if len(data) == 0 {
		return ErrEmptyFile
	}

	detected := Detect(data)
	if !detected.Is(MIMEPDF) {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, detected.String())
	}

	return nil
}

// Detect returns the MIME type of the payload from its magic bytes.
func Detect(data []byte) *mimetype.MIME {
	return mimetype.Detect(data)
}

// Fingerprint returns the SHA256 hash of the document, used to correlate log
// lines and archive entries for the same upload.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
