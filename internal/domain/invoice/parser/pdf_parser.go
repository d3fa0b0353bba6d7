package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction indicates the PDF text layer could not be read.
var ErrExtraction = errors.New("pdf text extraction failed")

// PDFParser reads the text layer of a PDF document.
type PDFParser struct{}

// NewPDFParser creates a new PDF parser instance.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// ExtractPages returns one text per page, in page order, with one line per
// text row. Pages without a page object yield an empty string.
func (p *PDFParser) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrExtraction)
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open document: %v", ErrExtraction, err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pages = append(pages, pageText(page))
	}

	return pages, nil
}

const (
	// rowTolerance is how far apart two baselines may be and still share a row.
	rowTolerance = 3.0
	// gapTolerance is the horizontal gap after which two glyphs are separate words.
	gapTolerance = 3.0
	// fallbackAdvance approximates a glyph's width, as a fraction of the font
	// size, for fonts that carry no width table.
	fallbackAdvance = 0.5
)

// pageText rebuilds the page's lines from glyph positions. Glyphs are grouped
// into rows by baseline, top to bottom, and laid out left to right inside a
// row. A space is inserted only where the gap between two glyphs is wider
// than gapTolerance, so kerned TJ arrays stay whole words.
func pageText(page pdf.Page) string {
	glyphs := page.Content().Text
	if len(glyphs) == 0 {
		return ""
	}

	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var sb strings.Builder
	for start := 0; start < len(glyphs); {
		end := start + 1
		for end < len(glyphs) && glyphs[start].Y-glyphs[end].Y <= rowTolerance {
			end++
		}
		writeRow(&sb, glyphs[start:end])
		sb.WriteByte('\n')
		start = end
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, row []pdf.Text) {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var prevEnd float64
	for i, g := range row {
		if i > 0 && g.X-prevEnd > gapTolerance {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.S)

		w := g.W
		if w <= 0 {
			w = g.FontSize * fallbackAdvance
		}
		if end := g.X + w; i == 0 || end > prevEnd {
			prevEnd = end
		}
	}
}
