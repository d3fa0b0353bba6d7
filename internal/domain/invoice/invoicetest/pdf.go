package invoicetest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const (
	pageHeight  = 792
	lineSpacing = 14
	topMargin   = 40
	leftMargin  = 40
)

// helveticaWidths holds the advance widths of codes 32 to 126, in thousandths
// of the font size.
var helveticaWidths = []int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

// BuildPDF renders each page's lines as uncompressed Helvetica text, one text
// object per line, top to bottom. Characters outside Latin-1 are replaced
// with '?'.
func BuildPDF(pages [][]string) []byte {
	streams := make([]string, len(pages))
	for i, lines := range pages {
		streams[i] = pageContent(lines)
	}
	return BuildPDFContent(streams)
}

// BuildPDFContent writes one page per content stream. Streams select the
// font as /F1 and are embedded verbatim, so callers can place text with any
// text operator.
func BuildPDFContent(streams []string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1 catalog, 2 page tree, 3 font, then a page and its content stream per page.
	kids := make([]string, len(streams))
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(streams)))
	obj(fontObject())

	for i, content := range streams {
		obj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageHeight, 5+i*2))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

func fontObject() string {
	widths := make([]string, 0, 256-32)
	for _, w := range helveticaWidths {
		widths = append(widths, strconv.Itoa(w))
	}
	for len(widths) < cap(widths) {
		widths = append(widths, "556")
	}
	return fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 255 /Widths [%s] >>",
		strings.Join(widths, " "))
}

func pageContent(lines []string) string {
	var sb strings.Builder
	y := pageHeight - topMargin
	for _, line := range lines {
		fmt.Fprintf(&sb, "BT /F1 10 Tf 1 0 0 1 %d %d Tm (%s) Tj ET\n", leftMargin, y, EscapeText(line))
		y -= lineSpacing
	}
	return sb.String()
}

// EscapeText writes a PDF literal string in WinAnsi bytes.
func EscapeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r < 0x80:
			sb.WriteRune(r)
		case r <= 0xFF:
			fmt.Fprintf(&sb, "\\%03o", r)
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String()
}
