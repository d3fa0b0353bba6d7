// Package normalizer turns extracted page text into the clean line stream the
// invoice classifier consumes.
package normalizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// lineBreaks maps every line boundary to "\n": CR, CRLF, vertical tab, form
// feed, the file/group/record separators, NEL and the Unicode line and
// paragraph separators.
var lineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\v", "\n",
	"\f", "\n",
	"\x1c", "\n",
	"\x1d", "\n",
	"\x1e", "\n",
	"\u0085", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
)

// CleanLine collapses every run of whitespace into a single space, trims the
// result and applies NFC so composed and decomposed accents compare equal.
// Whitespace-only input returns "".
func CleanLine(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return norm.NFC.String(strings.Join(fields, " "))
}

// Lines splits each page into lines, cleans them and drops the empty ones.
// Pages are concatenated in order; page boundaries carry no meaning.
func Lines(pages []string) []string {
	lines := make([]string, 0, 64*len(pages))
	for _, page := range pages {
		if page == "" {
			continue
		}
		for _, raw := range strings.Split(lineBreaks.Replace(page), "\n") {
			if line := CleanLine(raw); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
