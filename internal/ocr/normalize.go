package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)
	// OCR often splits a reading across a space inside the thousands group: "12, 345kWh"
	reSplitThousands = regexp.MustCompile(`(\d),\s+(\d{3})`)
)

// Normalize folds full-width digits and letters to ASCII ("１２月", "ｋＷｈ"),
// collapses noisy whitespace and keeps line breaks. Form feeds are kept so page
// boundaries survive.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = width.Fold.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reSplitThousands.ReplaceAllString(s, "$1,$2")
	// collapse too many blank lines
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	// trim trailing spaces on lines
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(s)
}
