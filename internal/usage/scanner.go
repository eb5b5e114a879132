package usage

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var reKWh = regexp.MustCompile(`(?i)([\p{Nd},]+)[\s\p{Zs}]*kWh`)

// ScanKWh returns the largest non-zero kWh-tagged quantity in text.
// Zero readings are placeholders and never count; malformed numbers are skipped.
func ScanKWh(text string) (int64, bool) {
	var (
		best  int64
		found bool
	)
	for _, m := range reKWh.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseInt(strings.ReplaceAll(foldDigits(m[1]), ",", ""), 10, 64)
		if err != nil || v <= 0 {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

// foldDigits maps full-width digits to ASCII. Only matched substrings are folded,
// so offsets into the original text stay valid.
func foldDigits(s string) string {
	return width.Fold.String(s)
}
