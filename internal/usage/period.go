package usage

import (
	"regexp"
	"strconv"
)

var (
	reMonth = regexp.MustCompile(`(\p{Nd}{1,2})月`)

	// Checked in order; the first pattern that yields a valid month wins.
	singlePeriodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\p{Nd}{1,2})月[^\n]{0,5}ご使用分`),
		regexp.MustCompile(`(\p{Nd}{1,2})月[^\n]{0,5}ご請求分`),
		regexp.MustCompile(`(\p{Nd}{1,2})月分`),
	}
)

// LocateSinglePeriod determines which calendar month a whole document describes.
// Phrases naming the usage period, the billing period or a monthly portion take
// precedence over the first bare month marker in the text.
func LocateSinglePeriod(text string) (int, bool) {
	for _, re := range singlePeriodPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if month, ok := parseMonth(m[1]); ok {
				return month, true
			}
		}
	}
	if m := reMonth.FindStringSubmatch(text); m != nil {
		return parseMonth(m[1])
	}
	return 0, false
}

// LocateSegments splits text at every month marker. Markers outside 1..12 are dropped
// before boundaries are computed, so a retained segment runs up to the next retained
// marker or to the end of the text.
func LocateSegments(text string) []PeriodSegment {
	var segs []PeriodSegment
	for _, loc := range reMonth.FindAllStringSubmatchIndex(text, -1) {
		month, ok := parseMonth(text[loc[2]:loc[3]])
		if !ok {
			continue
		}
		if n := len(segs); n > 0 {
			segs[n-1].End = loc[0]
		}
		segs = append(segs, PeriodSegment{Month: month, Start: loc[0], End: len(text)})
	}
	return segs
}

func parseMonth(s string) (int, bool) {
	n, err := strconv.Atoi(foldDigits(s))
	if err != nil || !validMonth(n) {
		return 0, false
	}
	return n, true
}
