package usage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BuildFromWholeText treats the whole text as one billing period. It yields a single
// entry when both a month and a kWh reading are found, and an empty record otherwise.
func BuildFromWholeText(text string) Record {
	rec := Record{}
	month, ok := LocateSinglePeriod(text)
	if !ok {
		return rec
	}
	v, ok := ScanKWh(text)
	if !ok {
		return rec
	}
	rec[ShiftMonth(month)] = strconv.FormatInt(v, 10)
	return rec
}

// BuildFromSegmentedText reads a text that lists several months, scanning each month
// segment on its own. Segments without a reading contribute nothing.
func BuildFromSegmentedText(text string) Record {
	rec := Record{}
	for _, seg := range LocateSegments(text) {
		if v, ok := ScanKWh(text[seg.Start:seg.End]); ok {
			rec[ShiftMonth(seg.Month)] = strconv.FormatInt(v, 10)
		}
	}
	return rec
}

// PagesPerMonth returns how many pages make up one month for a paginated document.
func PagesPerMonth(pageCount int) (int, error) {
	switch pageCount {
	case 12, 24, 36:
		return pageCount / 12, nil
	default:
		return 0, fmt.Errorf("%w: got %d pages, want 12, 24 or 36", ErrInvalidPageCount, pageCount)
	}
}

// BuildFromPaginated splits pages into 12 equal month groups, the first of which
// is startMonth. Each group's joined text is scanned for a reading.
func BuildFromPaginated(pages []string, startMonth int) (Record, error) {
	ppm, err := PagesPerMonth(len(pages))
	if err != nil {
		return nil, err
	}
	if !validMonth(startMonth) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStartMonth, startMonth)
	}

	rec := Record{}
	month := startMonth
	for i := 0; i < 12; i++ {
		group := strings.Join(pages[i*ppm:(i+1)*ppm], "\n")
		if v, ok := ScanKWh(group); ok {
			rec[ShiftMonth(month)] = strconv.FormatInt(v, 10)
		}
		month = NextMonth(month)
	}
	return rec, nil
}

// SlicePages cuts the per-page substrings out of fullText. Pages come back ordered
// by Index; a span that falls outside the text is clamped, and an empty span yields "".
func SlicePages(fullText string, spans []PageSpan) []string {
	ordered := make([]PageSpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	out := make([]string, len(ordered))
	for i, sp := range ordered {
		start := clamp(sp.Offset, 0, len(fullText))
		end := clamp(sp.Offset+sp.Length, start, len(fullText))
		out[i] = fullText[start:end]
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
