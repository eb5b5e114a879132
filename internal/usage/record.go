package usage

import (
	"errors"
	"sort"
)

var (
	// ErrInvalidPageCount is returned by the paginated builder when the page count is not 12, 24 or 36.
	ErrInvalidPageCount = errors.New("invalid page count")
	// ErrInvalidStartMonth is returned when a paginated build is asked to start outside 1..12.
	ErrInvalidStartMonth = errors.New("invalid start month")
)

// Record maps a storage month key (1..12) to a usage value made of decimal digits only.
// Months without a detected reading are absent.
type Record map[int]string

// Get returns the value stored for month m.
func (r Record) Get(m int) (string, bool) {
	v, ok := r[m]
	return v, ok
}

// Len reports how many months hold a value.
func (r Record) Len() int { return len(r) }

// Months returns the populated month keys in ascending order.
func (r Record) Months() []int {
	out := make([]int, 0, len(r))
	for m := range r {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// PeriodSegment is a half-open byte span [Start, End) of source text attributed to one calendar month.
type PeriodSegment struct {
	Month int
	Start int
	End   int
}

// PageSpan is one page of a document as reported by the text extraction service.
type PageSpan struct {
	Index  int `json:"index"`
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// ExtractionResult is what one processed document produces.
// RawText is kept for preview and audit only.
type ExtractionResult struct {
	Record  Record
	RawText string
}

// ShiftMonth maps a detected calendar month to its storage key: the reading printed
// under month N is usage for month N-1, and January wraps to December.
func ShiftMonth(m int) int {
	if m == 1 {
		return 12
	}
	return m - 1
}

// NextMonth advances m by one calendar month, wrapping 12 to 1.
func NextMonth(m int) int {
	if m == 12 {
		return 1
	}
	return m + 1
}

func validMonth(m int) bool { return m >= 1 && m <= 12 }
