package docintel

import (
	"sort"
	"unicode/utf8"

	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

type operation struct {
	id     string
	Status string `json:"status"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	AnalyzeResult struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int    `json:"pageNumber"`
			Spans      []span `json:"spans"`
		} `json:"pages"`
	} `json:"analyzeResult"`
}

type span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// result converts the page spans, which the service reports in code points,
// to byte offsets into Content. Pages without spans get an empty span.
func (op operation) result() Result {
	content := op.AnalyzeResult.Content
	pages := op.AnalyzeResult.Pages
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	idx := newRuneIndex(content)
	spans := make([]usage.PageSpan, len(pages))
	for i, p := range pages {
		spans[i] = usage.PageSpan{Index: i}
		if len(p.Spans) == 0 {
			continue
		}
		// one span per page in practice; take the first
		start := idx.byteOffset(p.Spans[0].Offset)
		end := idx.byteOffset(p.Spans[0].Offset + p.Spans[0].Length)
		spans[i].Offset = start
		spans[i].Length = end - start
	}
	return Result{OperationID: op.id, Content: content, Pages: spans}
}

// runeIndex maps code point offsets to byte offsets.
type runeIndex []int

func newRuneIndex(s string) runeIndex {
	idx := make(runeIndex, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		idx = append(idx, i)
	}
	return append(idx, len(s))
}

func (r runeIndex) byteOffset(cp int) int {
	if cp <= 0 {
		return 0
	}
	if cp >= len(r) {
		return r[len(r)-1]
	}
	return r[cp]
}
