package ocr

import (
	"strings"

	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// PageSeparator sits between pages in joined text, as pdftotext does.
const PageSeparator = "\f"

// JoinPages concatenates page texts with PageSeparator and reports each page's span.
func JoinPages(pages []string) (string, []usage.PageSpan) {
	var b strings.Builder
	spans := make([]usage.PageSpan, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString(PageSeparator)
		}
		spans[i] = usage.PageSpan{Index: i, Offset: b.Len(), Length: len(p)}
		b.WriteString(p)
	}
	return b.String(), spans
}

// splitPages splits pdftotext output into pages. pdftotext ends every page,
// including the last, with a form feed.
func splitPages(out string) []string {
	out = strings.TrimSuffix(out, PageSeparator)
	if out == "" {
		return nil
	}
	return strings.Split(out, PageSeparator)
}

func blank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
