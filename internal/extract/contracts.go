package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// TextExtractor turns a bill file into text plus per-page spans.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      []usage.PageSpan
	Method     string // "pdf-text" | "pdf-ocr" | "docintel"
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Document is the engine input for this result.
func (r TextExtractionResult) Document() usage.Document {
	return usage.Document{Text: r.Text, Pages: r.Pages}
}
