package usage

import (
	"fmt"
	"strings"
)

// Mode selects how a document's text is turned into a record.
type Mode string

const (
	// ModeSingle reads one billing period from the whole document.
	ModeSingle Mode = "single"
	// ModeMulti splits a 12, 24 or 36 page document into 12 month groups.
	ModeMulti Mode = "multi"
	// ModeSegmented reads several months out of one text stream, split at month markers.
	ModeSegmented Mode = "segmented"
)

// ParseMode accepts a mode name case-insensitively. Empty means single.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSingle:
		return ModeSingle, nil
	case ModeMulti:
		return ModeMulti, nil
	case ModeSegmented:
		return ModeSegmented, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want single, multi or segmented)", s)
	}
}

// Options are the caller supplied extraction parameters for a batch.
type Options struct {
	Mode       Mode
	StartMonth int // required for ModeMulti
}

// Validate checks that the options can drive an extraction.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeSingle, ModeSegmented:
		return nil
	case ModeMulti:
		if !validMonth(o.StartMonth) {
			return fmt.Errorf("%w: multi mode needs a start month in 1..12, got %d", ErrInvalidStartMonth, o.StartMonth)
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
}

// Document is the text extraction output for one file.
type Document struct {
	Text  string
	Pages []PageSpan
}

// Extract runs the builder selected by opts over doc.
func Extract(doc Document, opts Options) (ExtractionResult, error) {
	if err := opts.Validate(); err != nil {
		return ExtractionResult{}, err
	}
	switch opts.Mode {
	case ModeMulti:
		pages := SlicePages(doc.Text, doc.Pages)
		rec, err := BuildFromPaginated(pages, opts.StartMonth)
		if err != nil {
			return ExtractionResult{}, err
		}
		return ExtractionResult{Record: rec, RawText: strings.Join(pages, "\n")}, nil
	case ModeSegmented:
		return ExtractionResult{Record: BuildFromSegmentedText(doc.Text), RawText: doc.Text}, nil
	default:
		return ExtractionResult{Record: BuildFromWholeText(doc.Text), RawText: doc.Text}, nil
	}
}
