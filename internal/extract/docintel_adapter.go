package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/docintel"
)

type DocIntelAdapter struct {
	c      *docintel.Client
	logger *slog.Logger
}

func NewDocIntelAdapter(c *docintel.Client, logger *slog.Logger) *DocIntelAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocIntelAdapter{c: c, logger: logger}
}

func (a *DocIntelAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.c.AnalyzeFile(ctx, path)
	if err != nil {
		return TextExtractionResult{Method: constants.MethodDocIntel}, err
	}
	var warnings []string
	for _, p := range r.Pages {
		if p.Length == 0 {
			warnings = append(warnings, "page without text span")
			a.logger.Warn("docintel.page.empty", "path", path, "page", p.Index+1)
		}
	}
	return TextExtractionResult{
		Text:       r.Content,
		Pages:      r.Pages,
		Method:     constants.MethodDocIntel,
		Duration:   r.Duration,
		Warnings:   warnings,
		Confidence: 1,
	}, nil
}
