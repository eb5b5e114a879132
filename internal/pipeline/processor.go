package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/extract"
	"github.com/joseph-ayodele/usage-tracker/internal/ocr"
	"github.com/joseph-ayodele/usage-tracker/internal/repository"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// Processor runs text extraction then the usage engine for one document.
type Processor struct {
	Logger    *slog.Logger
	Extractor extract.TextExtractor
	Jobs      repository.ExtractJobRepository // nil disables persistence
	Timeout   time.Duration                   // per document; 0 = none
}

func NewProcessor(logger *slog.Logger, tx extract.TextExtractor, jobs repository.ExtractJobRepository, timeout time.Duration) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: tx, Jobs: jobs, Timeout: timeout}
}

// ProcessDocument moves d from Pending to Done or Failed. The returned error is the
// document's failure; it never affects other documents of the batch.
func (p *Processor) ProcessDocument(ctx context.Context, b *Batch, d *Document) error {
	start := time.Now()
	ctx = common.WithBatchID(ctx, b.ID.String())
	ctx = common.WithDocumentID(ctx, d.ID.String())
	log := p.Logger.With("batch_id", b.ID, "document_id", d.ID, "seq", d.Seq)

	if err := d.start(); err != nil {
		return err
	}
	if p.Jobs != nil {
		if err := p.Jobs.Start(ctx, d.ID); err != nil {
			log.Warn("batch.document.persist_failed", "stage", "start", "err", err)
		}
	}

	res, method, err := p.extract(ctx, b, d)
	if err != nil {
		log.Error("batch.document.failed", "path", d.Path, "err", err, "elapsed_ms", time.Since(start).Milliseconds())
		if p.Jobs != nil {
			// the document context may be the one that expired
			if perr := p.Jobs.FinishFailure(context.WithoutCancel(ctx), d.ID, err.Error()); perr != nil {
				log.Warn("batch.document.persist_failed", "stage", "finish", "err", perr)
			}
		}
		if ferr := d.fail(err); ferr != nil {
			return ferr
		}
		return err
	}

	if err := d.complete(res, method); err != nil {
		return err
	}
	if p.Jobs != nil {
		if err := p.Jobs.FinishSuccess(ctx, d.ID, method, res.Record, res.RawText); err != nil {
			log.Warn("batch.document.persist_failed", "stage", "finish", "err", err)
		}
	}
	log.Info("batch.document.ok",
		"path", d.Path,
		"method", method,
		"months", res.Record.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Processor) extract(ctx context.Context, b *Batch, d *Document) (usage.ExtractionResult, string, error) {
	// a known bad page count fails before the (possibly remote) extraction call
	if b.Options.Mode == usage.ModeMulti && d.PageCount > 0 {
		if _, err := usage.PagesPerMonth(d.PageCount); err != nil {
			return usage.ExtractionResult{}, "", common.NewAppError("UNRECOGNIZED_DOCUMENT", d.Path, err)
		}
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = common.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if d.ContentHash != "" {
		ctx = ocr.WithContentHash(ctx, d.ContentHash)
	}

	text, err := p.Extractor.Extract(ctx, d.Path)
	if err != nil {
		return usage.ExtractionResult{}, text.Method, common.NewAppError("EXTRACTION_FAILED", d.Path, fmt.Errorf("%w: %w", common.ErrExtraction, err))
	}
	for _, w := range text.Warnings {
		p.Logger.Debug("batch.document.warning", "document_id", d.ID, "warning", w)
	}

	res, err := usage.Extract(text.Document(), b.Options)
	if err != nil {
		return usage.ExtractionResult{}, text.Method, common.NewAppError("UNRECOGNIZED_DOCUMENT", d.Path, err)
	}
	return res, text.Method, nil
}
