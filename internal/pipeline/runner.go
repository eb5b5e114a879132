package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/repository"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// Summary is the outcome of a batch run.
type Summary struct {
	Status    constants.BatchStatus
	Record    usage.Record
	Documents int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Runner processes a batch with a bounded number of workers.
type Runner struct {
	proc    *Processor
	batches repository.BatchRepository // nil disables persistence
	workers int
	logger  *slog.Logger
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithBatchRepository(repo repository.BatchRepository) Option {
	return func(r *Runner) { r.batches = repo }
}

func NewRunner(proc *Processor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{proc: proc, workers: 4, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run processes every document of b, then merges the records of the Done documents
// in submission order so later documents win. A failed document does not stop the batch;
// the returned error is non-nil only when ctx ends before the batch does.
func (r *Runner) Run(ctx context.Context, b *Batch) (Summary, error) {
	start := time.Now()
	log := r.logger.With("batch_id", b.ID)
	log.Info("batch.start", "documents", len(b.Documents), "mode", b.Options.Mode, "workers", r.workers)

	r.persistStart(ctx, b)

	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, d := range b.Documents {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_ = r.proc.ProcessDocument(ctx, b, d)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{Documents: len(b.Documents)}
	records := make([]usage.Record, 0, len(b.Documents))
	for _, d := range b.Documents {
		switch d.Status() {
		case constants.JobStatusDone:
			res, _ := d.Result()
			records = append(records, res.Record)
			sum.Succeeded++
		default:
			sum.Failed++
		}
	}
	sum.Record = usage.Merge(records...)
	sum.Status = constants.BatchStatusCompleted
	if sum.Documents > 0 && sum.Succeeded == 0 {
		sum.Status = constants.BatchStatusFailed
	}
	sum.Elapsed = time.Since(start)

	if r.batches != nil {
		if err := r.batches.Finish(context.WithoutCancel(ctx), b.ID, sum.Status, sum.Succeeded, sum.Failed, sum.Record); err != nil {
			log.Warn("batch.persist_failed", "stage", "finish", "err", err)
		}
	}
	log.Info("batch.done",
		"status", sum.Status,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"months", sum.Record.Len(),
		"elapsed_ms", sum.Elapsed.Milliseconds(),
	)
	return sum, ctx.Err()
}

func (r *Runner) persistStart(ctx context.Context, b *Batch) {
	if r.batches == nil {
		return
	}
	log := r.logger.With("batch_id", b.ID)
	if _, err := r.batches.Create(ctx, b.ID, string(b.Options.Mode), b.Options.StartMonth, b.Label, len(b.Documents)); err != nil {
		log.Warn("batch.persist_failed", "stage", "create", "err", err)
		return
	}
	if r.proc.Jobs == nil {
		return
	}
	for _, d := range b.Documents {
		if _, err := r.proc.Jobs.Create(ctx, d.ID, b.ID, d.Seq, d.Path, d.ContentHash); err != nil {
			log.Warn("batch.persist_failed", "stage", "create_job", "document_id", d.ID, "err", err)
		}
	}
}
