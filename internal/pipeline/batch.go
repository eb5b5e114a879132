// Package pipeline runs a batch of bills through text extraction and the usage
// engine, and merges the per-document records.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// ErrInvalidTransition is returned when a document status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// Batch is one run over a set of documents. Documents keep submission order.
type Batch struct {
	ID        uuid.UUID
	Options   usage.Options
	Label     string
	Documents []*Document
	CreatedAt time.Time
}

// NewBatch validates opts and returns an empty batch.
func NewBatch(opts usage.Options, label string) (*Batch, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Batch{
		ID:        uuid.New(),
		Options:   opts,
		Label:     strings.TrimSpace(label),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Add appends a pending document.
func (b *Batch) Add(path, contentHash string) *Document {
	d := &Document{
		ID:          uuid.New(),
		Seq:         len(b.Documents),
		Path:        path,
		ContentHash: contentHash,
		status:      constants.JobStatusPending,
	}
	b.Documents = append(b.Documents, d)
	return d
}

// Document tracks one file through Pending -> Running -> Done | Failed.
type Document struct {
	ID          uuid.UUID
	Seq         int
	Path        string
	ContentHash string
	PageCount   int // from ingest; 0 = unknown

	mu     sync.Mutex
	status constants.JobStatus
	result *usage.ExtractionResult
	method string
	err    error
}

func (d *Document) Status() constants.JobStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Result returns the extraction result of a Done document.
func (d *Document) Result() (usage.ExtractionResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result == nil {
		return usage.ExtractionResult{}, false
	}
	return *d.result, true
}

// Method is the text extraction method that produced the result.
func (d *Document) Method() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.method
}

// Err is the failure of a Failed document.
func (d *Document) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Document) start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transitionLocked(constants.JobStatusRunning)
}

func (d *Document) complete(res usage.ExtractionResult, method string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.transitionLocked(constants.JobStatusDone); err != nil {
		return err
	}
	d.result = &res
	d.method = method
	return nil
}

func (d *Document) fail(cause error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.transitionLocked(constants.JobStatusFailed); err != nil {
		return err
	}
	d.err = cause
	return nil
}

func (d *Document) transitionLocked(to constants.JobStatus) error {
	if !d.status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.status, to)
	}
	d.status = to
	return nil
}
