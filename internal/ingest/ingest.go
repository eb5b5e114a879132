package ingest

import (
	"context"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	Name         string
	Size         int64
	HashHex      string
	Pages        int    // 0 when the page tree could not be read
	Deduplicated bool   // same content as an earlier file in this ingest
	DuplicateOf  string // path of that earlier file
	Err          string
}

// Accepted reports whether the file should be processed.
func (r IngestionResult) Accepted() bool {
	return r.Err == "" && !r.Deduplicated
}

// DirStats summarizes an ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the batch runner depends on.
type Ingestor interface {
	// IngestPaths ingests the given files in order.
	IngestPaths(ctx context.Context, paths []string) ([]IngestionResult, DirStats, error)
	// IngestDirectory ingests all matching files under root in lexical order.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}

// Accepted filters results down to the files that should be processed, preserving order.
func Accepted(results []IngestionResult) []IngestionResult {
	out := make([]IngestionResult, 0, len(results))
	for _, r := range results {
		if r.Accepted() {
			out = append(out, r)
		}
	}
	return out
}
