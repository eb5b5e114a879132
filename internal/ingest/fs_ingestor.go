package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/usage-tracker/constants"
)

// FSIngestor reads bills from the local filesystem.
type FSIngestor struct {
	logger *slog.Logger
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{logger: logger}
}

// IngestPath hashes a single file. It does not deduplicate.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}
	out.SourcePath = abs
	out.Name = filepath.Base(abs)

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "extension", ext)
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("open error", "path", abs, "error", err)
		return out, err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			i.logger.Warn("close file error", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		i.logger.Error("hash error", "path", abs, "error", err)
		return out, err
	}
	out.Size = n
	out.HashHex = hex.EncodeToString(h.Sum(nil))

	// the page count is advisory: text extraction tools cope with PDFs pdfcpu rejects
	if pages, err := api.PageCountFile(abs); err != nil {
		i.logger.Warn("pdf page count unavailable", "path", abs, "error", err)
	} else {
		out.Pages = pages
	}
	return out, nil
}

// IngestPaths hashes each path in order. Files whose content matches an earlier
// file are marked Deduplicated; per-file failures are reported in the result, not returned.
func (i *FSIngestor) IngestPaths(ctx context.Context, paths []string) ([]IngestionResult, DirStats, error) {
	var (
		results []IngestionResult
		stats   DirStats
		seen    = map[string]string{}
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}
		stats.Scanned++
		stats.Matched++
		results = append(results, i.ingestOne(ctx, p, seen, &stats))
	}
	i.logStats(stats)
	return results, stats, nil
}

// IngestDirectory walks root, skips hidden entries if requested,
// and ingests each PDF. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var (
		results []IngestionResult
		stats   DirStats
		seen    = map[string]string{}
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		results = append(results, i.ingestOne(ctx, path, seen, &stats))
		return nil
	})

	i.logStats(stats)
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

func (i *FSIngestor) ingestOne(ctx context.Context, path string, seen map[string]string, stats *DirStats) IngestionResult {
	r, err := i.IngestPath(ctx, path)
	if err != nil {
		r.Err = err.Error()
		stats.Failed++
		return r
	}
	stats.Succeeded++
	if first, ok := seen[r.HashHex]; ok {
		r.Deduplicated = true
		r.DuplicateOf = first
		stats.Deduplicated++
		i.logger.Info("duplicate file skipped", "path", r.SourcePath, "duplicate_of", first)
		return r
	}
	seen[r.HashHex] = r.SourcePath
	return r
}

func (i *FSIngestor) logStats(s DirStats) {
	i.logger.Info("ingest.done",
		"scanned", s.Scanned,
		"matched", s.Matched,
		"succeeded", s.Succeeded,
		"deduplicated", s.Deduplicated,
		"failed", s.Failed,
	)
}
