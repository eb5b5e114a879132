package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/entity"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

type ExtractJobRepository interface {
	Create(ctx context.Context, id, batchID uuid.UUID, seq int, filePath, contentHash string) (*entity.ExtractJob, error)
	Start(ctx context.Context, jobID uuid.UUID) error
	FinishSuccess(ctx context.Context, jobID uuid.UUID, method string, rec usage.Record, rawText string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log}
}

func (r *extractJobRepo) Create(ctx context.Context, id, batchID uuid.UUID, seq int, filePath, contentHash string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:          id,
		BatchID:     batchID,
		Seq:         seq,
		FilePath:    filePath,
		ContentHash: contentHash,
		Status:      string(constants.JobStatusPending),
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`
		INSERT INTO extract_jobs (id, batch_id, seq, file_path, content_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		job.ID.String(), job.BatchID.String(), job.Seq, job.FilePath, job.ContentHash, job.Status, job.CreatedAt,
	)
	if err != nil {
		r.log.Error("extract_job create failed", "job_id", id, "batch_id", batchID, "err", err)
		return nil, fmt.Errorf("%w: insert extract_job: %v", common.ErrDatabase, err)
	}
	r.log.Debug("extract_job created", "job_id", id, "batch_id", batchID, "seq", seq)
	return job, nil
}

func (r *extractJobRepo) Start(ctx context.Context, jobID uuid.UUID) error {
	err := r.update(ctx, jobID, `UPDATE extract_jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(constants.JobStatusRunning), time.Now().UTC(), jobID.String())
	if err != nil {
		r.log.Error("extract_job start failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job started", "job_id", jobID)
	return nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, method string, rec usage.Record, rawText string) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	err = r.update(ctx, jobID, `
		UPDATE extract_jobs
		SET status = ?, method = ?, record_json = ?, raw_text = ?, finished_at = ?
		WHERE id = ?`,
		string(constants.JobStatusDone), method, string(recJSON), rawText, time.Now().UTC(), jobID.String())
	if err != nil {
		r.log.Error("extract_job finish(DONE) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (DONE)", "job_id", jobID, "method", method, "months", rec.Len())
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.update(ctx, jobID, `UPDATE extract_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), jobID.String())
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, q string, args ...any) error {
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(q), args...)
	if err != nil {
		return fmt.Errorf("%w: update extract_job: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("extract_job %s: %w", jobID, common.ErrNotFound)
	}
	return nil
}

func (r *extractJobRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*entity.ExtractJob, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(`
		SELECT id, batch_id, seq, file_path, content_hash, status, method, record_json, raw_text,
		       error_message, created_at, started_at, finished_at
		FROM extract_jobs WHERE batch_id = ? ORDER BY seq`), batchID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list extract_jobs: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.ExtractJob
	for rows.Next() {
		var (
			j                 entity.ExtractJob
			rawID, rawBatch   string
			method, recJSON   sql.NullString
			rawText, errMsg   sql.NullString
			started, finished sql.NullTime
		)
		if err := rows.Scan(&rawID, &rawBatch, &j.Seq, &j.FilePath, &j.ContentHash, &j.Status,
			&method, &recJSON, &rawText, &errMsg, &j.CreatedAt, &started, &finished); err != nil {
			return nil, fmt.Errorf("%w: scan extract_job: %v", common.ErrDatabase, err)
		}
		if j.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("extract_job id %q: %w", rawID, err)
		}
		if j.BatchID, err = uuid.Parse(rawBatch); err != nil {
			return nil, fmt.Errorf("extract_job batch id %q: %w", rawBatch, err)
		}
		j.Method = nullString(method)
		j.RawText = nullString(rawText)
		j.ErrorMessage = nullString(errMsg)
		if recJSON.Valid {
			j.Record = json.RawMessage(recJSON.String)
		}
		j.StartedAt = nullTime(started)
		j.FinishedAt = nullTime(finished)
		out = append(out, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate extract_jobs: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
