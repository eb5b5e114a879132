package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/entity"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

type BatchRepository interface {
	Create(ctx context.Context, id uuid.UUID, mode string, startMonth int, label string, documents int) (*entity.Batch, error)
	Finish(ctx context.Context, id uuid.UUID, status constants.BatchStatus, succeeded, failed int, rec usage.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error)
}

type batchRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewBatchRepository(db *DB, logger *slog.Logger) BatchRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &batchRepo{db: db, logger: logger}
}

func (r *batchRepo) Create(ctx context.Context, id uuid.UUID, mode string, startMonth int, label string, documents int) (*entity.Batch, error) {
	b := &entity.Batch{
		ID:         id,
		Mode:       mode,
		StartMonth: startMonth,
		Label:      label,
		Status:     string(constants.BatchStatusRunning),
		Documents:  documents,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`
		INSERT INTO batches (id, mode, start_month, label, status, documents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		b.ID.String(), b.Mode, b.StartMonth, b.Label, b.Status, b.Documents, b.CreatedAt,
	)
	if err != nil {
		r.logger.Error("batch create failed", "batch_id", id, "err", err)
		return nil, fmt.Errorf("%w: insert batch: %v", common.ErrDatabase, err)
	}
	r.logger.Info("batch created", "batch_id", id, "mode", mode, "documents", documents)
	return b, nil
}

func (r *batchRepo) Finish(ctx context.Context, id uuid.UUID, status constants.BatchStatus, succeeded, failed int, rec usage.Record) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`
		UPDATE batches
		SET status = ?, succeeded = ?, failed = ?, record_json = ?, finished_at = ?
		WHERE id = ?`),
		string(status), succeeded, failed, string(recJSON), time.Now().UTC(), id.String(),
	)
	if err != nil {
		r.logger.Error("batch finish failed", "batch_id", id, "err", err)
		return fmt.Errorf("%w: update batch: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("batch %s: %w", id, common.ErrNotFound)
	}
	r.logger.Info("batch finished", "batch_id", id, "status", status, "succeeded", succeeded, "failed", failed)
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(`
		SELECT id, mode, start_month, label, status, documents, succeeded, failed, record_json, created_at, finished_at
		FROM batches WHERE id = ?`), id.String())

	var (
		b        entity.Batch
		rawID    string
		recJSON  sql.NullString
		finished sql.NullTime
	)
	err := row.Scan(&rawID, &b.Mode, &b.StartMonth, &b.Label, &b.Status, &b.Documents,
		&b.Succeeded, &b.Failed, &recJSON, &b.CreatedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select batch: %v", common.ErrDatabase, err)
	}
	if b.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("batch id %q: %w", rawID, err)
	}
	if recJSON.Valid {
		b.Record = json.RawMessage(recJSON.String)
	}
	if finished.Valid {
		t := finished.Time
		b.FinishedAt = &t
	}
	return &b, nil
}
