package repository

import (
	"context"
	"fmt"
)

func (db *DB) schema() []string {
	ts := "TIMESTAMP"
	if db.Dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id          TEXT PRIMARY KEY,
			mode        TEXT NOT NULL,
			start_month INTEGER NOT NULL DEFAULT 0,
			label       TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL,
			documents   INTEGER NOT NULL DEFAULT 0,
			succeeded   INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0,
			record_json TEXT,
			created_at  ` + ts + ` NOT NULL,
			finished_at ` + ts + `
		)`,
		`CREATE TABLE IF NOT EXISTS extract_jobs (
			id            TEXT PRIMARY KEY,
			batch_id      TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			seq           INTEGER NOT NULL,
			file_path     TEXT NOT NULL,
			content_hash  TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			method        TEXT,
			record_json   TEXT,
			raw_text      TEXT,
			error_message TEXT,
			created_at    ` + ts + ` NOT NULL,
			started_at    ` + ts + `,
			finished_at   ` + ts + `
		)`,
		`CREATE INDEX IF NOT EXISTS extract_jobs_batch_seq ON extract_jobs (batch_id, seq)`,
	}
}

// Migrate creates the batches and extract_jobs tables when they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range db.schema() {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			db.logger.Error("migration failed", "step", i, "error", err)
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	db.logger.Info("database schema ready", "dialect", db.Dialect)
	return nil
}
