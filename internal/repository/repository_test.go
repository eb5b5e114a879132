package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	db := openTestDB(t)
	assert.Equal(t, DialectSQLite, db.Dialect)
	assert.NoError(t, db.HealthCheck(context.Background(), 0))
	// idempotent
	assert.NoError(t, db.Migrate(context.Background()))
}

func TestRebind(t *testing.T) {
	q := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, q, (&DB{Dialect: DialectSQLite}).rebind(q))
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", (&DB{Dialect: DialectPostgres}).rebind(q))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u@localhost/db"))
	assert.True(t, isPostgres("postgresql://u@localhost/db"))
	assert.False(t, isPostgres("file::memory:"))
	assert.False(t, isPostgres(""))
}

func TestBatchRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository(openTestDB(t), nil)
	id := uuid.New()

	b, err := repo.Create(ctx, id, "multi", 4, "ACME", 2)
	require.NoError(t, err)
	assert.Equal(t, string(constants.BatchStatusRunning), b.Status)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "multi", got.Mode)
	assert.Equal(t, 4, got.StartMonth)
	assert.Nil(t, got.FinishedAt)
	assert.Nil(t, got.Record)

	require.NoError(t, repo.Finish(ctx, id, constants.BatchStatusCompleted, 1, 1, usage.Record{3: "120"}))
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.BatchStatusCompleted), got.Status)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.NotNil(t, got.FinishedAt)

	var rec usage.Record
	require.NoError(t, json.Unmarshal(got.Record, &rec))
	assert.Equal(t, usage.Record{3: "120"}, rec)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, repo.Finish(ctx, uuid.New(), constants.BatchStatusFailed, 0, 0, nil), common.ErrNotFound)
}

func TestExtractJobRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	batches := NewBatchRepository(db, nil)
	jobs := NewExtractJobRepository(db, nil)

	batchID := uuid.New()
	_, err := batches.Create(ctx, batchID, "single", 0, "", 2)
	require.NoError(t, err)

	second, first := uuid.New(), uuid.New()
	_, err = jobs.Create(ctx, second, batchID, 1, "/bills/b.pdf", "bb")
	require.NoError(t, err)
	_, err = jobs.Create(ctx, first, batchID, 0, "/bills/a.pdf", "aa")
	require.NoError(t, err)

	require.NoError(t, jobs.Start(ctx, first))
	require.NoError(t, jobs.FinishSuccess(ctx, first, constants.MethodPDFText, usage.Record{1: "350"}, "2月分 350kWh"))
	require.NoError(t, jobs.Start(ctx, second))
	require.NoError(t, jobs.FinishFailure(ctx, second, "pdftotext: exit status 1"))

	list, err := jobs.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, string(constants.JobStatusDone), list[0].Status)
	require.NotNil(t, list[0].Method)
	assert.Equal(t, constants.MethodPDFText, *list[0].Method)
	require.NotNil(t, list[0].RawText)
	assert.Equal(t, "2月分 350kWh", *list[0].RawText)
	assert.JSONEq(t, `{"1":"350"}`, string(list[0].Record))
	assert.NotNil(t, list[0].StartedAt)
	assert.NotNil(t, list[0].FinishedAt)
	assert.Nil(t, list[0].ErrorMessage)

	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, string(constants.JobStatusFailed), list[1].Status)
	require.NotNil(t, list[1].ErrorMessage)
	assert.Equal(t, "pdftotext: exit status 1", *list[1].ErrorMessage)
	assert.Nil(t, list[1].Record)

	assert.ErrorIs(t, jobs.Start(ctx, uuid.New()), common.ErrNotFound)
}

func TestExtractJobRepository_UnknownBatch(t *testing.T) {
	jobs := NewExtractJobRepository(openTestDB(t), nil)
	_, err := jobs.Create(context.Background(), uuid.New(), uuid.New(), 0, "/x.pdf", "")
	assert.ErrorIs(t, err, common.ErrDatabase)
}
