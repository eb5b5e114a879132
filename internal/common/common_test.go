package common

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"DB_URL", "AZURE_FORMREC_ENDPOINT", "AZURE_FORMREC_KEY", "BATCH_WORKERS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "", cfg.Database.DSN)
	assert.Equal(t, "jpn", cfg.OCR.TesseractLang)
	assert.Equal(t, "prebuilt-invoice", cfg.DocIntel.ModelID)
	assert.False(t, cfg.DocIntel.Enabled())
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 3*time.Minute, cfg.Batch.DocumentTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("BATCH_WORKERS", "")
	require.NoError(t, os.Unsetenv("BATCH_WORKERS"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BATCH_WORKERS=7\n"), 0o644))

	cfg := LoadConfig()
	assert.Equal(t, 7, cfg.Batch.Workers)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AZURE_FORMREC_ENDPOINT", "https://example.cognitiveservices.azure.com")
	t.Setenv("AZURE_FORMREC_KEY", "secret")
	t.Setenv("BATCH_DOCUMENT_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := LoadConfig()
	assert.True(t, cfg.DocIntel.Enabled())
	assert.Equal(t, 45*time.Second, cfg.Batch.DocumentTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Batch: BatchConfig{Workers: 0, DocumentTimeout: time.Second}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, "CONFIG_ERROR", ErrorCode(err))
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg = &Config{
		Batch:    BatchConfig{Workers: 1, DocumentTimeout: time.Second},
		DocIntel: DocIntelConfig{Endpoint: "https://x"},
	}
	assert.Error(t, cfg.Validate())
}

func TestAppError(t *testing.T) {
	err := WrapError(NewAppError("EXTRACT_FAILED", "pdftotext", ErrExtraction), "document a.pdf")
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Equal(t, "EXTRACT_FAILED", ErrorCode(err))
	assert.Equal(t, "document a.pdf: EXTRACT_FAILED: pdftotext: text extraction failed", err.Error())
	assert.Nil(t, WrapError(nil, "x"))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("mode", "multi", Required, OneOf("single", "multi", "segmented")).
		Field("start_month", 13, IntBetween(1, 12)).
		Field("inputs", []string{}, Required)
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)

	err := ValidateAndReturnError(v)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "start_month")

	ok := NewValidator().Field("mode", "Single", OneOf("single")).Field("template", "", ExistingFile)
	assert.NoError(t, ValidateAndReturnError(ok))
	assert.NoError(t, ok.Error())
}

func TestContextIDs(t *testing.T) {
	ctx := WithDocumentID(WithBatchID(context.Background(), "b-1"), "d-1")
	assert.Equal(t, "b-1", BatchIDFromContext(ctx))
	assert.Equal(t, "d-1", DocumentIDFromContext(ctx))
	assert.Equal(t, "", BatchIDFromContext(context.Background()))
}
