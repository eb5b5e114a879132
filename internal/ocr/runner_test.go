package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_LogsToInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := newExecRunner(logger)
	_, _, err := r.Run(context.Background(), "usage-tracker-no-such-tool", "-v")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"ocr.exec.failed"`)
	assert.Contains(t, out, `"tool":"usage-tracker-no-such-tool"`)
	assert.Contains(t, out, `"argc":1`)
}

func TestNewExtractor_WiresLoggerIntoRunner(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := NewExtractor(Config{Pdftotext: "usage-tracker-no-such-pdftotext"}, logger)
	r, ok := e.runner.(execRunner)
	require.True(t, ok)
	assert.Same(t, logger, r.logger)
}

func TestNewExecRunner_DefaultLogger(t *testing.T) {
	assert.Same(t, slog.Default(), newExecRunner(nil).logger)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 10))
	got := tail(strings.Repeat("a", 10)+"boom", 4)
	assert.Equal(t, "...boom", got)
}
