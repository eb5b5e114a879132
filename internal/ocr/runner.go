package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// stderrLogLimit bounds how much of a failing tool's stderr goes into the log.
const stderrLogLimit = 4 << 10

// Runner executes the poppler and tesseract binaries. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs tools as child processes and logs each invocation.
type execRunner struct {
	logger *slog.Logger
}

func newExecRunner(logger *slog.Logger) execRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return execRunner{logger: logger}
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error("ocr.exec.failed",
			"tool", name,
			"argc", len(args),
			"elapsed_ms", elapsed.Milliseconds(),
			"stderr_tail", tail(stderr.String(), stderrLogLimit),
			"err", err,
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}
	r.logger.Debug("ocr.exec.done",
		"tool", name,
		"elapsed_ms", elapsed.Milliseconds(),
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
	)
	return stdout.Bytes(), stderr.Bytes(), nil
}

// tail keeps the last n bytes of s; tools print the actual failure last.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
