// Package docintel extracts document text through the Azure AI Document Intelligence
// (Form Recognizer) REST API.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// ErrAnalyzeFailed is returned when the service reports a failed analysis.
var ErrAnalyzeFailed = errors.New("document analysis failed")

type Config struct {
	Endpoint     string // https://<resource>.cognitiveservices.azure.com
	Key          string
	ModelID      string // default "prebuilt-invoice"
	APIVersion   string // default "2023-07-31"
	PollInterval time.Duration
	Timeout      time.Duration // per request; the analysis as a whole is bounded by ctx
	HTTPClient   *http.Client
}

// Result is the text of an analyzed document and its page spans in byte offsets.
type Result struct {
	OperationID string
	ModelID     string
	Content     string
	Pages       []usage.PageSpan
	Duration    time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "prebuilt-invoice"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-07-31"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc, logger: logger}
}

// AnalyzeFile reads path and analyzes it.
func (c *Client) AnalyzeFile(ctx context.Context, path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Analyze(ctx, b)
}

// Analyze submits a PDF and polls until the analysis finishes or ctx is done.
func (c *Client) Analyze(ctx context.Context, pdf []byte) (Result, error) {
	start := time.Now()
	reqID := uuid.New().String()

	opURL, err := c.submit(ctx, reqID, pdf)
	if err != nil {
		return Result{}, err
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		op, err := c.poll(ctx, reqID, opURL)
		if err != nil {
			return Result{}, err
		}
		switch op.Status {
		case "succeeded":
			res := op.result()
			res.ModelID = c.cfg.ModelID
			res.Duration = time.Since(start)
			c.logger.Info("docintel.analyze.ok",
				"req_id", reqID,
				"operation_id", res.OperationID,
				"pages", len(res.Pages),
				"bytes", len(res.Content),
				"elapsed_ms", res.Duration.Milliseconds(),
			)
			return res, nil
		case "failed", "canceled":
			c.logger.Error("docintel.analyze.failed", "req_id", reqID, "status", op.Status, "code", op.Error.Code, "message", op.Error.Message)
			return Result{}, fmt.Errorf("%w: %s: %s", ErrAnalyzeFailed, op.Error.Code, op.Error.Message)
		}

		select {
		case <-ctx.Done():
			c.logger.Warn("docintel.analyze.cancelled", "req_id", reqID, "elapsed_ms", time.Since(start).Milliseconds())
			return Result{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) submit(ctx context.Context, reqID string, pdf []byte) (string, error) {
	u := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?%s",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		url.PathEscape(c.cfg.ModelID),
		url.Values{
			"api-version":     {c.cfg.APIVersion},
			"stringIndexType": {"unicodeCodePoint"},
		}.Encode(),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(pdf))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, raw, err := c.do(req, reqID)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("analyze: unexpected status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}
	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", errors.New("analyze: response has no Operation-Location")
	}
	return opURL, nil
}

func (c *Client) poll(ctx context.Context, reqID, opURL string) (operation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return operation{}, fmt.Errorf("build request: %w", err)
	}
	resp, raw, err := c.do(req, reqID)
	if err != nil {
		return operation{}, err
	}
	if resp.StatusCode/100 != 2 {
		return operation{}, fmt.Errorf("poll: unexpected status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}
	var op operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return operation{}, fmt.Errorf("decode analyze result: %w", err)
	}
	op.id = operationID(opURL)
	c.logger.Debug("docintel.poll", "req_id", reqID, "status", op.Status)
	return op, nil
}

func (c *Client) do(req *http.Request, reqID string) (*http.Response, []byte, error) {
	start := time.Now()
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("docintel.http.send_error", "req_id", reqID, "method", req.Method, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("docintel.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("docintel.http.response",
		"req_id", reqID,
		"method", req.Method,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, raw, nil
}

func operationID(opURL string) string {
	u, err := url.Parse(opURL)
	if err != nil {
		return ""
	}
	return u.Path[strings.LastIndex(u.Path, "/")+1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
