package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "jpn"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text

	ArtifactCacheDir string // OCR page text is cached here by content hash; "" disables caching
}

type ExtractionResult struct {
	Text       string
	Pages      []usage.PageSpan
	Method     string // constants.MethodPDFText | constants.MethodPDFOCR
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, newExecRunner(logger), logger)
}

// NewExtractorWithRunner is NewExtractor with a custom command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "jpn"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract reads the text layer of a PDF, falling back to rasterize+OCR when the
// PDF carries no text (scanned bills).
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting ocr extraction", "path", path, "ext", ext)
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	pages, warns, err := e.pdfToText(ctx, path)
	method := constants.MethodPDFText
	if err != nil {
		return ExtractionResult{Warnings: warns, Duration: time.Since(start)}, err
	}
	if blank(pages) {
		e.logger.Info("pdf has no text layer; running ocr", "path", path, "pages", len(pages))
		var ocrWarns []string
		pages, ocrWarns, err = e.pdfToOCR(ctx, path)
		warns = append(warns, ocrWarns...)
		if err != nil {
			return ExtractionResult{Warnings: warns, Duration: time.Since(start)}, err
		}
		method = constants.MethodPDFOCR
	}

	for i := range pages {
		pages[i] = Normalize(pages[i])
	}
	text, spans := JoinPages(pages)

	res := ExtractionResult{
		Text:       text,
		Pages:      spans,
		Method:     method,
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: heuristicConfidence(text),
	}
	e.logger.Debug("ocr extraction done",
		"path", path,
		"method", res.Method,
		"pages", len(res.Pages),
		"bytes", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
