package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/docintel"
	"github.com/joseph-ayodele/usage-tracker/internal/ocr"
)

// NewFromConfig returns the Document Intelligence extractor when it is configured,
// otherwise the local pdftotext/tesseract extractor.
func NewFromConfig(cfg *common.Config, logger *slog.Logger) TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DocIntel.Enabled() {
		logger.Info("text extractor selected", "backend", "docintel", "model", cfg.DocIntel.ModelID)
		c := docintel.NewClient(docintel.Config{
			Endpoint:     cfg.DocIntel.Endpoint,
			Key:          cfg.DocIntel.Key,
			ModelID:      cfg.DocIntel.ModelID,
			APIVersion:   cfg.DocIntel.APIVersion,
			PollInterval: cfg.DocIntel.PollInterval,
			Timeout:      cfg.DocIntel.Timeout,
		}, logger)
		return NewDocIntelAdapter(c, logger)
	}

	logger.Info("text extractor selected", "backend", "ocr", "lang", cfg.OCR.TesseractLang)
	e := ocr.NewExtractor(ocr.Config{
		Pdftotext:        cfg.OCR.Pdftotext,
		Pdftoppm:         cfg.OCR.Pdftoppm,
		Tesseract:        cfg.OCR.Tesseract,
		TesseractLang:    cfg.OCR.TesseractLang,
		DPI:              cfg.OCR.DPI,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, logger)
	return NewOCRAdapter(e, logger)
}
