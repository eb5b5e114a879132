package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	pages = splitPages(string(out))
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	return pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	hashHex, _ := ContentHash(ctx)
	if cached, ok := e.loadCachedPages(hashHex); ok {
		e.logger.Debug("ocr cache hit", "path", path, "hash", hashHex)
		return cached, nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "ut-pp-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(path string) {
		err := os.RemoveAll(path)
		if err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-01.png, prefix-02.png, ...); pdftoppm zero-pads
	// the page number to a fixed width so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var warns []string
	pages = make([]string, 0, len(matches))
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			// keep the page slot so page numbering stays aligned with the PDF
			warns = append(warns, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	e.storeCachedPages(hashHex, pages)
	return pages, warns, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

func (e *Extractor) cachePath(hashHex string) string {
	if hashHex == "" || e.cfg.ArtifactCacheDir == "" {
		return ""
	}
	return filepath.Join(e.cfg.ArtifactCacheDir, hashHex+".ocr.txt")
}

func (e *Extractor) loadCachedPages(hashHex string) ([]string, bool) {
	p := e.cachePath(hashHex)
	if p == "" {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return strings.Split(string(b), PageSeparator), true
}

func (e *Extractor) storeCachedPages(hashHex string, pages []string) {
	p := e.cachePath(hashHex)
	if p == "" {
		return
	}
	if err := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o755); err != nil {
		e.logger.Warn("ocr cache dir", "dir", e.cfg.ArtifactCacheDir, "error", err)
		return
	}
	if err := os.WriteFile(p, []byte(strings.Join(pages, PageSeparator)), 0o644); err != nil {
		e.logger.Warn("ocr cache write", "path", p, "error", err)
	}
}
