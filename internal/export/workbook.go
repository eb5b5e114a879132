package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// Workbook writes a merged usage record into a copy of a spreadsheet template.
type Workbook struct {
	layout       Layout
	templatePath string
	logger       *slog.Logger
}

// NewWorkbook returns a writer for layout. A templatePath that does not exist
// (or is empty) starts from a blank workbook.
func NewWorkbook(layout Layout, templatePath string, logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{layout: layout, templatePath: templatePath, logger: logger}
}

// Write returns the XLSX bytes. The label goes to the label cell when it is not blank;
// each month present in rec goes to its cell and absent months are left as the template has them.
func (w *Workbook) Write(ctx context.Context, rec usage.Record, label string) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	sheet := w.sheet(f)

	if label = strings.TrimSpace(label); label != "" {
		if err := f.SetCellValue(sheet, w.layout.LabelCell, label); err != nil {
			return nil, fmt.Errorf("write label: %w", err)
		}
	}

	for _, m := range rec.Months() {
		cell, err := w.layout.MonthCell(m)
		if err != nil {
			return nil, fmt.Errorf("month %d cell: %w", m, err)
		}
		v, _ := rec.Get(m)
		if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
			return nil, fmt.Errorf("write month %d: %w", m, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	w.logger.Info("export.xlsx.ok",
		"sheet", sheet,
		"months", rec.Len(),
		"label", label != "",
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile is Write followed by saving the bytes to path.
func (w *Workbook) WriteFile(ctx context.Context, path string, rec usage.Record, label string) error {
	b, err := w.Write(ctx, rec, label)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Workbook) open() (*excelize.File, error) {
	if w.templatePath == "" {
		return excelize.NewFile(), nil
	}
	f, err := excelize.OpenFile(w.templatePath)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("export.template.missing", "path", w.templatePath)
		return excelize.NewFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	return f, nil
}

// sheet picks the configured sheet, or the workbook's active sheet when none is
// configured or the configured name is absent. Missing sheets are never created.
func (w *Workbook) sheet(f *excelize.File) string {
	active := f.GetSheetName(f.GetActiveSheetIndex())
	if w.layout.Sheet == "" {
		return active
	}
	if idx, _ := f.GetSheetIndex(w.layout.Sheet); idx == -1 {
		w.logger.Warn("export.sheet.missing", "sheet", w.layout.Sheet, "fallback", active)
		return active
	}
	return w.layout.Sheet
}

// cellValue writes digit strings as numbers so the sheet can sum them.
func cellValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return v
}
