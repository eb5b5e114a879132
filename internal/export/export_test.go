package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

func readBack(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Layout
		wantErr bool
	}{
		{name: "empty object gets defaults", in: `{}`, want: DefaultLayout()},
		{
			name: "overrides",
			in:   `{"sheet":"電力","label_cell":"C2","month_row":5,"first_month_column":"D"}`,
			want: Layout{Sheet: "電力", LabelCell: "C2", MonthRow: 5, FirstMonthColumn: "D"},
		},
		{name: "row zero", in: `{"month_row":0}`, wantErr: true},
		{name: "bad cell", in: `{"label_cell":"b1"}`, wantErr: true},
		{name: "month key out of range", in: `{"month_cells":{"13":"A1"}}`, wantErr: true},
		{name: "unknown field", in: `{"sheets":"x"}`, wantErr: true},
		{name: "not json", in: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLayout([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayout_MonthCell(t *testing.T) {
	l := DefaultLayout()
	for m, want := range map[int]string{1: "B21", 2: "C21", 12: "M21"} {
		got, err := l.MonthCell(m)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	l.MonthCells = map[string]string{"4": "Z9"}
	got, err := l.MonthCell(4)
	require.NoError(t, err)
	assert.Equal(t, "Z9", got)
	got, err = l.MonthCell(5)
	require.NoError(t, err)
	assert.Equal(t, "F21", got)
}

func TestLoadLayout(t *testing.T) {
	l, err := LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout(), l)

	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"month_row":30}`), 0o644))
	l, err = LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 30, l.MonthRow)

	_, err = LoadLayout(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWorkbook_Write_NewWorkbook(t *testing.T) {
	w := NewWorkbook(DefaultLayout(), filepath.Join(t.TempDir(), "missing.xlsx"), nil)

	b, err := w.Write(context.Background(), usage.Record{1: "100", 12: "250"}, "  ACME電力  ")
	require.NoError(t, err)

	f := readBack(t, b)
	sheet := f.GetSheetName(0)
	assert.Equal(t, "ACME電力", cell(t, f, sheet, "B1"))
	assert.Equal(t, "100", cell(t, f, sheet, "B21"))
	assert.Equal(t, "250", cell(t, f, sheet, "M21"))
	assert.Empty(t, cell(t, f, sheet, "C21"))
}

func TestWorkbook_Write_Template(t *testing.T) {
	tmpl := excelize.NewFile()
	_, err := tmpl.NewSheet("Usage")
	require.NoError(t, err)
	require.NoError(t, tmpl.SetCellValue("Usage", "B1", "old label"))
	require.NoError(t, tmpl.SetCellValue("Usage", "C21", "keep"))
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, tmpl.SaveAs(path))
	require.NoError(t, tmpl.Close())

	l := DefaultLayout()
	l.Sheet = "Usage"
	w := NewWorkbook(l, path, nil)

	out := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, w.WriteFile(context.Background(), out, usage.Record{1: "5", 3: "7"}, "   "))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, "old label", cell(t, f, "Usage", "B1"))
	assert.Equal(t, "5", cell(t, f, "Usage", "B21"))
	assert.Equal(t, "keep", cell(t, f, "Usage", "C21"))
	assert.Equal(t, "7", cell(t, f, "Usage", "D21"))

	// the template itself is untouched
	orig, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = orig.Close() }()
	assert.Empty(t, cell(t, orig, "Usage", "B21"))
}

func TestWorkbook_Write_MissingSheetFallsBackToActive(t *testing.T) {
	l := DefaultLayout()
	l.Sheet = "Usage"
	b, err := NewWorkbook(l, "", nil).Write(context.Background(), usage.Record{2: "9"}, "")
	require.NoError(t, err)

	f := readBack(t, b)
	assert.Equal(t, "9", cell(t, f, "Sheet1", "C21"))
	idx, err := f.GetSheetIndex("Usage")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestWorkbook_Write_ActiveSheetOfTemplate(t *testing.T) {
	tpl := excelize.NewFile()
	_, err := tpl.NewSheet("Ledger")
	require.NoError(t, err)
	idx, err := tpl.GetSheetIndex("Ledger")
	require.NoError(t, err)
	tpl.SetActiveSheet(idx)
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, tpl.SaveAs(path))
	require.NoError(t, tpl.Close())

	l := DefaultLayout()
	l.Sheet = "Missing"
	b, err := NewWorkbook(l, path, nil).Write(context.Background(), usage.Record{2: "42"}, "")
	require.NoError(t, err)

	f := readBack(t, b)
	assert.Equal(t, "42", cell(t, f, "Ledger", "C21"))
	assert.Empty(t, cell(t, f, "Sheet1", "C21"))
}

func TestWorkbook_Write_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWorkbook(DefaultLayout(), "", nil).Write(ctx, usage.Record{}, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
