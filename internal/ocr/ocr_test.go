package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/usage-tracker/constants"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

// stubRunner fakes pdftotext, pdftoppm and tesseract.
type stubRunner struct {
	mu        sync.Mutex
	calls     []string
	pdftotext string
	textErr   error
	ocrPages  []string // one rendered page per entry
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()

	switch name {
	case "pdftotext":
		if r.textErr != nil {
			return nil, []byte("Syntax Error"), r.textErr
		}
		return []byte(r.pdftotext), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := range r.ocrPages {
			if err := os.WriteFile(prefix+"-"+string(rune('1'+i))+".png", []byte{0x89}, 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		img := filepath.Base(args[0])
		idx := int(strings.TrimSuffix(strings.TrimPrefix(img, "page-"), ".png")[0] - '1')
		return []byte(r.ocrPages[idx]), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func (r *stubRunner) called(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestExtract_TextLayer(t *testing.T) {
	r := &stubRunner{pdftotext: "2024年２月分ご請求\f使用量　１２，３４５ｋＷｈ\f"}
	e := NewExtractorWithRunner(Config{}, r, nil)

	res, err := e.Extract(context.Background(), "bill.PDF")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFText, res.Method)
	require.Len(t, res.Pages, 2)

	pages := usage.SlicePages(res.Text, res.Pages)
	assert.Equal(t, "2024年2月分ご請求", pages[0])
	assert.Equal(t, "使用量 12,345kWh", pages[1])
	assert.Equal(t, usage.Record{1: "12345"}, usage.BuildFromWholeText(res.Text))
	assert.Equal(t, 0, r.called("pdftoppm"))
	assert.Greater(t, res.Confidence, float32(0.5))
}

func TestExtract_FallsBackToOCR(t *testing.T) {
	r := &stubRunner{
		pdftotext: "\f \f",
		ocrPages:  []string{"3月ご使用分", "-----\n合計 410kWh"},
	}
	e := NewExtractorWithRunner(Config{}, r, nil)

	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodPDFOCR, res.Method)
	assert.Equal(t, "jpn", res.Language)
	assert.Equal(t, []string{"3月ご使用分", "合計 410kWh"}, usage.SlicePages(res.Text, res.Pages))
	assert.Equal(t, 2, r.called("tesseract"))
}

func TestExtract_OCRCacheByContentHash(t *testing.T) {
	cache := t.TempDir()
	r := &stubRunner{pdftotext: "", ocrPages: []string{"5月分 90kWh"}}
	e := NewExtractorWithRunner(Config{ArtifactCacheDir: cache}, r, nil)
	ctx := WithContentHash(context.Background(), "abc123")

	first, err := e.Extract(ctx, "scan.pdf")
	require.NoError(t, err)
	second, err := e.Extract(ctx, "scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, r.called("pdftoppm"))
	assert.FileExists(t, filepath.Join(cache, "abc123.ocr.txt"))
}

func TestExtract_Errors(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)
	_, err := e.Extract(context.Background(), "photo.jpg")
	assert.Error(t, err)

	e = NewExtractorWithRunner(Config{}, &stubRunner{textErr: errors.New("exit status 1")}, nil)
	res, err := e.Extract(context.Background(), "broken.pdf")
	assert.ErrorContains(t, err, "pdftotext")
	assert.Equal(t, []string{"Syntax Error"}, res.Warnings)
}

func TestJoinPages(t *testing.T) {
	text, spans := JoinPages([]string{"a", "", "ccc"})
	assert.Equal(t, "a\f\fccc", text)
	assert.Equal(t, []usage.PageSpan{
		{Index: 0, Offset: 0, Length: 1},
		{Index: 1, Offset: 2, Length: 0},
		{Index: 2, Offset: 3, Length: 3},
	}, spans)
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, splitPages("one\ftwo\f"))
	assert.Equal(t, []string{"one", "", "three"}, splitPages("one\f\fthree\f"))
	assert.Nil(t, splitPages(""))
}

func TestNormalize(t *testing.T) {
	in := "１０月\tご使用量   １２，３４５ ｋＷｈ  \r\n\r\n\r\n\r\n合計 12, 345kWh"
	assert.Equal(t, "10月 ご使用量 12,345 kWh\n\n合計 12,345kWh", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
