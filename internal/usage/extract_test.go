package usage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSingle, "single": ModeSingle, " MULTI ": ModeMulti, "Segmented": ModeSegmented} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("weekly")
	assert.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{Mode: ModeSingle}.Validate())
	assert.NoError(t, Options{Mode: ModeSegmented}.Validate())
	assert.NoError(t, Options{Mode: ModeMulti, StartMonth: 12}.Validate())
	assert.ErrorIs(t, Options{Mode: ModeMulti}.Validate(), ErrInvalidStartMonth)
	assert.Error(t, Options{Mode: "yearly"}.Validate())
}

// paginate joins pages with a form feed and reports their spans.
func paginate(pages []string) Document {
	var b strings.Builder
	spans := make([]PageSpan, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\f")
		}
		spans[i] = PageSpan{Index: i, Offset: b.Len(), Length: len(p)}
		b.WriteString(p)
	}
	return Document{Text: b.String(), Pages: spans}
}

func TestExtract_Single(t *testing.T) {
	doc := Document{Text: "2024年2月分ご請求 12,345kWh"}
	res, err := Extract(doc, Options{Mode: ModeSingle})
	require.NoError(t, err)
	assert.Equal(t, Record{1: "12345"}, res.Record)
	assert.Equal(t, doc.Text, res.RawText)
}

func TestExtract_Segmented(t *testing.T) {
	doc := Document{Text: "4月 300kWh 5月 400kWh"}
	res, err := Extract(doc, Options{Mode: ModeSegmented})
	require.NoError(t, err)
	assert.Equal(t, Record{3: "300", 4: "400"}, res.Record)
}

func TestExtract_Multi(t *testing.T) {
	pages := make([]string, 24)
	for i := range pages {
		pages[i] = fmt.Sprintf("p%d", i)
	}
	for g := 0; g < 12; g++ {
		pages[2*g] = fmt.Sprintf("使用量 %d,000kWh", g+1)
	}
	res, err := Extract(paginate(pages), Options{Mode: ModeMulti, StartMonth: 10})
	require.NoError(t, err)
	require.Equal(t, 12, res.Record.Len())
	assert.Equal(t, "1000", res.Record[9])
	assert.Equal(t, "3000", res.Record[11])
	assert.Equal(t, "4000", res.Record[12])
	assert.Equal(t, "12000", res.Record[8])
	assert.Equal(t, strings.Join(pages, "\n"), res.RawText)
}

func TestExtract_MultiRejectsPageCount(t *testing.T) {
	_, err := Extract(paginate(make([]string, 13)), Options{Mode: ModeMulti, StartMonth: 1})
	assert.ErrorIs(t, err, ErrInvalidPageCount)
}

func TestExtract_MultiNeedsStartMonth(t *testing.T) {
	_, err := Extract(paginate(make([]string, 12)), Options{Mode: ModeMulti})
	assert.ErrorIs(t, err, ErrInvalidStartMonth)
}
