package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanKWh(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int64
		wantOK bool
	}{
		{name: "empty", text: "", wantOK: false},
		{name: "no unit", text: "ご請求金額 12,345円 使用量 678", wantOK: false},
		{name: "single", text: "当月ご使用量 512kWh", want: 512, wantOK: true},
		{name: "thousands separator", text: "使用量 12,345kWh", want: 12345, wantOK: true},
		{name: "space before unit", text: "使用量 12,345 kWh", want: 12345, wantOK: true},
		{name: "case insensitive", text: "total 900 KWH", want: 900, wantOK: true},
		{name: "largest wins", text: "昼間 300kWh 夜間 200kWh 合計 500kWh", want: 500, wantOK: true},
		{name: "largest wins regardless of order", text: "合計 500kWh 内訳 300kWh", want: 500, wantOK: true},
		{name: "zero only", text: "0kWh", wantOK: false},
		{name: "zero placeholder skipped", text: "前年同月 0kWh 当月 42kWh", want: 42, wantOK: true},
		{name: "separators only", text: ",,, kWh", wantOK: false},
		{name: "full-width digits", text: "ご使用量 １２,３４５kWh", want: 12345, wantOK: true},
		{name: "full-width beats smaller ascii", text: "前月 900kWh 当月 １,２００ kWh", want: 1200, wantOK: true},
		{name: "non-foldable digits skipped", text: "٣٤٥kWh 12kWh", want: 12, wantOK: true},
		{name: "overflow skipped", text: "99999999999999999999kWh 7kWh", want: 7, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ScanKWh(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
