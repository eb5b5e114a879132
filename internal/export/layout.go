package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/xuri/excelize/v2"
)

// Layout says where a record lands in the workbook.
type Layout struct {
	Sheet            string            `json:"sheet,omitempty"` // "" = active sheet
	LabelCell        string            `json:"label_cell,omitempty"`
	MonthRow         int               `json:"month_row,omitempty"`
	FirstMonthColumn string            `json:"first_month_column,omitempty"`
	MonthCells       map[string]string `json:"month_cells,omitempty"` // "1".."12" -> cell, overrides row/column
}

// DefaultLayout puts the label in B1 and January..December in B21..M21.
func DefaultLayout() Layout {
	return Layout{LabelCell: "B1", MonthRow: 21, FirstMonthColumn: "B"}
}

const layoutSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "sheet": {"type": "string"},
    "label_cell": {"type": "string", "pattern": "^[A-Z]{1,3}[1-9][0-9]*$"},
    "month_row": {"type": "integer", "minimum": 1, "maximum": 1048576},
    "first_month_column": {"type": "string", "pattern": "^[A-Z]{1,3}$"},
    "month_cells": {
      "type": "object",
      "propertyNames": {"pattern": "^([1-9]|1[0-2])$"},
      "additionalProperties": {"type": "string", "pattern": "^[A-Z]{1,3}[1-9][0-9]*$"}
    }
  }
}`

var compiledLayoutSchema = mustCompileLayoutSchema()

func mustCompileLayoutSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("layout.json", bytes.NewReader([]byte(layoutSchema))); err != nil {
		panic(fmt.Sprintf("add layout schema: %v", err))
	}
	return compiler.MustCompile("layout.json")
}

// LoadLayout reads a layout file. An empty path yields DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(b)
}

// ParseLayout validates data against the layout schema and fills unset fields from DefaultLayout.
func ParseLayout(data []byte) (Layout, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := compiledLayoutSchema.Validate(v); err != nil {
		return Layout{}, fmt.Errorf("layout does not match schema: %w", err)
	}

	l := DefaultLayout()
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if _, err := excelize.ColumnNameToNumber(l.FirstMonthColumn); err != nil {
		return Layout{}, fmt.Errorf("first_month_column: %w", err)
	}
	return l, nil
}

// MonthCell returns the cell for storage month m (1..12).
func (l Layout) MonthCell(m int) (string, error) {
	if cell, ok := l.MonthCells[strconv.Itoa(m)]; ok {
		return cell, nil
	}
	col, err := excelize.ColumnNameToNumber(l.FirstMonthColumn)
	if err != nil {
		return "", err
	}
	return excelize.CoordinatesToCellName(col+m-1, l.MonthRow)
}
