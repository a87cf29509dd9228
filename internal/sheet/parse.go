// Package sheet turns the uploaded workbook into recipient rows keyed by
// column header.
package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet record keyed by column header. Cell values are the
// formatted strings excelize renders, so numeric cells arrive as text.
type Row map[string]string

// Get returns the raw cell for a column, empty when the column is absent.
func (r Row) Get(column string) string {
	return r[column]
}

// Workbook is the parsed first sheet of an upload. The first spreadsheet
// row is the header row.
type Workbook struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether a header matched exactly, embedded line breaks
// included.
func (w *Workbook) HasColumn(name string) bool {
	for _, c := range w.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Parse reads the first sheet of an .xlsx payload. Short rows are padded
// with empty cells so every row exposes every column. When a header text
// repeats, the first occurrence wins and later columns under the same text
// are ignored.
func Parse(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Workbook{}, nil
	}

	wb := &Workbook{Columns: rows[0]}
	first := make(map[string]int, len(wb.Columns))
	for i, col := range wb.Columns {
		if col == "" {
			continue
		}
		if _, seen := first[col]; !seen {
			first[col] = i
		}
	}
	for _, cells := range rows[1:] {
		row := make(Row, len(first))
		for col, i := range first {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		wb.Rows = append(wb.Rows, row)
	}
	return wb, nil
}
