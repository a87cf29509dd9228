package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/necfill/api/internal/form"
)

// MappedHeaders returns every mapped column header in table order.
func MappedHeaders() []string {
	headers := make([]string, 0, len(form.Mappings))
	for _, m := range form.Mappings {
		headers = append(headers, m.Column)
	}
	return headers
}

// BuildWorkbook writes an .xlsx with the given header row and data rows.
// Short rows leave trailing cells empty, like a sparsely filled sheet.
func BuildWorkbook(t *testing.T, headers []string, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			t.Fatalf("header cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("set header %q: %v", h, err)
		}
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
