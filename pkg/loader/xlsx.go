package loader

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// loadXLSX reads one worksheet of a workbook into a single table. GetRows
// trims trailing empty cells per row; Normalize restores the rectangle.
func loadXLSX(data []byte, sheet string) (*Source, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid XLSX: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	t := table.FromCells(rows).Normalize("")
	return &Source{Format: FormatXLSX, Tables: []table.Table{t}}, nil
}
