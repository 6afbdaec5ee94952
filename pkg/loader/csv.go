package loader

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// loadCSV reads comma- or tab-separated values into a single table. Ragged
// records are right-padded with empty cells.
func loadCSV(input string, format Format) (*Source, error) {
	r := csv.NewReader(strings.NewReader(input))
	if format == FormatTSV {
		r.Comma = '\t'
	}
	// Field counts are reconciled by Normalize below, not by the reader.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(string(format)), err)
	}
	t := table.FromCells(records).Normalize("")
	return &Source{Format: format, Tables: []table.Table{t}}, nil
}
