// Package limiter windows result tables for display: --limit, --offset, and
// --tail over data rows.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// Config holds the row-limiting parameters.
type Config struct {
	Limit  int // Show only this many rows (0 = unlimited)
	Offset int // Skip the first N rows (0 = no skip)
	Tail   int // Show only the last N rows (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// window maps the configuration onto a row count as a half-open [start, end)
// range of 0-based data-row indices.
func (c Config) window(length int) (int, int) {
	if c.Tail > 0 {
		start := length - c.Tail
		if start < 0 {
			start = 0
		}
		return start, length
	}
	start := c.Offset
	if start > length {
		start = length
	}
	end := length
	if c.Limit > 0 {
		end = start + c.Limit
		if end > length {
			end = length
		}
	}
	if start > end {
		start = end
	}
	return start, end
}

// Apply windows the table's data rows. An inactive config returns the table
// unchanged; an active one returns the selected rows with separators dropped,
// since a separator's meaning does not survive an arbitrary row window.
func (c Config) Apply(t table.Table) table.Table {
	if !c.IsActive() {
		return t
	}
	rows := t.DataRows()
	start, end := c.window(len(rows))
	out := table.Table{Rows: make([]table.Row, 0, end-start)}
	for _, cells := range rows[start:end] {
		row := make([]string, len(cells))
		copy(row, cells)
		out.Rows = append(out.Rows, table.Row{Cells: row})
	}
	return out
}
