// Package table holds the in-memory model for pipe tables embedded in
// plain-text documents: an ordered sequence of rows, each either a horizontal
// separator or a list of cells, plus the pure reshaping operations (transpose,
// concatenation, separator insertion) every other component builds on.
package table

import (
	"fmt"
)

// Row is one line of a table: either a horizontal separator rule or an
// ordered list of cell strings (insertion order = column order).
type Row struct {
	Cells     []string
	Separator bool
}

// NewRow returns a data row holding the given cells.
func NewRow(cells ...string) Row {
	return Row{Cells: cells}
}

// NewSeparator returns a separator row.
func NewSeparator() Row {
	return Row{Separator: true}
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	if r.Separator {
		return Row{Separator: true}
	}
	cells := make([]string, len(r.Cells))
	copy(cells, r.Cells)
	return Row{Cells: cells}
}

// Coordinate addresses a single data cell. Line and Col are 1-based and count
// only data rows; separator rows are not addressable.
type Coordinate struct {
	Line int
	Col  int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Line, c.Col)
}

// Table is an ordered sequence of rows. A well-formed table has all data rows
// at the same length; Normalize establishes that invariant for ragged input.
type Table struct {
	Rows []Row
}

// New returns a table built from the given rows.
func New(rows ...Row) Table {
	return Table{Rows: rows}
}

// NewBlank returns a rows×cols table with every cell set to fill.
func NewBlank(rows, cols int, fill string) Table {
	t := Table{Rows: make([]Row, 0, rows)}
	for i := 0; i < rows; i++ {
		cells := make([]string, cols)
		for j := range cells {
			cells[j] = fill
		}
		t.Rows = append(t.Rows, Row{Cells: cells})
	}
	return t
}

// FromCells builds a table of data rows from a cell grid.
func FromCells(grid [][]string) Table {
	t := Table{Rows: make([]Row, 0, len(grid))}
	for _, cells := range grid {
		row := make([]string, len(cells))
		copy(row, cells)
		t.Rows = append(t.Rows, Row{Cells: row})
	}
	return t
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// IsEmpty reports whether the table has no rows at all.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// ColumnCount returns the length of the first data row, or 0 when the table
// holds no data rows.
func (t Table) ColumnCount() int {
	for _, r := range t.Rows {
		if !r.Separator {
			return len(r.Cells)
		}
	}
	return 0
}

// DataRowCount returns the number of data rows, excluding separators.
func (t Table) DataRowCount() int {
	n := 0
	for _, r := range t.Rows {
		if !r.Separator {
			n++
		}
	}
	return n
}

// rowIndex maps a 1-based data-line number to an index into Rows,
// or -1 when out of range.
func (t Table) rowIndex(line int) int {
	if line < 1 {
		return -1
	}
	seen := 0
	for i, r := range t.Rows {
		if r.Separator {
			continue
		}
		seen++
		if seen == line {
			return i
		}
	}
	return -1
}

// DataRow returns the cells of the given 1-based data line.
func (t Table) DataRow(line int) ([]string, error) {
	i := t.rowIndex(line)
	if i < 0 {
		return nil, fmt.Errorf("data line %d out of range [1,%d]", line, t.DataRowCount())
	}
	return t.Rows[i].Cells, nil
}

// DataRows returns all data rows in order, excluding separators. The inner
// slices alias table storage; callers that mutate must Clone first.
func (t Table) DataRows() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !r.Separator {
			out = append(out, r.Cells)
		}
	}
	return out
}

// Cell returns the content of the addressed cell. A column beyond the row's
// actual length reads as empty, which keeps ragged host input harmless.
func (t Table) Cell(line, col int) (string, error) {
	i := t.rowIndex(line)
	if i < 0 || col < 1 {
		return "", fmt.Errorf("cell (%d,%d) out of range", line, col)
	}
	cells := t.Rows[i].Cells
	if col > len(cells) {
		return "", nil
	}
	return cells[col-1], nil
}

// SetCell overwrites the addressed cell in place, growing the row when the
// column lies beyond its current length.
func (t *Table) SetCell(line, col int, value string) error {
	i := t.rowIndex(line)
	if i < 0 || col < 1 {
		return fmt.Errorf("cell (%d,%d) out of range", line, col)
	}
	cells := t.Rows[i].Cells
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	t.Rows[i].Cells = cells
	return nil
}

// RemoveDataRow deletes the given 1-based data line in place.
func (t *Table) RemoveDataRow(line int) error {
	i := t.rowIndex(line)
	if i < 0 {
		return fmt.Errorf("data line %d out of range [1,%d]", line, t.DataRowCount())
	}
	t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
	return nil
}

// SeparatorBefore reports whether the row immediately above the given data
// line, in the full row sequence, is a separator. Line 1 with a leading
// separator row counts.
func (t Table) SeparatorBefore(line int) bool {
	i := t.rowIndex(line)
	if i <= 0 {
		return false
	}
	return t.Rows[i-1].Separator
}

// SeparatorAfter reports whether the row immediately below the given data
// line, in the full row sequence, is a separator.
func (t Table) SeparatorAfter(line int) bool {
	i := t.rowIndex(line)
	if i < 0 || i+1 >= len(t.Rows) {
		return false
	}
	return t.Rows[i+1].Separator
}

// Normalize returns a copy with every data row padded on the right with pad
// up to the widest row, establishing the equal-length invariant.
func (t Table) Normalize(pad string) Table {
	width := 0
	for _, r := range t.Rows {
		if !r.Separator && len(r.Cells) > width {
			width = len(r.Cells)
		}
	}
	out := Table{Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		if r.Separator {
			out.Rows[i] = Row{Separator: true}
			continue
		}
		cells := make([]string, width)
		copy(cells, r.Cells)
		for j := len(r.Cells); j < width; j++ {
			cells[j] = pad
		}
		out.Rows[i] = Row{Cells: cells}
	}
	return out
}

// Transpose swaps rows and columns, dropping separators. It fails with
// ErrNoDataRows on a table without data rows. Jagged input is read with
// missing cells as empty; callers wanting strict rectangles Normalize first.
func (t Table) Transpose() (Table, error) {
	rows := t.DataRows()
	if len(rows) == 0 {
		return Table{}, ErrNoDataRows
	}
	cols := t.ColumnCount()
	out := Table{Rows: make([]Row, 0, cols)}
	for c := 0; c < cols; c++ {
		cells := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				cells[r] = row[c]
			}
		}
		out.Rows = append(out.Rows, Row{Cells: cells})
	}
	return out, nil
}

// HConcat concatenates tables side by side, row-wise. Separators are dropped
// from every input; tables shorter than the tallest are padded at the bottom
// with pad-filled rows of their own width.
func HConcat(tables []Table, pad string) (Table, error) {
	if len(tables) == 0 {
		return Table{}, ErrEmptyInput
	}
	grids := make([][][]string, len(tables))
	widths := make([]int, len(tables))
	height := 0
	for i, t := range tables {
		grids[i] = t.DataRows()
		widths[i] = t.ColumnCount()
		if len(grids[i]) > height {
			height = len(grids[i])
		}
	}
	out := Table{Rows: make([]Row, 0, height)}
	for r := 0; r < height; r++ {
		var cells []string
		for i, grid := range grids {
			if r < len(grid) {
				row := grid[r]
				for c := 0; c < widths[i]; c++ {
					if c < len(row) {
						cells = append(cells, row[c])
					} else {
						cells = append(cells, pad)
					}
				}
			} else {
				for c := 0; c < widths[i]; c++ {
					cells = append(cells, pad)
				}
			}
		}
		out.Rows = append(out.Rows, Row{Cells: cells})
	}
	return out, nil
}

// VConcat stacks tables top to bottom. Separators are dropped from every
// input; rows narrower than the widest input are padded on the right with pad.
func VConcat(tables []Table, pad string) (Table, error) {
	if len(tables) == 0 {
		return Table{}, ErrEmptyInput
	}
	width := 0
	for _, t := range tables {
		if w := t.ColumnCount(); w > width {
			width = w
		}
	}
	var out Table
	for _, t := range tables {
		for _, row := range t.DataRows() {
			cells := make([]string, width)
			copy(cells, row)
			for c := len(row); c < width; c++ {
				cells[c] = pad
			}
			out.Rows = append(out.Rows, Row{Cells: cells})
		}
	}
	return out, nil
}

// InsertSeparators returns a copy with separator rows inserted before the
// given 1-based positions in the ORIGINAL row sequence. Positions are sorted
// ascending and applied left to right, so each later insertion lands where
// the caller intended despite earlier shifts; rowCount+1 appends at the end.
// Out-of-range positions are ignored.
func (t Table) InsertSeparators(positions []int) Table {
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	out := Table{Rows: make([]Row, 0, len(t.Rows)+len(sorted))}
	k := 0
	for i, r := range t.Rows {
		for k < len(sorted) && sorted[k] == i+1 {
			out.Rows = append(out.Rows, Row{Separator: true})
			k++
		}
		out.Rows = append(out.Rows, r.Clone())
	}
	for k < len(sorted) && sorted[k] == len(t.Rows)+1 {
		out.Rows = append(out.Rows, Row{Separator: true})
		k++
	}
	return out
}

// StripSeparators returns a copy holding only the data rows.
func (t Table) StripSeparators() Table {
	out := Table{Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if !r.Separator {
			out.Rows = append(out.Rows, r.Clone())
		}
	}
	return out
}
