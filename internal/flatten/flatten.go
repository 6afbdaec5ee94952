// Package flatten collapses runs of cells in one or more columns into a
// single cell via a named or expression-based reduction. Consumption runs
// downward for positive row counts, upward for negative ones, and infers the
// separator-delimited group span when the count is zero. Only rows left
// completely blank by the operation are collapsed out of the table; a row
// that keeps content in any column is retained as-is.
package flatten

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// Column flattens a run of cells in one column. The run starts at and
// includes the cell at the given coordinate and extends abs(nrows) data rows
// downward (nrows > 0) or upward (nrows < 0), stopping early at the table
// edge; nrows == 0 infers the span from the start line to the end of its
// separator-delimited group. Separator rows are skipped without counting.
// The collected cells are trimmed, handed to the reducer in document order,
// and the result replaces the start cell; the other consumed cells are
// blanked but their rows are left in place. Returns the number of cells
// actually consumed.
func Column(t *table.Table, at table.Coordinate, nrows int, reduce Reducer) (int, error) {
	if err := checkCoordinate(t, at); err != nil {
		return 0, fmt.Errorf("flatten at %s: %w", at, err)
	}
	span := consumedSpan(t, at.Line, nrows)

	ordered := make([]int, len(span))
	copy(ordered, span)
	sort.Ints(ordered)
	contents := make([]string, 0, len(ordered))
	for _, l := range ordered {
		cell, err := t.Cell(l, at.Col)
		if err != nil {
			return 0, fmt.Errorf("flatten at %s: %w", at, err)
		}
		contents = append(contents, strings.TrimSpace(cell))
	}

	result, err := reduce.Apply(contents)
	if err != nil {
		return 0, fmt.Errorf("flatten at %s with %q: %w", at, reduce.Name, err)
	}

	for _, l := range span {
		if l == at.Line {
			continue
		}
		if err := t.SetCell(l, at.Col, ""); err != nil {
			return 0, err
		}
	}
	if err := t.SetCell(at.Line, at.Col, result); err != nil {
		return 0, err
	}
	return len(span), nil
}

// Columns applies Column across a contiguous column span in the start row,
// then collapses consumed rows whose cells all ended up blank (the start row
// never collapses), and repeats the whole process reps times, each repetition
// starting at the data row following the previous start row. ncols > 0 spans
// that many columns rightward from the start column, ncols < 0 spans leftward
// ending at the start column, ncols == 0 spans to the right table edge.
// The table is modified only if every step succeeds.
func Columns(t *table.Table, at table.Coordinate, nrows, ncols int, reduce Reducer, reps int) error {
	if err := checkCoordinate(t, at); err != nil {
		return fmt.Errorf("flatten at %s: %w", at, err)
	}
	if reps < 1 {
		reps = 1
	}
	work := t.Clone()
	line := at.Line
	for rep := 0; rep < reps; rep++ {
		if line < 1 || line > work.DataRowCount() {
			break
		}
		start, err := flattenOnce(&work, table.Coordinate{Line: line, Col: at.Col}, nrows, ncols, reduce)
		if err != nil {
			return err
		}
		line = start + 1
	}
	*t = work
	return nil
}

// flattenOnce runs one flatten-and-collapse pass and returns the start
// line's number after the collapse.
func flattenOnce(t *table.Table, at table.Coordinate, nrows, ncols int, reduce Reducer) (int, error) {
	span := consumedSpan(t, at.Line, nrows)
	for _, c := range columnSpan(t, at.Col, ncols) {
		if _, err := Column(t, table.Coordinate{Line: at.Line, Col: c}, nrows, reduce); err != nil {
			return 0, err
		}
	}

	// Collapse bottom-up so earlier removals cannot shift later ones.
	desc := make([]int, len(span))
	copy(desc, span)
	sort.Sort(sort.Reverse(sort.IntSlice(desc)))
	start := at.Line
	for _, l := range desc {
		if l == at.Line {
			continue
		}
		cells, err := t.DataRow(l)
		if err != nil {
			return 0, err
		}
		blank := true
		for _, c := range cells {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			continue
		}
		if err := t.RemoveDataRow(l); err != nil {
			return 0, err
		}
		if l < start {
			start--
		}
	}
	return start, nil
}

// consumedSpan lists the data lines a flatten starting at line consumes, in
// consumption order. The span stops at the table edge, so it may be shorter
// than requested.
func consumedSpan(t *table.Table, line, nrows int) []int {
	count := nrows
	if count == 0 {
		_, last := groupBounds(t, line)
		count = last - line + 1
	}
	step := 1
	if count < 0 {
		step, count = -1, -count
	}
	total := t.DataRowCount()
	span := make([]int, 0, count)
	for l := line; len(span) < count && l >= 1 && l <= total; l += step {
		span = append(span, l)
	}
	return span
}

// groupBounds returns the first and last data lines of the
// separator-delimited group containing line.
func groupBounds(t *table.Table, line int) (int, int) {
	first, cur := 1, 0
	for _, r := range t.Rows {
		if r.Separator {
			if cur >= line {
				return first, cur
			}
			first = cur + 1
			continue
		}
		cur++
	}
	return first, cur
}

// columnSpan expands the column-count argument into concrete 1-based column
// numbers, ascending, clamped to the table width.
func columnSpan(t *table.Table, col, ncols int) []int {
	width := t.ColumnCount()
	lo, hi := col, col
	switch {
	case ncols == 0:
		hi = width
	case ncols > 0:
		hi = col + ncols - 1
	default:
		lo = col + ncols + 1
	}
	if lo < 1 {
		lo = 1
	}
	if hi > width {
		hi = width
	}
	span := make([]int, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		span = append(span, c)
	}
	return span
}

func checkCoordinate(t *table.Table, at table.Coordinate) error {
	if rows := t.DataRowCount(); at.Line < 1 || at.Line > rows {
		return fmt.Errorf("data line %d out of range [1,%d]", at.Line, rows)
	}
	if cols := t.ColumnCount(); at.Col < 1 || at.Col > cols {
		return fmt.Errorf("column %d out of range [1,%d]", at.Col, cols)
	}
	return nil
}
