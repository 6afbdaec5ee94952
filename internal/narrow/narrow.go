// Package narrow splits over-wide cell content across synthetic additional
// rows. Two strategies: per-column greedy word wrap, and whole-table
// narrowing planned by an external optimizer that minimizes the total added
// rows under a width budget. Widths are display widths. Either way the
// table is modified only after the whole plan is known to apply, so a
// failure never leaves a half-narrowed table.
package narrow

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// Options configures whole-table narrowing.
type Options struct {
	// MaxWidth is the budget for the summed column widths.
	MaxWidth int
	// Fixed lists 1-based columns kept at their current width and excluded
	// from the optimizer's assignment.
	Fixed map[int]bool
	// Separators inserts a separator row after each expanded group.
	Separators bool
}

// Wrap greedily breaks text into lines no wider than width, never splitting
// a word; a single word wider than width overflows alone on its line.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	if width < 1 {
		width = 1
	}
	lines := make([]string, 0, 4)
	cur := words[0]
	curW := runewidth.StringWidth(cur)
	for _, w := range words[1:] {
		ww := runewidth.StringWidth(w)
		if curW+1+ww <= width {
			cur += " " + w
			curW += 1 + ww
			continue
		}
		lines = append(lines, cur)
		cur, curW = w, ww
	}
	return append(lines, cur)
}

// wrapFit wraps text into at most maxLines lines, widening past the
// assigned width when a narrower wrap cannot fit. The search is bounded:
// the width grows toward the text's own width, where the wrap is a single
// line.
func wrapFit(text string, width, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	lines := Wrap(text, width)
	for len(lines) > maxLines {
		width++
		lines = Wrap(text, width)
	}
	return lines
}

// Column narrows one column: every cell wider than width word-wraps into a
// group of rows, with the other columns' content kept in the first row of
// the group and blank in the rest. With separators, a separator row follows
// each expanded group unless the group ends the table or a separator
// already follows.
func Column(t *table.Table, col, width int, separators bool) error {
	if cols := t.ColumnCount(); col < 1 || col > cols {
		return fmt.Errorf("narrow: column %d out of range [1,%d]", col, cols)
	}
	if width < 1 {
		return fmt.Errorf("narrow: width must be positive, got %d", width)
	}
	nrows := t.DataRowCount()
	out := make([]table.Row, 0, len(t.Rows))
	dataIdx := 0
	for ri, row := range t.Rows {
		if row.Separator {
			out = append(out, row.Clone())
			continue
		}
		dataIdx++
		var cell string
		if col <= len(row.Cells) {
			cell = row.Cells[col-1]
		}
		if runewidth.StringWidth(cell) <= width {
			out = append(out, row.Clone())
			continue
		}
		for i, ln := range Wrap(cell, width) {
			cells := make([]string, len(row.Cells))
			if i == 0 {
				copy(cells, row.Cells)
			}
			cells[col-1] = ln
			out = append(out, table.Row{Cells: cells})
		}
		if separators && dataIdx < nrows && !(ri+1 < len(t.Rows) && t.Rows[ri+1].Separator) {
			out = append(out, table.NewSeparator())
		}
	}
	t.Rows = out
	return nil
}

// Table narrows the whole table to opts.MaxWidth using the solver. Fixed
// columns keep their current width and their cost is subtracted from the
// budget; the solver assigns widths to the remaining columns and a row
// count to every original row. Each row allocated more than one row is
// split by wrapping every column's cell to its width and zip-padding the
// per-column lines. The table is untouched on any failure.
func Table(ctx context.Context, t *table.Table, solver Solver, opts Options) error {
	if solver == nil {
		return ErrUnavailable
	}
	cols := t.ColumnCount()
	nrows := t.DataRowCount()
	if cols == 0 || nrows == 0 {
		return table.ErrNoDataRows
	}

	colWidths := t.ColumnWidths()
	budget := opts.MaxWidth
	narrowable := make([]int, 0, cols)
	for c := 1; c <= cols; c++ {
		if opts.Fixed[c] {
			budget -= colWidths[c-1]
		} else {
			narrowable = append(narrowable, c)
		}
	}
	if len(narrowable) == 0 {
		return fmt.Errorf("narrow: every column is fixed")
	}
	if budget < len(narrowable) {
		return &InfeasibleError{
			Reason: fmt.Sprintf("width budget %d cannot fit %d columns", budget, len(narrowable)),
		}
	}

	lengths := make([][]int, 0, nrows)
	for _, row := range t.DataRows() {
		lr := make([]int, len(narrowable))
		for i, c := range narrowable {
			if c <= len(row) {
				lr[i] = runewidth.StringWidth(row[c-1])
			}
		}
		lengths = append(lengths, lr)
	}

	req := Request{Rows: nrows, Cols: len(narrowable), MaxWidth: budget, Lengths: lengths}
	plan, err := solver.Solve(ctx, req)
	if err != nil {
		return err
	}
	if err := validatePlan(plan, req); err != nil {
		return err
	}

	widthFor := make([]int, cols)
	for c := 1; c <= cols; c++ {
		widthFor[c-1] = colWidths[c-1]
	}
	for i, c := range narrowable {
		widthFor[c-1] = plan.Widths[i]
	}

	out := make([]table.Row, 0, len(t.Rows))
	dataIdx := 0
	for ri, row := range t.Rows {
		if row.Separator {
			out = append(out, row.Clone())
			continue
		}
		need := plan.Rows[dataIdx]
		dataIdx++
		if need <= 1 {
			out = append(out, row.Clone())
			continue
		}
		colLines := make([][]string, cols)
		for c := 0; c < cols; c++ {
			var cell string
			if c < len(row.Cells) {
				cell = row.Cells[c]
			}
			colLines[c] = wrapFit(cell, widthFor[c], need)
		}
		for ln := 0; ln < need; ln++ {
			cells := make([]string, cols)
			for c := 0; c < cols; c++ {
				if ln < len(colLines[c]) {
					cells[c] = colLines[c][ln]
				}
			}
			out = append(out, table.Row{Cells: cells})
		}
		if opts.Separators && dataIdx < nrows && !(ri+1 < len(t.Rows) && t.Rows[ri+1].Separator) {
			out = append(out, table.NewSeparator())
		}
	}
	t.Rows = out
	return nil
}

// validatePlan rejects plans the engine cannot apply: shape mismatches and
// budget overruns are malformed output, a zero width is the optimizer's
// infeasibility signal.
func validatePlan(plan Plan, req Request) error {
	if len(plan.Widths) != req.Cols || len(plan.Rows) != req.Rows {
		return &SolverError{Err: fmt.Errorf(
			"plan shape (%d widths, %d rows) does not match request (%d cols, %d rows)",
			len(plan.Widths), len(plan.Rows), req.Cols, req.Rows)}
	}
	total := 0
	for _, w := range plan.Widths {
		if w <= 0 {
			return &InfeasibleError{Reason: "optimizer assigned a zero column width"}
		}
		total += w
	}
	if total > req.MaxWidth {
		return &SolverError{Err: fmt.Errorf("plan widths sum to %d, budget is %d", total, req.MaxWidth)}
	}
	for i, n := range plan.Rows {
		if n < 1 {
			return &SolverError{Err: fmt.Errorf("plan allocates %d rows to line %d", n, i+1)}
		}
	}
	return nil
}
