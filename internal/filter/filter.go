// Package filter implements list filtering over tables: ordered row
// selection, per-row boolean filtering in the row environment, column
// projection, and the merging of named tables with a provenance column.
// Selection specs preserve order and duplicates, so a filter call can
// reorder and repeat rows and columns as well as narrow them down.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/tabx/internal/celenv"
	"github.com/oakwood-commons/tabx/pkg/rangespec"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// Options configure one List call. Zero-value specs select everything in
// original order; an empty Filter keeps every selected row.
type Options struct {
	Rows   rangespec.Spec
	Cols   rangespec.Spec
	Filter string

	// NoErrors downgrades per-row evaluation errors to exclusion of the
	// row. Compile errors stay fatal: a filter that cannot compile is
	// malformed for every row, not unlucky on one.
	NoErrors bool
}

// List filters a table. Separators are stripped; rows are selected by the
// row spec; the filter expression keeps rows where it is truthy — the
// counter n increments for every row considered, matching or not — and
// columns are projected by the col spec. The result owns its cells.
func List(t table.Table, opts Options) (table.Table, error) {
	rows := t.DataRows()
	selected := opts.Rows.Resolve(len(rows))

	var kept [][]string
	if strings.TrimSpace(opts.Filter) == "" {
		kept = make([][]string, 0, len(selected))
		for _, idx := range selected {
			kept = append(kept, rows[idx-1])
		}
	} else {
		env, err := celenv.NewRowEnv(t.ColumnCount())
		if err != nil {
			return table.Table{}, err
		}
		prg, err := env.Compile(opts.Filter)
		if err != nil {
			return table.Table{}, err
		}
		n := 0
		for _, idx := range selected {
			row := rows[idx-1]
			n++
			ok, err := prg.Eval(row, n)
			if err != nil {
				if opts.NoErrors {
					continue
				}
				return table.Table{}, err
			}
			if ok {
				kept = append(kept, row)
			}
		}
	}

	proj := opts.Cols.Resolve(t.ColumnCount())
	out := table.Table{Rows: make([]table.Row, 0, len(kept))}
	for _, row := range kept {
		cells := make([]string, len(proj))
		for i, c := range proj {
			if c <= len(row) {
				cells[i] = row[c-1]
			}
		}
		out.Rows = append(out.Rows, table.Row{Cells: cells})
	}
	return out, nil
}

// Resolver finds the raw text span of a named table in the host document.
type Resolver interface {
	FindNamed(nameOrID string) (string, error)
}

// Fetch resolves a table reference through the document and parses it.
func Fetch(r Resolver, nameOrID string) (table.Table, error) {
	if r == nil {
		return table.Table{}, fmt.Errorf("fetch %q: no document resolver configured", nameOrID)
	}
	text, err := r.FindNamed(nameOrID)
	if err != nil {
		return table.Table{}, fmt.Errorf("fetch %q: %w", nameOrID, err)
	}
	t, err := table.Parse(text)
	if err != nil {
		return table.Table{}, fmt.Errorf("fetch %q: %w", nameOrID, err)
	}
	return t, nil
}

// NamesCol places the provenance column when merging named tables.
type NamesCol string

const (
	NamesColNone  NamesCol = "none"
	NamesColFirst NamesCol = "first"
	NamesColLast  NamesCol = "last"
)

// ParseNamesCol reads a provenance-column placement. The empty string means
// none.
func ParseNamesCol(s string) (NamesCol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NamesColNone, nil
	case "first":
		return NamesColFirst, nil
	case "last":
		return NamesColLast, nil
	}
	return "", fmt.Errorf("namescol must be none, first, or last; got %q", s)
}

// MergeNamed fetches each referenced table and stacks them vertically with
// padding. A placement other than none injects a provenance column holding
// the originating reference; inputs are padded to a shared width first so
// the column lines up even when the tables disagree on column count.
func MergeNamed(r Resolver, refs []string, placement NamesCol, pad string) (table.Table, error) {
	if len(refs) == 0 {
		return table.Table{}, table.ErrEmptyInput
	}
	tables := make([]table.Table, 0, len(refs))
	for _, ref := range refs {
		t, err := Fetch(r, ref)
		if err != nil {
			return table.Table{}, err
		}
		tables = append(tables, t.Normalize(pad))
	}
	if placement != NamesColFirst && placement != NamesColLast {
		return table.VConcat(tables, pad)
	}
	width := 0
	for _, t := range tables {
		if w := t.ColumnCount(); w > width {
			width = w
		}
	}
	for i := range tables {
		tables[i] = injectRef(tables[i], refs[i], placement, width, pad)
	}
	return table.VConcat(tables, pad)
}

func injectRef(t table.Table, ref string, placement NamesCol, width int, pad string) table.Table {
	out := table.Table{Rows: make([]table.Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		if row.Separator {
			continue
		}
		body := make([]string, width)
		copy(body, row.Cells)
		for c := len(row.Cells); c < width; c++ {
			body[c] = pad
		}
		var cells []string
		if placement == NamesColFirst {
			cells = append([]string{ref}, body...)
		} else {
			cells = append(body, ref)
		}
		out.Rows = append(out.Rows, table.Row{Cells: cells})
	}
	return out
}

// ErrUnknownOption reports a dynamic-block parameter key outside the
// recognized set.
var ErrUnknownOption = errors.New("unknown option")
