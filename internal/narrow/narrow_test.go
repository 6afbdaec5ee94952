package narrow

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tabx/pkg/table"
)

func TestWrapGreedy(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"aaa bbb ccc", 7, []string{"aaa bbb", "ccc"}},
		{"short", 10, []string{"short"}},
		{"", 5, []string{""}},
		{"   ", 5, []string{""}},
		// A word wider than the budget overflows alone on its line.
		{"extraordinarily big", 5, []string{"extraordinarily", "big"}},
		{"a b c", 1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Wrap(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %v, want %v", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapNeverBreaksWords(t *testing.T) {
	text := "alpha beta gamma delta epsilon"
	for width := 1; width <= 12; width++ {
		lines := Wrap(text, width)
		// Re-joining the lines must give back the original text: no word
		// was split and none was dropped.
		rejoined := ""
		for i, line := range lines {
			if i > 0 {
				rejoined += " "
			}
			rejoined += line
		}
		if rejoined != text {
			t.Errorf("width %d: lines %v lose content", width, lines)
		}
	}
}

func grid(tb *table.Table) [][]string {
	rows := tb.DataRows()
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func TestColumnExpandsOverwideCells(t *testing.T) {
	tb := table.FromCells([][]string{
		{"head", "x"},
		{"aaa bbb ccc", "y"},
	})
	if err := Column(&tb, 1, 7, false); err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	want := [][]string{
		{"head", "x"},
		{"aaa bbb", "y"},
		{"ccc", ""},
	}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestColumnSeparatorsAfterExpandedGroups(t *testing.T) {
	tb := table.FromCells([][]string{
		{"aaa bbb", "1"},
		{"ccc ddd", "2"},
	})
	if err := Column(&tb, 1, 3, true); err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	wantSep := []bool{false, false, true, false, false}
	if len(tb.Rows) != len(wantSep) {
		t.Fatalf("row count = %d, want %d", len(tb.Rows), len(wantSep))
	}
	for i, w := range wantSep {
		if tb.Rows[i].Separator != w {
			t.Errorf("row %d separator = %v, want %v", i, tb.Rows[i].Separator, w)
		}
	}
}

func TestColumnRejectsBadArgs(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}})
	if err := Column(&tb, 2, 5, false); err == nil {
		t.Error("out-of-range column should error")
	}
	if err := Column(&tb, 1, 0, false); err == nil {
		t.Error("non-positive width should error")
	}
}

// fakeSolver returns a canned plan and captures the request it saw.
type fakeSolver struct {
	req  Request
	plan Plan
	err  error
}

func (f *fakeSolver) Solve(_ context.Context, req Request) (Plan, error) {
	f.req = req
	if f.err != nil {
		return Plan{}, f.err
	}
	return f.plan, nil
}

func TestTableAppliesPlan(t *testing.T) {
	tb := table.FromCells([][]string{
		{"aaaa bbbb cccc dddd", "x"},
		{"ee", "yy"},
	})
	solver := &fakeSolver{plan: Plan{Widths: []int{10, 2}, Rows: []int{2, 1}}}

	err := Table(context.Background(), &tb, solver, Options{MaxWidth: 12})
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	want := [][]string{
		{"aaaa bbbb", "x"},
		{"cccc dddd", ""},
		{"ee", "yy"},
	}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if solver.req.Rows != 2 || solver.req.Cols != 2 || solver.req.MaxWidth != 12 {
		t.Errorf("request = %+v, want 2 rows, 2 cols, budget 12", solver.req)
	}
	wantLengths := [][]int{{19, 1}, {2, 2}}
	if !reflect.DeepEqual(solver.req.Lengths, wantLengths) {
		t.Errorf("lengths = %v, want %v", solver.req.Lengths, wantLengths)
	}
}

func TestPlanPackingInvariant(t *testing.T) {
	original := [][]string{
		{"aaaa bbbb cccc dddd", "x"},
		{"ee", "yy"},
	}
	plan := Plan{Widths: []int{10, 2}, Rows: []int{2, 1}}

	total := 0
	for _, w := range plan.Widths {
		total += w
	}
	if total > 12 {
		t.Fatalf("plan widths sum %d exceeds budget 12", total)
	}
	for r, row := range original {
		for c, cell := range row {
			if l := runewidth.StringWidth(cell); l > plan.Widths[c]*plan.Rows[r] {
				t.Errorf("cell (%d,%d): length %d > width %d x rows %d",
					r+1, c+1, l, plan.Widths[c], plan.Rows[r])
			}
		}
	}
}

func TestTableFixedColumnsReduceBudget(t *testing.T) {
	tb := table.FromCells([][]string{
		{"abcd", "some long content here"},
	})
	solver := &fakeSolver{plan: Plan{Widths: []int{6}, Rows: []int{4}}}

	err := Table(context.Background(), &tb, solver, Options{
		MaxWidth: 10,
		Fixed:    map[int]bool{1: true},
	})
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if solver.req.Cols != 1 {
		t.Errorf("request cols = %d, want 1 (only the narrowable column)", solver.req.Cols)
	}
	if solver.req.MaxWidth != 6 {
		t.Errorf("request budget = %d, want 10 minus the fixed column's width 4", solver.req.MaxWidth)
	}
}

func TestTableInfeasiblePlanLeavesTableUntouched(t *testing.T) {
	tb := table.FromCells([][]string{{"aaaa", "bbbb"}})
	before := grid(&tb)
	solver := &fakeSolver{plan: Plan{Widths: []int{0, 5}, Rows: []int{1}}}

	err := Table(context.Background(), &tb, solver, Options{MaxWidth: 5})
	var ife *InfeasibleError
	if !errors.As(err, &ife) {
		t.Fatalf("want *InfeasibleError, got %v", err)
	}
	if got := grid(&tb); !reflect.DeepEqual(got, before) {
		t.Errorf("table mutated despite infeasibility: %v", got)
	}
}

func TestTableRejectsMalformedPlan(t *testing.T) {
	tb := table.FromCells([][]string{{"aaaa", "bbbb"}})
	before := grid(&tb)

	tests := []struct {
		name string
		plan Plan
	}{
		{"shape mismatch", Plan{Widths: []int{5}, Rows: []int{1}}},
		{"budget overrun", Plan{Widths: []int{9, 9}, Rows: []int{1}}},
		{"zero row allocation", Plan{Widths: []int{4, 4}, Rows: []int{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := &fakeSolver{plan: tt.plan}
			err := Table(context.Background(), &tb, solver, Options{MaxWidth: 8})
			var serr *SolverError
			if !errors.As(err, &serr) {
				t.Fatalf("want *SolverError, got %v", err)
			}
			if got := grid(&tb); !reflect.DeepEqual(got, before) {
				t.Errorf("table mutated despite malformed plan: %v", got)
			}
		})
	}
}

func TestTableWithoutSolver(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}})
	if err := Table(context.Background(), &tb, nil, Options{MaxWidth: 5}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("want ErrUnavailable, got %v", err)
	}
}

func TestTableWidensOnOverflow(t *testing.T) {
	// The assigned width cannot hold the cell in the allocated rows; the
	// apply step widens locally instead of overflowing the group.
	tb := table.FromCells([][]string{{"aaaa bbbb cccc"}})
	solver := &fakeSolver{plan: Plan{Widths: []int{4}, Rows: []int{2}}}

	err := Table(context.Background(), &tb, solver, Options{MaxWidth: 4})
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if got := tb.DataRowCount(); got != 2 {
		t.Errorf("group has %d rows, want the allocated 2", got)
	}
}

func TestTableKeepsExistingSeparators(t *testing.T) {
	tb := table.New(
		table.NewRow("aaaa bbbb"),
		table.NewSeparator(),
		table.NewRow("cc"),
	)
	solver := &fakeSolver{plan: Plan{Widths: []int{4}, Rows: []int{2, 1}}}

	if err := Table(context.Background(), &tb, solver, Options{MaxWidth: 4}); err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	wantSep := []bool{false, false, true, false}
	if len(tb.Rows) != len(wantSep) {
		t.Fatalf("row count = %d, want %d", len(tb.Rows), len(wantSep))
	}
	for i, w := range wantSep {
		if tb.Rows[i].Separator != w {
			t.Errorf("row %d separator = %v, want %v", i, tb.Rows[i].Separator, w)
		}
	}
}
