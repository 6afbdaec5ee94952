package celenv

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeBinding is a minimal in-memory cursor over a rectangular grid,
// 1-based like the real one.
type fakeBinding struct {
	grid       [][]string
	line, col  int
	vars       map[string]string
	counters   map[string]int
	above      bool
	below      bool
	flattened  []string
	flattenErr error
}

func newFakeBinding(grid [][]string, line, col int) *fakeBinding {
	return &fakeBinding{
		grid:     grid,
		line:     line,
		col:      col,
		vars:     make(map[string]string),
		counters: make(map[string]int),
	}
}

func (b *fakeBinding) Line() int  { return b.line }
func (b *fakeBinding) Col() int   { return b.col }
func (b *fakeBinding) Lines() int { return len(b.grid) }
func (b *fakeBinding) Cols() int {
	if len(b.grid) == 0 {
		return 0
	}
	return len(b.grid[0])
}

func (b *fakeBinding) Field(dl, dc int) string {
	l, c := b.line+dl, b.col+dc
	if l < 1 || l > b.Lines() || c < 1 || c > b.Cols() {
		return ""
	}
	return b.grid[l-1][c-1]
}

func (b *fakeBinding) SetField(dl, dc int, val string) {
	l, c := b.line+dl, b.col+dc
	if l < 1 || l > b.Lines() || c < 1 || c > b.Cols() {
		return
	}
	b.grid[l-1][c-1] = val
}

func (b *fakeBinding) HLineAbove() bool { return b.above }
func (b *fakeBinding) HLineBelow() bool { return b.below }

func (b *fakeBinding) GetVar(name string) string { return b.vars[name] }
func (b *fakeBinding) SetVar(name, val string)   { b.vars[name] = val }
func (b *fakeBinding) CheckVar(name, val string) bool {
	return b.vars[name] == val
}

func (b *fakeBinding) Counter(name string) int {
	b.counters[name]++
	return b.counters[name]
}

func (b *fakeBinding) Flatten(nrows int, reducer string) error {
	if b.flattenErr != nil {
		return b.flattenErr
	}
	b.flattened = append(b.flattened, fmt.Sprintf("%d %s", nrows, reducer))
	return nil
}

func mustCellEnv(t *testing.T, b CellBinding) *CellEnv {
	t.Helper()
	env, err := NewCellEnv(b)
	if err != nil {
		t.Fatalf("NewCellEnv failed: %v", err)
	}
	return env
}

func evalCell(t *testing.T, env *CellEnv, expr string) bool {
	t.Helper()
	prg, err := env.Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", expr, err)
	}
	got, err := prg.Eval()
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", expr, err)
	}
	return got
}

func TestCellVariables(t *testing.T) {
	b := newFakeBinding([][]string{{"a", "b"}, {"c", "d"}}, 2, 1)
	env := mustCellEnv(t, b)

	tests := []struct {
		expr string
		want bool
	}{
		{`line == 2`, true},
		{`col == 1`, true},
		{`nlines == 2`, true},
		{`ncols == 2`, true},
		{`field == "c"`, true},
		{`field == "a"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := evalCell(t, env, tt.expr); got != tt.want {
				t.Errorf("eval %q = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCellVariablesTrackTheBinding(t *testing.T) {
	b := newFakeBinding([][]string{{"a", "b"}, {"c", "d"}}, 1, 1)
	env := mustCellEnv(t, b)
	prg, err := env.Compile(`field`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// Same program, moved cursor: evaluation must read the live position.
	if got, _ := prg.Eval(); !got {
		t.Error("cell (1,1) holds text, want truthy")
	}
	b.line, b.col = 2, 2
	got, err := prg.Eval()
	if err != nil {
		t.Fatalf("Eval after move failed: %v", err)
	}
	if !got {
		t.Error("cell (2,2) holds text, want truthy")
	}
	if f := b.Field(0, 0); f != "d" {
		t.Errorf("binding reads %q after move, want %q", f, "d")
	}
}

func TestRelativeField(t *testing.T) {
	b := newFakeBinding([][]string{{"a", "b"}, {"c", "d"}}, 2, 1)
	env := mustCellEnv(t, b)

	if !evalCell(t, env, `field(-1, 1) == "b"`) {
		t.Error(`field(-1, 1) from (2,1) should read "b"`)
	}
	if !evalCell(t, env, `field(5, 5) == ""`) {
		t.Error("out-of-bounds relative read should be empty")
	}
}

func TestMatchField(t *testing.T) {
	b := newFakeBinding([][]string{{"alpha", "beta"}, {"carrot", "date"}}, 2, 1)
	env := mustCellEnv(t, b)

	if !evalCell(t, env, `matchfield("^car")`) {
		t.Error(`matchfield("^car") should match the current cell`)
	}
	if !evalCell(t, env, `matchfield("^alp", -1, 0)`) {
		t.Error("matchfield with offsets should match the relative cell")
	}
	if evalCell(t, env, `matchfield("^zzz")`) {
		t.Error("non-matching pattern should be false")
	}

	prg, err := env.Compile(`matchfield("[")`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, err := prg.Eval(); err == nil {
		t.Error("malformed pattern should be a hard evaluation error")
	}
}

func TestSetFieldMutates(t *testing.T) {
	b := newFakeBinding([][]string{{"a", "b"}, {"c", "d"}}, 2, 1)
	env := mustCellEnv(t, b)

	if !evalCell(t, env, `setfield("X")`) {
		t.Error("setfield should report true")
	}
	if b.grid[1][0] != "X" {
		t.Errorf("current cell = %q, want %q", b.grid[1][0], "X")
	}
	if !evalCell(t, env, `setfield(-1, 1, "Y")`) {
		t.Error("offset setfield should report true")
	}
	if b.grid[0][1] != "Y" {
		t.Errorf("relative cell = %q, want %q", b.grid[0][1], "Y")
	}
}

func TestVarsAndCounters(t *testing.T) {
	b := newFakeBinding([][]string{{"a"}}, 1, 1)
	env := mustCellEnv(t, b)

	if !evalCell(t, env, `setvar("k", "v")`) {
		t.Error("setvar should report true")
	}
	if !evalCell(t, env, `getvar("k") == "v"`) {
		t.Error("getvar should read back the stored value")
	}
	if !evalCell(t, env, `checkvar("k", "v")`) {
		t.Error("checkvar should confirm the stored value")
	}
	if evalCell(t, env, `checkvar("k", "w")`) {
		t.Error("checkvar should reject a different value")
	}
	if !evalCell(t, env, `counter("c") == 1`) {
		t.Error("first counter increment should yield 1")
	}
	if !evalCell(t, env, `counter("c") == 2`) {
		t.Error("second counter increment should yield 2")
	}
}

func TestHlineAdjacency(t *testing.T) {
	b := newFakeBinding([][]string{{"a"}}, 1, 1)
	b.above = true
	env := mustCellEnv(t, b)

	if !evalCell(t, env, `hline_above()`) {
		t.Error("hline_above should reflect the binding")
	}
	if evalCell(t, env, `hline_below()`) {
		t.Error("hline_below should reflect the binding")
	}
}

func TestFlattenDelegates(t *testing.T) {
	b := newFakeBinding([][]string{{"a"}}, 1, 1)
	env := mustCellEnv(t, b)

	if !evalCell(t, env, `flatten(3, "join")`) {
		t.Error("flatten should report true on success")
	}
	if len(b.flattened) != 1 || b.flattened[0] != "3 join" {
		t.Errorf("flatten calls = %v, want [\"3 join\"]", b.flattened)
	}

	b.flattenErr = errors.New("boom")
	prg, err := env.Compile(`flatten(1, "sum")`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, err := prg.Eval(); err == nil {
		t.Error("flatten failure should surface as an evaluation error")
	}
}

func TestRowBindingsRejectedInConditions(t *testing.T) {
	b := newFakeBinding([][]string{{"a"}}, 1, 1)
	env := mustCellEnv(t, b)

	_, err := env.Compile(`c1 == "x"`)
	if err == nil {
		t.Fatal("row bindings must not exist in the cell environment")
	}
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("want *CompileError, got %T", err)
	}
}

func TestDiscoverySeparatesRegistries(t *testing.T) {
	b := newFakeBinding([][]string{{"a"}}, 1, 1)
	cellEnv := mustCellEnv(t, b)
	rowEnv := mustRowEnv(t, 2)

	hasEntry := func(list []string, prefix string) bool {
		for _, s := range list {
			if strings.HasPrefix(s, prefix) {
				return true
			}
		}
		return false
	}

	cellFuncs := Functions(cellEnv.Env(), nil)
	if !hasEntry(cellFuncs, "matchfield()") || !hasEntry(cellFuncs, "setfield()") {
		t.Errorf("cell registry should list navigation functions, got %d entries", len(cellFuncs))
	}
	if hasEntry(cellFuncs, "between()") {
		t.Error("cell registry should not list filter helpers")
	}

	rowFuncs := Functions(rowEnv.Env(), nil)
	if !hasEntry(rowFuncs, "between()") || !hasEntry(rowFuncs, "num()") {
		t.Errorf("row registry should list value helpers, got %d entries", len(rowFuncs))
	}
	if hasEntry(rowFuncs, "setfield()") {
		t.Error("row registry should not list navigation functions")
	}
}

func TestDiscoveryHints(t *testing.T) {
	rowEnv := mustRowEnv(t, 1)
	hints := map[string]string{"between": `e.g. between(c1, "1", "10")`}
	for _, s := range Functions(rowEnv.Env(), hints) {
		if strings.HasPrefix(s, "between()") {
			if !strings.Contains(s, `e.g. between(c1, "1", "10")`) {
				t.Errorf("between suggestion should carry the hint, got %q", s)
			}
			return
		}
	}
	t.Error("between should be discovered")
}
