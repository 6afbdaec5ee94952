package jump

import (
	"errors"
	"testing"

	"github.com/oakwood-commons/tabx/pkg/table"
)

func newTestEngine(t *testing.T, tab *table.Table, st *State) *Engine {
	t.Helper()
	e, err := New(tab, st, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func grid(rows ...[]string) *table.Table {
	tab := table.FromCells(rows)
	return &tab
}

func TestNextFindsMatch(t *testing.T) {
	tab := grid(
		[]string{"alpha", "beta"},
		[]string{"gamma", "delta"},
	)
	e := newTestEngine(t, tab, nil)
	got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, `"^g"`, "right")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if want := (table.Coordinate{Line: 2, Col: 1}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}
}

func TestWraparound(t *testing.T) {
	tab := grid(
		[]string{"a", "b"},
		[]string{"c", "d"},
	)
	e := newTestEngine(t, tab, nil)

	got, err := e.Next(table.Coordinate{Line: 1, Col: 2}, 1, `".*"`, "right")
	if err != nil {
		t.Fatalf("right: %v", err)
	}
	if want := (table.Coordinate{Line: 2, Col: 1}); got != want {
		t.Errorf("right from (1,2) = %s, want %s", got, want)
	}

	got, err = e.Next(table.Coordinate{Line: 2, Col: 2}, 1, `".*"`, "down")
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 1}); got != want {
		t.Errorf("down from (2,2) = %s, want %s", got, want)
	}
}

func TestFullCycleRestoresStart(t *testing.T) {
	tab := grid(
		[]string{"a", "b", "c"},
		[]string{"d", "e", "f"},
	)
	e := newTestEngine(t, tab, nil)
	start := table.Coordinate{Line: 2, Col: 2}
	got, err := e.Next(start, 1, `counter("visits") >= 100`, "right")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
	if got != start {
		t.Errorf("cursor = %s, want start %s", got, start)
	}
	// Six cells, one evaluation each, so the next increment must be 7.
	if n := e.State().Counter("visits"); n != 7 {
		t.Errorf("condition ran %d times, want 6", n-1)
	}
}

func TestNegativeStepsInvertDirection(t *testing.T) {
	tab := grid(
		[]string{"a", "b"},
		[]string{"c", "d"},
	)
	e := newTestEngine(t, tab, nil)
	got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, -1, `".*"`, "right")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if want := (table.Coordinate{Line: 2, Col: 2}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}
}

func TestPrevMirrorsNegativeNext(t *testing.T) {
	tab := grid(
		[]string{"a", "b"},
		[]string{"c", "d"},
	)
	e := newTestEngine(t, tab, nil)
	got, err := e.Prev(table.Coordinate{Line: 1, Col: 1}, 1, `".*"`, "right")
	if err != nil {
		t.Fatalf("Prev failed: %v", err)
	}
	if want := (table.Coordinate{Line: 2, Col: 2}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}
}

func TestMultipleSteps(t *testing.T) {
	tab := grid(
		[]string{"x", "a1", "x", "a2"},
	)
	e := newTestEngine(t, tab, nil)
	got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 2, `"^a"`, "right")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 4}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}
}

func TestDirectCoordinateJump(t *testing.T) {
	tab := grid(
		[]string{"a", "b", "c"},
		[]string{"d", "e", "f"},
		[]string{"g", "h", "i"},
	)
	e := newTestEngine(t, tab, nil)

	got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "cell(2, 3)", "right")
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if want := (table.Coordinate{Line: 2, Col: 3}); got != want {
		t.Errorf("cell(2,3) = %s, want %s", got, want)
	}

	// line(0) is the last line; the column keeps the start's.
	got, err = e.Next(table.Coordinate{Line: 1, Col: 2}, 1, "line(0)", "down")
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if want := (table.Coordinate{Line: 3, Col: 2}); got != want {
		t.Errorf("line(0) = %s, want %s", got, want)
	}
}

func TestPersistedConditionAndDirection(t *testing.T) {
	tab := grid(
		[]string{"a1", "x", "a2", "x", "a3"},
	)
	st := NewState()
	e := newTestEngine(t, tab, st)
	cur := table.Coordinate{Line: 1, Col: 1}

	cur, err := e.Next(cur, 1, `"^a"`, "right")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 3}); cur != want {
		t.Fatalf("first = %s, want %s", cur, want)
	}

	cur, err = e.Next(cur, 1, "", "")
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 5}); cur != want {
		t.Errorf("repeat = %s, want %s", cur, want)
	}
	if st.Condition() != `"^a"` || st.Direction() != Right {
		t.Errorf("persisted = %q %q, want condition and direction remembered",
			st.Condition(), st.Direction())
	}
}

func TestSequenceCyclesPerInvocation(t *testing.T) {
	tab := grid(
		[]string{"x", "a"},
		[]string{"b", "x"},
	)
	e := newTestEngine(t, tab, nil)
	cur := table.Coordinate{Line: 1, Col: 1}
	var err error
	wants := []table.Coordinate{
		{Line: 1, Col: 2}, // first invocation picks "a"
		{Line: 2, Col: 1}, // second picks "b"
		{Line: 1, Col: 2}, // third cycles back to "a"
	}
	for i, want := range wants {
		cur, err = e.Next(cur, 1, `seq("a", "b")`, "right")
		if err != nil {
			t.Fatalf("invocation %d: %v", i+1, err)
		}
		if cur != want {
			t.Fatalf("invocation %d: cursor = %s, want %s", i+1, cur, want)
		}
	}
}

func TestSideEffectsSurviveFailedJump(t *testing.T) {
	tab := grid(
		[]string{"a", "b"},
		[]string{"c", "d"},
	)
	e := newTestEngine(t, tab, nil)
	start := table.Coordinate{Line: 1, Col: 1}
	_, err := e.Next(start, 1, `and(setfield("seen"), "nomatch")`, "right")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
	for line := 1; line <= 2; line++ {
		for col := 1; col <= 2; col++ {
			if v, _ := tab.Cell(line, col); v != "seen" {
				t.Errorf("cell (%d,%d) = %q, want %q", line, col, v, "seen")
			}
		}
	}
}

func TestRelativeMatch(t *testing.T) {
	tab := grid(
		[]string{"TOTAL", "100"},
		[]string{"item", "5"},
	)
	e := newTestEngine(t, tab, nil)
	got, err := e.Next(table.Coordinate{Line: 2, Col: 2}, 1, `match("^TOTAL$", 0, -1)`, "right")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 2}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}
}

func TestPresets(t *testing.T) {
	t.Run("dup", func(t *testing.T) {
		tab := grid([]string{"x"}, []string{"x"}, []string{"y"})
		e := newTestEngine(t, tab, nil)
		got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "dup", "down")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if want := (table.Coordinate{Line: 2, Col: 1}); got != want {
			t.Errorf("cursor = %s, want %s", got, want)
		}
	})
	t.Run("number", func(t *testing.T) {
		tab := grid([]string{"abc", "3.14"})
		e := newTestEngine(t, tab, nil)
		got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "number", "right")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if want := (table.Coordinate{Line: 1, Col: 2}); got != want {
			t.Errorf("cursor = %s, want %s", got, want)
		}
	})
	t.Run("empty", func(t *testing.T) {
		tab := grid([]string{"a", "", "b"})
		e := newTestEngine(t, tab, nil)
		got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "empty", "right")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if want := (table.Coordinate{Line: 1, Col: 2}); got != want {
			t.Errorf("cursor = %s, want %s", got, want)
		}
	})
	t.Run("lastrow", func(t *testing.T) {
		tab := grid([]string{"a"}, []string{"b"}, []string{"c"})
		e := newTestEngine(t, tab, nil)
		got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "lastrow", "down")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if want := (table.Coordinate{Line: 3, Col: 1}); got != want {
			t.Errorf("cursor = %s, want %s", got, want)
		}
	})
	t.Run("hline", func(t *testing.T) {
		tab := table.New(
			table.NewRow("a"),
			table.NewSeparator(),
			table.NewRow("b"),
		)
		e := newTestEngine(t, &tab, nil)
		got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "hline", "down")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if want := (table.Coordinate{Line: 2, Col: 1}); got != want {
			t.Errorf("cursor = %s, want %s", got, want)
		}
	})
}

func TestUserPresetAndRecursionGuard(t *testing.T) {
	tab := grid([]string{"x", "marked!"})
	e := newTestEngine(t, tab, nil)
	e.Presets().Register(Preset{Name: "marked", Condition: `"!$"`})
	got, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "marked", "right")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 2}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}

	e.Presets().Register(Preset{Name: "loop", Condition: "loop"})
	if _, err := e.Compile("loop"); err == nil {
		t.Error("self-referential preset should fail to compile")
	}
}

func TestHardErrors(t *testing.T) {
	tab := grid([]string{"a", "b"})
	e := newTestEngine(t, tab, nil)
	cur := table.Coordinate{Line: 1, Col: 1}

	var pre *PreconditionError
	if _, err := e.Next(cur, 1, `".*"`, "sideways"); !errors.As(err, &pre) {
		t.Errorf("bad direction: want PreconditionError, got %v", err)
	}
	if _, err := e.Next(table.Coordinate{Line: 9, Col: 9}, 1, `".*"`, "right"); !errors.As(err, &pre) {
		t.Errorf("cursor outside: want PreconditionError, got %v", err)
	}
	if _, err := e.Next(cur, 1, "", ""); !errors.As(err, &pre) {
		t.Errorf("no condition: want PreconditionError, got %v", err)
	}
	if _, err := e.Next(cur, 1, "bogus", "right"); err == nil {
		t.Error("unknown identifier should be a hard error")
	}
	if e.State().Condition() != "" {
		t.Errorf("failed compile persisted condition %q", e.State().Condition())
	}
}

func TestFlattenBinding(t *testing.T) {
	tab := grid(
		[]string{"foo"},
		[]string{"bar"},
		[]string{"baz"},
	)
	e := newTestEngine(t, tab, nil)
	got, err := e.Next(table.Coordinate{Line: 3, Col: 1}, 1, `and(cell(1, 1), flatten(2, "join"))`, "down")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 1}); got != want {
		t.Errorf("cursor = %s, want %s", got, want)
	}
	if v, _ := tab.Cell(1, 1); v != "foo bar" {
		t.Errorf("flattened cell = %q, want %q", v, "foo bar")
	}
	if v, _ := tab.Cell(2, 1); v != "" {
		t.Errorf("consumed cell = %q, want blank", v)
	}
}

func TestVarsPersistAcrossInvocations(t *testing.T) {
	tab := grid([]string{"a", "b"})
	st := NewState()
	e := newTestEngine(t, tab, st)
	cur := table.Coordinate{Line: 1, Col: 1}

	cur, err := e.Next(cur, 1, `setvar("mark", field)`, "right")
	if err != nil {
		t.Fatalf("setvar: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 2}); cur != want {
		t.Fatalf("setvar cursor = %s, want %s", cur, want)
	}
	if st.Var("mark") != "b" {
		t.Errorf("mark = %q, want %q", st.Var("mark"), "b")
	}

	cur, err = e.Next(cur, 1, `checkvar("mark", "b")`, "right")
	if err != nil {
		t.Fatalf("checkvar: %v", err)
	}
	if want := (table.Coordinate{Line: 1, Col: 1}); cur != want {
		t.Errorf("checkvar cursor = %s, want %s", cur, want)
	}
}

func TestResetClearsSession(t *testing.T) {
	st := NewState()
	st.SetVar("k", "v")
	st.Counter("c")
	tab := grid([]string{"a"})
	e := newTestEngine(t, tab, st)
	if _, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, `".*"`, "right"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	st.Reset()
	if st.Var("k") != "" || st.Condition() != "" || st.Direction() != "" {
		t.Error("Reset should clear vars, condition, and direction")
	}
	if st.Counter("c") != 1 {
		t.Error("Reset should clear counters")
	}
	var pre *PreconditionError
	if _, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, "", ""); !errors.As(err, &pre) {
		t.Error("jump after Reset needs a fresh condition")
	}
}

func TestZeroStepsIsNoOp(t *testing.T) {
	tab := grid([]string{"a", "b"})
	e := newTestEngine(t, tab, nil)
	cur := table.Coordinate{Line: 1, Col: 1}
	got, err := e.Next(cur, 0, `".*"`, "right")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != cur {
		t.Errorf("cursor = %s, want unchanged %s", got, cur)
	}
	if e.State().Condition() != `".*"` {
		t.Error("zero steps should still persist the condition")
	}
}

func TestReentrancyGuard(t *testing.T) {
	tab := grid([]string{"a"})
	st := NewState()
	e := newTestEngine(t, tab, st)
	st.busy = true
	var pre *PreconditionError
	if _, err := e.Next(table.Coordinate{Line: 1, Col: 1}, 1, `".*"`, "right"); !errors.As(err, &pre) {
		t.Errorf("want PreconditionError, got %v", err)
	}
}
