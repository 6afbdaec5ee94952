package flatten

import (
	"reflect"
	"testing"

	"github.com/oakwood-commons/tabx/pkg/table"
)

func mustReducer(t *testing.T, src string) Reducer {
	t.Helper()
	red, err := NewRegistry().Resolve(src)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", src, err)
	}
	return red
}

func grid(tb *table.Table) [][]string {
	rows := tb.DataRows()
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func TestColumnsCollapsesFullyBlankRows(t *testing.T) {
	tb := table.FromCells([][]string{
		{"foo", "bar"},
		{"", "choo"},
		{"", "zoo"},
		{"aaa", "bbb"},
	})
	err := Columns(&tb, table.Coordinate{Line: 1, Col: 1}, 3, 0, mustReducer(t, "join"), 1)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	want := [][]string{
		{"foo", "bar choo zoo"},
		{"aaa", "bbb"},
	}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestColumnsRetainsPartiallyBlankRows(t *testing.T) {
	tb := table.FromCells([][]string{
		{"a", "x"},
		{"b", "keep"},
		{"c", "y"},
	})
	err := Columns(&tb, table.Coordinate{Line: 1, Col: 1}, 3, 1, mustReducer(t, "join"), 1)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	// Rows 2 and 3 keep their second-column content, so neither collapses.
	want := [][]string{
		{"a b c", "x"},
		{"", "keep"},
		{"", "y"},
	}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestColumnLeavesRowsInPlace(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}, {"b"}, {"c"}})
	consumed, err := Column(&tb, table.Coordinate{Line: 1, Col: 1}, 3, mustReducer(t, "join"))
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if consumed != 3 {
		t.Errorf("consumed = %d, want 3", consumed)
	}
	want := [][]string{{"a b c"}, {""}, {""}}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUpwardFlattenCollectsDocumentOrder(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}, {"b"}, {"c"}})
	consumed, err := Column(&tb, table.Coordinate{Line: 3, Col: 1}, -3, mustReducer(t, "join"))
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if consumed != 3 {
		t.Errorf("consumed = %d, want 3", consumed)
	}
	if cell, _ := tb.Cell(3, 1); cell != "a b c" {
		t.Errorf("start cell = %q, want %q", cell, "a b c")
	}

	tb2 := table.FromCells([][]string{{"a"}, {"b"}, {"c"}})
	if err := Columns(&tb2, table.Coordinate{Line: 3, Col: 1}, -3, 1, mustReducer(t, "join"), 1); err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	want := [][]string{{"a b c"}}
	if got := grid(&tb2); !reflect.DeepEqual(got, want) {
		t.Errorf("upward collapse: got %v, want %v", got, want)
	}
}

func TestSpanInferenceStopsAtSeparators(t *testing.T) {
	tb := table.New(
		table.NewRow("a"),
		table.NewSeparator(),
		table.NewRow("b"),
		table.NewRow("c"),
		table.NewSeparator(),
		table.NewRow("d"),
	)
	consumed, err := Column(&tb, table.Coordinate{Line: 2, Col: 1}, 0, mustReducer(t, "join"))
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if consumed != 2 {
		t.Errorf("consumed = %d, want 2 (group is lines 2-3)", consumed)
	}
	if cell, _ := tb.Cell(2, 1); cell != "b c" {
		t.Errorf("start cell = %q, want %q", cell, "b c")
	}
	if cell, _ := tb.Cell(1, 1); cell != "a" {
		t.Errorf("cell above the group = %q, want untouched %q", cell, "a")
	}
	if cell, _ := tb.Cell(4, 1); cell != "d" {
		t.Errorf("cell below the group = %q, want untouched %q", cell, "d")
	}
}

func TestSpanStopsAtTableEdge(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}, {"b"}, {"c"}, {"d"}})
	consumed, err := Column(&tb, table.Coordinate{Line: 3, Col: 1}, 5, mustReducer(t, "join"))
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if consumed != 2 {
		t.Errorf("consumed = %d, want 2 (lines 3-4)", consumed)
	}
	if cell, _ := tb.Cell(3, 1); cell != "c d" {
		t.Errorf("start cell = %q, want %q", cell, "c d")
	}
}

func TestRepetitionsAdvancePastTheResultRow(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}, {"b"}, {"c"}, {"d"}})
	err := Columns(&tb, table.Coordinate{Line: 1, Col: 1}, 2, 1, mustReducer(t, "join"), 2)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	want := [][]string{{"a b"}, {"c d"}}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLeftwardColumnSpan(t *testing.T) {
	tb := table.FromCells([][]string{
		{"a", "b", "c"},
		{"d", "e", "f"},
	})
	err := Columns(&tb, table.Coordinate{Line: 1, Col: 3}, 2, -2, mustReducer(t, "join"), 1)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	// Columns 2 and 3 flatten; column 1 keeps row 2 alive.
	want := [][]string{
		{"a", "b e", "c f"},
		{"d", "", ""},
	}
	if got := grid(&tb); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFailedReducerLeavesTableUntouched(t *testing.T) {
	tb := table.FromCells([][]string{{"a", "b"}, {"c", "d"}})
	before := grid(&tb)

	red := mustReducer(t, "cells[9]") // compiles, fails at evaluation
	err := Columns(&tb, table.Coordinate{Line: 1, Col: 1}, 2, 0, red, 1)
	if err == nil {
		t.Fatal("Columns with a failing reducer should error")
	}
	if got := grid(&tb); !reflect.DeepEqual(got, before) {
		t.Errorf("table mutated despite failure: got %v, want %v", got, before)
	}
}

func TestColumnRejectsBadCoordinate(t *testing.T) {
	tb := table.FromCells([][]string{{"a"}})
	if _, err := Column(&tb, table.Coordinate{Line: 5, Col: 1}, 1, mustReducer(t, "join")); err == nil {
		t.Error("out-of-range line should error")
	}
	if _, err := Column(&tb, table.Coordinate{Line: 1, Col: 9}, 1, mustReducer(t, "join")); err == nil {
		t.Error("out-of-range column should error")
	}
}
