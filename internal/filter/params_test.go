package filter

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseParams(t *testing.T) {
	p, err := ParseParams(`:tblnames a b :rows 2-3 :cols 2,1 :filter "c1n > 4" :noerrors :namescol first`)
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if !reflect.DeepEqual(p.TblNames, []string{"a", "b"}) {
		t.Errorf("TblNames = %v", p.TblNames)
	}
	if got := p.Rows.Resolve(5); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("Rows resolved to %v", got)
	}
	if got := p.Cols.Resolve(2); !reflect.DeepEqual(got, []int{2, 1}) {
		t.Errorf("Cols resolved to %v", got)
	}
	if p.Filter != "c1n > 4" {
		t.Errorf("Filter = %q", p.Filter)
	}
	if !p.NoErrors {
		t.Error("NoErrors not set")
	}
	if p.NamesCol != NamesColFirst {
		t.Errorf("NamesCol = %q", p.NamesCol)
	}
	for _, key := range []string{"tblnames", "rows", "cols", "filter", "noerrors", "namescol"} {
		if !p.Has(key) {
			t.Errorf("Has(%q) = false", key)
		}
	}
	if p.Has("limit") {
		t.Error("Has reported an option the text never named")
	}
}

func TestParseParamsFilterForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`:filter "c1 == \"beta\""`, `c1 == "beta"`},
		{`:filter c1n > 4.0`, "c1n > 4.0"},
		{`:filter "a b" c`, "a b c"},
	}
	for _, tc := range cases {
		p, err := ParseParams(tc.in)
		if err != nil {
			t.Errorf("ParseParams(%q): %v", tc.in, err)
			continue
		}
		if p.Filter != tc.want {
			t.Errorf("ParseParams(%q).Filter = %q, want %q", tc.in, p.Filter, tc.want)
		}
	}
}

func TestParseParamsNoErrorsValues(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{":noerrors", true},
		{":noerrors t", true},
		{":noerrors yes", true},
		{":noerrors nil", false},
		{":noerrors false", false},
	}
	for _, tc := range cases {
		p, err := ParseParams(tc.in)
		if err != nil {
			t.Errorf("ParseParams(%q): %v", tc.in, err)
			continue
		}
		if p.NoErrors != tc.want {
			t.Errorf("ParseParams(%q).NoErrors = %v, want %v", tc.in, p.NoErrors, tc.want)
		}
		if !p.Has("noerrors") {
			t.Errorf("ParseParams(%q) did not record the key", tc.in)
		}
	}
}

func TestParseParamsQuotedName(t *testing.T) {
	p, err := ParseParams(`:tblnames "monthly report" totals`)
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	want := []string{"monthly report", "totals"}
	if !reflect.DeepEqual(p.TblNames, want) {
		t.Fatalf("TblNames = %v, want %v", p.TblNames, want)
	}
}

func TestParseParamsEmpty(t *testing.T) {
	p, err := ParseParams("")
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if len(p.TblNames) != 0 || p.Filter != "" || p.NoErrors {
		t.Fatalf("empty input produced %+v", p)
	}
	if p.NamesCol != NamesColNone {
		t.Fatalf("NamesCol = %q, want none", p.NamesCol)
	}
}

func TestParseParamsErrors(t *testing.T) {
	cases := []string{
		"loose value",
		":rows",
		":rows 1 2",
		":rows x-y",
		":tblnames",
		":filter",
		":noerrors maybe",
		":noerrors t t",
		":namescol middle",
		`:filter "unterminated`,
	}
	for _, in := range cases {
		if _, err := ParseParams(in); err == nil {
			t.Errorf("ParseParams(%q) accepted", in)
		}
	}

	_, err := ParseParams(":frobnicate 1")
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("unknown key error = %v, want ErrUnknownOption", err)
	}
}

func TestParamsMerge(t *testing.T) {
	base, err := ParseParams(`:tblnames shared :filter "n <= 2" :noerrors`)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	block, err := ParseParams(`:rows 1-2 :filter "n == 1"`)
	if err != nil {
		t.Fatalf("block: %v", err)
	}

	merged := block.Merge(base)
	if merged.Filter != "n == 1" {
		t.Errorf("Filter = %q, block value should win", merged.Filter)
	}
	if !reflect.DeepEqual(merged.TblNames, []string{"shared"}) {
		t.Errorf("TblNames = %v, should inherit", merged.TblNames)
	}
	if !merged.NoErrors {
		t.Error("NoErrors should inherit")
	}
	if got := merged.Rows.Resolve(5); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Rows resolved to %v", got)
	}
	for _, key := range []string{"tblnames", "filter", "noerrors", "rows"} {
		if !merged.Has(key) {
			t.Errorf("merged.Has(%q) = false", key)
		}
	}

	// Merging must not leak keys back into the inputs.
	if base.Has("rows") || block.Has("tblnames") {
		t.Error("Merge mutated an input record")
	}
}

func TestRun(t *testing.T) {
	r := fakeResolver{
		"alpha": "| a | b |\n| c | d |\n",
		"beta":  "| x |\n| y |\n",
	}
	p, err := ParseParams(`:tblnames alpha beta :namescol first :filter "c1 == \"beta\"" :cols 2`)
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	out, err := Run(r, p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := [][]string{{"x"}, {"y"}}
	if got := cellsOf(out); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}

	if _, err := Run(r, Params{}); err == nil {
		t.Fatal("Run without tblnames did not error")
	}
}
