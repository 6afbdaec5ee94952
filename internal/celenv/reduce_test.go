package celenv

import "testing"

func TestReducePrograms(t *testing.T) {
	env, err := NewReduceEnv()
	if err != nil {
		t.Fatalf("NewReduceEnv failed: %v", err)
	}

	tests := []struct {
		expr  string
		cells []string
		want  string
	}{
		{`cells.join(", ")`, []string{"a", "b"}, "a, b"},
		{`size(cells)`, []string{"a", "b", "c"}, "3"},
		{`cells.filter(c, !blank(c)).join(" ")`, []string{"a", "", "b"}, "a b"},
		{`cells[0]`, []string{"first", "second"}, "first"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prg, err := env.Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.expr, err)
			}
			got, err := prg.Eval(tt.cells)
			if err != nil {
				t.Fatalf("Eval(%q) failed: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestReduceCompileError(t *testing.T) {
	env, err := NewReduceEnv()
	if err != nil {
		t.Fatalf("NewReduceEnv failed: %v", err)
	}
	if _, err := env.Compile(`cells.`); err == nil {
		t.Error("malformed reducer expression should fail to compile")
	}
	if _, err := env.Compile(`setfield("x")`); err == nil {
		t.Error("navigation functions must not exist in the reducer registry")
	}
}
