package celenv

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/cel-go/cel"
)

// RowEnv is the filtering environment. For each column N in [1, cols] it
// declares c<N> (the cell text, or null when the trimmed cell is empty) and
// c<N>n (the soft numeric parse, NaN on failure), plus n (rows considered so
// far) and row (the full cell list). Navigation functions do not exist here;
// a filter that names one fails at compile time.
type RowEnv struct {
	env  *cel.Env
	cols int
}

// NewRowEnv builds a row environment for tables of the given column count.
func NewRowEnv(cols int) (*RowEnv, error) {
	if cols < 0 {
		cols = 0
	}
	opts := extensionLibs()
	opts = append(opts,
		cel.Variable("n", cel.IntType),
		cel.Variable("row", cel.ListType(cel.StringType)),
	)
	for i := 1; i <= cols; i++ {
		opts = append(opts,
			cel.Variable(fmt.Sprintf("c%d", i), cel.DynType),
			cel.Variable(fmt.Sprintf("c%dn", i), cel.DoubleType),
		)
	}
	opts = append(opts, valueFuncs()...)
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("building row environment: %w", err)
	}
	return &RowEnv{env: env, cols: cols}, nil
}

// Env exposes the underlying environment for function discovery.
func (e *RowEnv) Env() *cel.Env { return e.env }

// Columns returns the column count the environment was built for.
func (e *RowEnv) Columns() int { return e.cols }

// Compile parses and type-checks a filter expression once; the returned
// program is evaluated per row.
func (e *RowEnv) Compile(src string) (*RowProgram, error) {
	ast, issues := e.env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{Expr: src, Err: issues.Err()}
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, &CompileError{Expr: src, Err: err}
	}
	return &RowProgram{prg: prg, src: src, owner: e}, nil
}

// RowActivation binds one row's cells for evaluation. Cells beyond the row's
// length (ragged input) bind as absent. n is the 1-based consideration
// counter, incremented by the caller before each evaluation.
func (e *RowEnv) RowActivation(cells []string, n int) map[string]interface{} {
	act := make(map[string]interface{}, 2*e.cols+2)
	act["n"] = int64(n)
	act["row"] = cells
	for i := 1; i <= e.cols; i++ {
		var raw string
		if i <= len(cells) {
			raw = cells[i-1]
		}
		name := fmt.Sprintf("c%d", i)
		if strings.TrimSpace(raw) == "" {
			act[name] = nil
		} else {
			act[name] = raw
		}
		if f, ok := parseNumber(raw); ok {
			act[name+"n"] = f
		} else {
			act[name+"n"] = math.NaN()
		}
	}
	return act
}

// RowProgram is a compiled filter expression bound to its environment.
type RowProgram struct {
	prg   cel.Program
	src   string
	owner *RowEnv
}

// Source returns the expression text the program was compiled from.
func (p *RowProgram) Source() string { return p.src }

// Eval evaluates the program against one row and reports whether the result
// is truthy. n is the consideration counter visible to the expression.
func (p *RowProgram) Eval(cells []string, n int) (bool, error) {
	out, _, err := p.prg.Eval(p.owner.RowActivation(cells, n))
	if err != nil {
		return false, &EvalError{Expr: p.src, Row: n, Err: err}
	}
	return Truthy(out), nil
}
