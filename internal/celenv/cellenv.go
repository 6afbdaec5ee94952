package celenv

import (
	"fmt"
	"regexp"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CellBinding is the live cursor the cell environment evaluates against.
// The navigation engine implements it; offsets are (lines down, columns
// right) relative to the current coordinate, and out-of-bounds reads return
// the empty string. Mutators take effect immediately — a condition that
// calls one is not safe to re-evaluate speculatively, so the engine
// evaluates each candidate cell exactly once.
type CellBinding interface {
	Line() int
	Col() int
	Lines() int
	Cols() int
	Field(dl, dc int) string
	SetField(dl, dc int, val string)
	HLineAbove() bool
	HLineBelow() bool
	GetVar(name string) string
	SetVar(name, val string)
	CheckVar(name, val string) bool
	Counter(name string) int
	Flatten(nrows int, reducer string) error
}

// CellEnv is the navigation environment: variables line, col, nlines, ncols
// and field (the current cell), plus the jump-context registry. Row
// bindings (c<N>) do not exist here; a condition that names one fails at
// compile time.
type CellEnv struct {
	env  *cel.Env
	bind CellBinding
	rex  map[string]*regexp.Regexp
}

// NewCellEnv builds a cell environment around a live binding. Programs
// compiled from it read the binding's position at evaluation time, so one
// environment serves a whole traversal.
func NewCellEnv(b CellBinding) (*CellEnv, error) {
	e := &CellEnv{bind: b, rex: make(map[string]*regexp.Regexp)}
	opts := extensionLibs()
	opts = append(opts,
		cel.Variable("line", cel.IntType),
		cel.Variable("col", cel.IntType),
		cel.Variable("nlines", cel.IntType),
		cel.Variable("ncols", cel.IntType),
		cel.Variable("field", cel.StringType),
		cel.Function("field",
			cel.Overload("field_int_int",
				[]*cel.Type{cel.IntType, cel.IntType}, cel.StringType,
				cel.FunctionBinding(e.fieldAt))),
		cel.Function("matchfield",
			cel.Overload("matchfield_string",
				[]*cel.Type{cel.StringType}, cel.BoolType,
				cel.FunctionBinding(e.matchField)),
			cel.Overload("matchfield_string_int_int",
				[]*cel.Type{cel.StringType, cel.IntType, cel.IntType}, cel.BoolType,
				cel.FunctionBinding(e.matchField))),
		cel.Function("setfield",
			cel.Overload("setfield_dyn",
				[]*cel.Type{cel.DynType}, cel.BoolType,
				cel.FunctionBinding(e.setField)),
			cel.Overload("setfield_int_int_dyn",
				[]*cel.Type{cel.IntType, cel.IntType, cel.DynType}, cel.BoolType,
				cel.FunctionBinding(e.setField))),
		cel.Function("getvar",
			cel.Overload("getvar_string",
				[]*cel.Type{cel.StringType}, cel.StringType,
				cel.FunctionBinding(e.getVar))),
		cel.Function("setvar",
			cel.Overload("setvar_string_dyn",
				[]*cel.Type{cel.StringType, cel.DynType}, cel.BoolType,
				cel.FunctionBinding(e.setVar))),
		cel.Function("checkvar",
			cel.Overload("checkvar_string_dyn",
				[]*cel.Type{cel.StringType, cel.DynType}, cel.BoolType,
				cel.FunctionBinding(e.checkVar))),
		cel.Function("counter",
			cel.Overload("counter_string",
				[]*cel.Type{cel.StringType}, cel.IntType,
				cel.FunctionBinding(e.counter))),
		cel.Function("hline_above",
			cel.Overload("hline_above_void",
				[]*cel.Type{}, cel.BoolType,
				cel.FunctionBinding(e.hlineAbove))),
		cel.Function("hline_below",
			cel.Overload("hline_below_void",
				[]*cel.Type{}, cel.BoolType,
				cel.FunctionBinding(e.hlineBelow))),
		cel.Function("flatten",
			cel.Overload("flatten_int_string",
				[]*cel.Type{cel.IntType, cel.StringType}, cel.BoolType,
				cel.FunctionBinding(e.flatten))),
	)
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("building cell environment: %w", err)
	}
	e.env = env
	return e, nil
}

// Env exposes the underlying environment for function discovery.
func (e *CellEnv) Env() *cel.Env { return e.env }

// Binding returns the live binding the environment evaluates against.
func (e *CellEnv) Binding() CellBinding { return e.bind }

// Compile parses and type-checks a condition leaf once per traversal.
func (e *CellEnv) Compile(src string) (*CellProgram, error) {
	ast, issues := e.env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{Expr: src, Err: issues.Err()}
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, &CompileError{Expr: src, Err: err}
	}
	return &CellProgram{prg: prg, src: src, owner: e}, nil
}

// Regexp compiles and caches a pattern for the duration of the traversal.
func (e *CellEnv) Regexp(pat string) (*regexp.Regexp, error) {
	if re, ok := e.rex[pat]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, err
	}
	e.rex[pat] = re
	return re, nil
}

func (e *CellEnv) activation() map[string]interface{} {
	return map[string]interface{}{
		"line":   int64(e.bind.Line()),
		"col":    int64(e.bind.Col()),
		"nlines": int64(e.bind.Lines()),
		"ncols":  int64(e.bind.Cols()),
		"field":  e.bind.Field(0, 0),
	}
}

func (e *CellEnv) fieldAt(args ...ref.Val) ref.Val {
	dl, ok1 := args[0].(types.Int)
	dc, ok2 := args[1].(types.Int)
	if !ok1 || !ok2 {
		return types.NewErr("field: offsets must be integers")
	}
	return types.String(e.bind.Field(int(dl), int(dc)))
}

func (e *CellEnv) matchField(args ...ref.Val) ref.Val {
	pat, ok := args[0].(types.String)
	if !ok {
		return types.NewErr("matchfield: pattern must be a string")
	}
	dl, dc := 0, 0
	if len(args) == 3 {
		l, ok1 := args[1].(types.Int)
		c, ok2 := args[2].(types.Int)
		if !ok1 || !ok2 {
			return types.NewErr("matchfield: offsets must be integers")
		}
		dl, dc = int(l), int(c)
	}
	re, err := e.Regexp(string(pat))
	if err != nil {
		return types.NewErr("matchfield: %v", err)
	}
	return types.Bool(re.MatchString(e.bind.Field(dl, dc)))
}

func (e *CellEnv) setField(args ...ref.Val) ref.Val {
	if len(args) == 1 {
		e.bind.SetField(0, 0, argString(args[0]))
		return types.True
	}
	dl, ok1 := args[0].(types.Int)
	dc, ok2 := args[1].(types.Int)
	if !ok1 || !ok2 {
		return types.NewErr("setfield: offsets must be integers")
	}
	e.bind.SetField(int(dl), int(dc), argString(args[2]))
	return types.True
}

func (e *CellEnv) getVar(args ...ref.Val) ref.Val {
	name, ok := args[0].(types.String)
	if !ok {
		return types.NewErr("getvar: name must be a string")
	}
	return types.String(e.bind.GetVar(string(name)))
}

func (e *CellEnv) setVar(args ...ref.Val) ref.Val {
	name, ok := args[0].(types.String)
	if !ok {
		return types.NewErr("setvar: name must be a string")
	}
	e.bind.SetVar(string(name), argString(args[1]))
	return types.True
}

func (e *CellEnv) checkVar(args ...ref.Val) ref.Val {
	name, ok := args[0].(types.String)
	if !ok {
		return types.NewErr("checkvar: name must be a string")
	}
	return types.Bool(e.bind.CheckVar(string(name), argString(args[1])))
}

func (e *CellEnv) counter(args ...ref.Val) ref.Val {
	name, ok := args[0].(types.String)
	if !ok {
		return types.NewErr("counter: name must be a string")
	}
	return types.Int(e.bind.Counter(string(name)))
}

func (e *CellEnv) hlineAbove(...ref.Val) ref.Val {
	return types.Bool(e.bind.HLineAbove())
}

func (e *CellEnv) hlineBelow(...ref.Val) ref.Val {
	return types.Bool(e.bind.HLineBelow())
}

func (e *CellEnv) flatten(args ...ref.Val) ref.Val {
	nrows, ok1 := args[0].(types.Int)
	reducer, ok2 := args[1].(types.String)
	if !ok1 || !ok2 {
		return types.NewErr("flatten: want (int, string)")
	}
	if err := e.bind.Flatten(int(nrows), string(reducer)); err != nil {
		return types.NewErr("flatten: %v", err)
	}
	return types.True
}

// CellProgram is a compiled condition leaf. Eval reads the binding's
// position at call time, so the same program serves every candidate cell.
type CellProgram struct {
	prg   cel.Program
	src   string
	owner *CellEnv
}

// Source returns the expression text the program was compiled from.
func (p *CellProgram) Source() string { return p.src }

// Eval evaluates the leaf at the binding's current coordinate.
func (p *CellProgram) Eval() (bool, error) {
	out, _, err := p.prg.Eval(p.owner.activation())
	if err != nil {
		return false, &EvalError{Expr: p.src, Err: err}
	}
	return Truthy(out), nil
}
