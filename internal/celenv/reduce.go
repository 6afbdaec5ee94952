package celenv

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// ReduceEnv evaluates custom reduction expressions during flattening. The
// collected column cells are bound to the variable cells (a list of strings);
// the pure value helpers are available, navigation functions are not.
type ReduceEnv struct {
	env *cel.Env
}

// NewReduceEnv builds the reducer environment.
func NewReduceEnv() (*ReduceEnv, error) {
	opts := extensionLibs()
	opts = append(opts, cel.Variable("cells", cel.ListType(cel.StringType)))
	opts = append(opts, valueFuncs()...)
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("building reducer environment: %w", err)
	}
	return &ReduceEnv{env: env}, nil
}

// Compile parses and type-checks a reduction expression.
func (e *ReduceEnv) Compile(src string) (*ReduceProgram, error) {
	ast, issues := e.env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{Expr: src, Err: issues.Err()}
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, &CompileError{Expr: src, Err: err}
	}
	return &ReduceProgram{prg: prg, src: src}, nil
}

// ReduceProgram is a compiled reduction expression.
type ReduceProgram struct {
	prg cel.Program
	src string
}

// Eval reduces the collected cells to the replacement cell text.
func (p *ReduceProgram) Eval(cells []string) (string, error) {
	out, _, err := p.prg.Eval(map[string]interface{}{"cells": cells})
	if err != nil {
		return "", &EvalError{Expr: p.src, Err: err}
	}
	return Stringify(out), nil
}
