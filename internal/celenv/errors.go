package celenv

import "fmt"

// CompileError reports a condition or filter expression that failed to
// compile against its environment. It carries the offending source so the
// caller can surface the fragment.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %q: %v", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// EvalError reports a runtime evaluation failure. Row is the 1-based
// consideration index when the failure happened while filtering rows, or 0
// when the expression was not row-scoped.
type EvalError struct {
	Expr string
	Row  int
	Err  error
}

func (e *EvalError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("evaluating %q on row %d: %v", e.Expr, e.Row, e.Err)
	}
	return fmt.Sprintf("evaluating %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
