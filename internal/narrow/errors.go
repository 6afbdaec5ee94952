package narrow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable means no external optimizer is configured; whole-table
// narrowing degrades to unavailable rather than crashing.
var ErrUnavailable = errors.New("no external optimizer configured")

// InfeasibleError means the optimizer could not fit the table into the
// width budget (it assigns a zero column width to say so). The table is
// left unmodified.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	return "narrowing infeasible: " + e.Reason
}

// SolverError wraps a failure of the external optimizer run: timeout,
// non-zero exit, missing success marker, or malformed output. Diagnostic
// preserves the external tool's own output.
type SolverError struct {
	Diagnostic string
	Err        error
}

func (e *SolverError) Error() string {
	if d := strings.TrimSpace(e.Diagnostic); d != "" {
		return fmt.Sprintf("optimizer failed: %v (diagnostic: %s)", e.Err, d)
	}
	return fmt.Sprintf("optimizer failed: %v", e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }
