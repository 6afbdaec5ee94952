package table

import (
	"errors"
	"fmt"
)

// ErrEmptyInput indicates an operation received no input tables.
var ErrEmptyInput = errors.New("no input tables")

// ErrNoDataRows indicates a table without data rows where at least one is
// required to establish the column count.
var ErrNoDataRows = errors.New("table has no data rows")

// ParseError reports text that could not be read as a pipe table. It carries
// the offending line so callers can surface the fragment.
type ParseError struct {
	LineNo int
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("parse table: %s", e.Reason)
	}
	return fmt.Sprintf("parse table: line %d: %s: %q", e.LineNo, e.Reason, e.Line)
}
