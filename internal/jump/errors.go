package jump

import (
	"errors"
	"fmt"
)

// ErrNoMatch reports a full traversal cycle that found no matching cell; the
// cursor is back at its starting coordinate.
var ErrNoMatch = errors.New("no matching cell")

// PreconditionError reports an invocation whose cursor or arguments make the
// traversal undefined: a cursor outside the table, an unknown direction, no
// condition to evaluate, or a re-entrant call.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "jump: " + e.Reason
}

// ParseError reports a condition fragment that could not be read.
type ParseError struct {
	Fragment string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jump condition %q: %s", e.Fragment, e.Reason)
}
