// Package rangespec implements the row/column selector language: a
// comma-separated list of signed indices and ranges resolved against a length
// into a concrete, order-preserving index list. 0 addresses the last element,
// negative indices count from the end, and ranges may carry an explicit step,
// so specs can reorder, repeat, and reverse as well as select.
package rangespec

import (
	"fmt"
	"strconv"
	"strings"
)

// Atom is a single selector: either one signed index or an inclusive range
// with an optional step.
type Atom struct {
	Start   int
	End     int
	Step    int
	IsRange bool
	HasStep bool
}

// Spec is a parsed selector list. The zero value (and the empty string)
// resolves to the full identity sequence.
type Spec struct {
	atoms []Atom
	raw   string
}

// ParseError reports a selector fragment that could not be read.
type ParseError struct {
	Fragment string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("range spec %q: %s", e.Fragment, e.Reason)
}

// Parse reads a selector list such as "1,3-5,0" or "-2--1" or "5-1" or
// "2-10:2". Whitespace around atoms is ignored.
func Parse(s string) (Spec, error) {
	spec := Spec{raw: strings.TrimSpace(s)}
	if spec.raw == "" {
		return spec, nil
	}
	for _, piece := range strings.Split(spec.raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return Spec{}, &ParseError{Fragment: s, Reason: "empty selector atom"}
		}
		atom, err := parseAtom(piece)
		if err != nil {
			return Spec{}, err
		}
		spec.atoms = append(spec.atoms, atom)
	}
	return spec, nil
}

// MustParse is Parse for specs known valid at compile time; it panics on error.
func MustParse(s string) Spec {
	spec, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return spec
}

func parseAtom(piece string) (Atom, error) {
	start, rest, err := scanInt(piece)
	if err != nil {
		return Atom{}, &ParseError{Fragment: piece, Reason: err.Error()}
	}
	if rest == "" {
		return Atom{Start: start}, nil
	}
	if rest[0] != '-' {
		return Atom{}, &ParseError{Fragment: piece, Reason: "expected '-' after start index"}
	}
	end, rest, err := scanInt(rest[1:])
	if err != nil {
		return Atom{}, &ParseError{Fragment: piece, Reason: "bad range end: " + err.Error()}
	}
	atom := Atom{Start: start, End: end, IsRange: true}
	if rest == "" {
		return atom, nil
	}
	if rest[0] != ':' {
		return Atom{}, &ParseError{Fragment: piece, Reason: "expected ':' before step"}
	}
	step, rest, err := scanInt(rest[1:])
	if err != nil || rest != "" {
		return Atom{}, &ParseError{Fragment: piece, Reason: "bad step"}
	}
	if step == 0 {
		return Atom{}, &ParseError{Fragment: piece, Reason: "step must be non-zero"}
	}
	atom.Step = step
	atom.HasStep = true
	return atom, nil
}

// scanInt reads a leading signed integer and returns the remainder.
func scanInt(s string) (int, string, error) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, "", fmt.Errorf("expected integer at %q", s)
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, "", err
	}
	return v, s[i:], nil
}

// IsEmpty reports whether the spec selects everything (no atoms).
func (s Spec) IsEmpty() bool {
	return len(s.atoms) == 0
}

// Resolve maps the spec against a sequence of the given length into 1-based
// indices. The empty spec yields the identity [1..length]. Index mapping per
// endpoint: 0 means last, negative counts from the end (-1 = last), and
// anything still outside [1,length] clamps to the nearest bound. Atom results
// concatenate in spec order; duplicates are preserved, nothing is sorted.
func (s Spec) Resolve(length int) []int {
	if length <= 0 {
		return nil
	}
	if s.IsEmpty() {
		out := make([]int, length)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	var out []int
	for _, a := range s.atoms {
		if !a.IsRange {
			out = append(out, mapIndex(a.Start, length))
			continue
		}
		start := mapIndex(a.Start, length)
		end := mapIndex(a.End, length)
		step := a.Step
		if !a.HasStep {
			if start <= end {
				step = 1
			} else {
				step = -1
			}
		}
		if step > 0 {
			for v := start; v <= end; v += step {
				out = append(out, v)
			}
		} else {
			for v := start; v >= end; v += step {
				out = append(out, v)
			}
		}
	}
	return out
}

// Index maps a single selector endpoint against a length using the same
// rules Resolve applies: 0 means last, negative counts from the end, and
// anything outside [1,length] clamps to the nearest bound. Exposed so other
// index-taking operations share the selector convention.
func Index(v, length int) int {
	return mapIndex(v, length)
}

func mapIndex(v, length int) int {
	switch {
	case v == 0:
		v = length
	case v < 0:
		v = length + v + 1
	}
	if v < 1 {
		return 1
	}
	if v > length {
		return length
	}
	return v
}

// pflag.Value implementation so commands can declare --rows/--cols flags
// that parse eagerly and report bad fragments at flag-parse time.

// String returns the original spec text.
func (s *Spec) String() string {
	return s.raw
}

// Set parses the flag value, replacing the spec.
func (s *Spec) Set(v string) error {
	parsed, err := Parse(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type names the flag value type in help output.
func (s *Spec) Type() string {
	return "rangespec"
}
