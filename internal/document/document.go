// Package document is the plain-text side of the system: a line-based buffer
// that locates named tables, the table span under a position, document-level
// properties, and tabx-filter dynamic blocks, and rewrites spans in place.
// It satisfies the named-table lookup contract the filter package consumes.
package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoNamedTable reports a name no marker in the document anchors.
	ErrNoNamedTable = errors.New("no named table")
	// ErrNotInTable reports a position outside any table block.
	ErrNotInTable = errors.New("not inside a table")
)

// Span is a 1-based inclusive line range. End == Start-1 is the empty span
// just before Start, accepted by Replace as an insertion point.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines the span covers.
func (s Span) Len() int { return s.End - s.Start + 1 }

// Document is a host text held as lines. Line numbers are 1-based
// everywhere in the API, matching table coordinates.
type Document struct {
	lines    []string
	trailing bool
}

// New splits text into a document, remembering whether a trailing newline
// was present so String round-trips.
func New(text string) *Document {
	if text == "" {
		return &Document{}
	}
	lines := strings.Split(text, "\n")
	trailing := false
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
		trailing = true
	}
	return &Document{lines: lines, trailing: trailing}
}

// FromLines builds a document from lines. The rendered form ends with a
// newline, the usual shape for files written back to disk.
func FromLines(lines []string) *Document {
	d := &Document{lines: make([]string, len(lines)), trailing: true}
	copy(d.lines, lines)
	return d
}

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

// String renders the document back to text.
func (d *Document) String() string {
	if len(d.lines) == 0 {
		return ""
	}
	s := strings.Join(d.lines, "\n")
	if d.trailing {
		s += "\n"
	}
	return s
}

// Text returns the span's lines as table-parseable text.
func (d *Document) Text(span Span) string {
	if span.Len() <= 0 {
		return ""
	}
	return strings.Join(d.lines[span.Start-1:span.End], "\n")
}

// Replace rewrites the span with the given lines; the replacement may be
// longer, shorter, or empty (deletion). An empty span inserts before Start.
func (d *Document) Replace(span Span, lines []string) error {
	if span.Start < 1 || span.Start > len(d.lines)+1 ||
		span.End < span.Start-1 || span.End > len(d.lines) {
		return fmt.Errorf("replace span %d-%d: out of range for %d lines",
			span.Start, span.End, len(d.lines))
	}
	out := make([]string, 0, len(d.lines)-span.Len()+len(lines))
	out = append(out, d.lines[:span.Start-1]...)
	out = append(out, lines...)
	out = append(out, d.lines[span.End:]...)
	d.lines = out
	return nil
}

// isTableLine reports whether a line belongs to a table block: data rows and
// separator rules both start with a pipe once indentation is stripped.
func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// isMetaLine reports whether a line is a #+ keyword line.
func isMetaLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#+")
}

// TableSpanAt returns the maximal run of table lines around the given line.
func (d *Document) TableSpanAt(line int) (Span, error) {
	if line < 1 || line > len(d.lines) || !isTableLine(d.lines[line-1]) {
		return Span{}, fmt.Errorf("line %d: %w", line, ErrNotInTable)
	}
	start, end := line, line
	for start > 1 && isTableLine(d.lines[start-2]) {
		start--
	}
	for end < len(d.lines) && isTableLine(d.lines[end]) {
		end++
	}
	return Span{Start: start, End: end}, nil
}

// TableSpans lists every table block in the document, top to bottom.
func (d *Document) TableSpans() []Span {
	var spans []Span
	i := 0
	for i < len(d.lines) {
		if !isTableLine(d.lines[i]) {
			i++
			continue
		}
		start := i + 1
		for i < len(d.lines) && isTableLine(d.lines[i]) {
			i++
		}
		spans = append(spans, Span{Start: start, End: i})
	}
	return spans
}

// marker reads a `#+KEY: value` line and reports the lowercased key and the
// trimmed value.
func marker(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "#+") {
		return "", "", false
	}
	rest := s[2:]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(rest[:colon])),
		strings.TrimSpace(rest[colon+1:]), true
}

// NamedSpan resolves a #+NAME: or #+TBLNAME: marker (either spelling,
// case-insensitive) to the table block it anchors. The marker must directly
// precede the table; further #+ keyword lines may sit between, a blank line
// breaks the anchor.
func (d *Document) NamedSpan(nameOrID string) (Span, error) {
	want := strings.TrimSpace(nameOrID)
	for i, line := range d.lines {
		key, value, ok := marker(line)
		if !ok || (key != "name" && key != "tblname") {
			continue
		}
		if !strings.EqualFold(value, want) {
			continue
		}
		j := i + 1
		for j < len(d.lines) && isMetaLine(d.lines[j]) {
			j++
		}
		if j < len(d.lines) && isTableLine(d.lines[j]) {
			return d.TableSpanAt(j + 1)
		}
	}
	return Span{}, fmt.Errorf("%w: %q", ErrNoNamedTable, nameOrID)
}

// FindNamed returns the text of the named table block. This is the resolver
// contract the filter package's fetch and merge operations consume.
func (d *Document) FindNamed(nameOrID string) (string, error) {
	span, err := d.NamedSpan(nameOrID)
	if err != nil {
		return "", err
	}
	return d.Text(span), nil
}

// Properties collects #+PROPERTY: lines into a map. Property names are
// lowercased; the value is the remainder of the line. A repeated name keeps
// the last occurrence.
func (d *Document) Properties() map[string]string {
	props := make(map[string]string)
	for _, line := range d.lines {
		key, value, ok := marker(line)
		if !ok || key != "property" {
			continue
		}
		fields := strings.SplitN(value, " ", 2)
		if fields[0] == "" {
			continue
		}
		name := strings.ToLower(fields[0])
		if len(fields) == 2 {
			props[name] = strings.TrimSpace(fields[1])
		} else {
			props[name] = ""
		}
	}
	return props
}
