package table

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

// Parse reads the pipe-table text form: data rows like `| a | b |` and
// separator rules like `|---+---|`. Alignment whitespace is cosmetic and
// discarded; cell content is trimmed. Blank lines and `#+` meta lines inside
// the block are skipped. A trailing pipe may be missing on ragged host input.
func Parse(text string) (Table, error) {
	var t Table
	lines := strings.Split(text, "\n")
	for no, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#+"):
			continue
		case strings.HasPrefix(line, "|-"):
			t.Rows = append(t.Rows, Row{Separator: true})
		case strings.HasPrefix(line, "|"):
			t.Rows = append(t.Rows, Row{Cells: splitCells(line)})
		default:
			return Table{}, &ParseError{LineNo: no + 1, Line: raw, Reason: "not a table line"}
		}
	}
	if len(t.Rows) == 0 {
		return Table{}, &ParseError{Reason: "no table lines in input"}
	}
	return t, nil
}

func splitCells(line string) []string {
	body := strings.TrimPrefix(line, "|")
	body = strings.TrimSuffix(body, "|")
	parts := strings.Split(body, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// ColumnWidths returns the display width of the widest cell per column,
// measured with runewidth so wide runes count correctly.
func (t Table) ColumnWidths() []int {
	widths := make([]int, t.ColumnCount())
	for _, r := range t.Rows {
		if r.Separator {
			continue
		}
		for c, cell := range r.Cells {
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

// String renders the table back to pipe-table text with columns aligned to
// their widest cell. Content round-trips through Parse; the padding itself is
// cosmetic.
func (t Table) String() string {
	widths := t.ColumnWidths()
	var b strings.Builder
	for i, r := range t.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.Separator {
			writeSeparator(&b, widths)
			continue
		}
		b.WriteByte('|')
		for c := 0; c < len(widths); c++ {
			cell := ""
			if c < len(r.Cells) {
				cell = r.Cells[c]
			}
			b.WriteByte(' ')
			b.WriteString(cell)
			for pad := runewidth.StringWidth(cell); pad < widths[c]; pad++ {
				b.WriteByte(' ')
			}
			b.WriteString(" |")
		}
	}
	return b.String()
}

func writeSeparator(b *strings.Builder, widths []int) {
	b.WriteByte('|')
	for c, w := range widths {
		if c > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strings.Repeat("-", w+2))
	}
	b.WriteByte('|')
}
