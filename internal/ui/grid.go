package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tabx/pkg/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

func (m *Model) View() tea.View {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.gridView())
	b.WriteByte('\n')
	b.WriteString(m.statusView())
	b.WriteByte('\n')
	if m.mode != modeGrid {
		b.WriteString(m.promptView())
	} else {
		b.WriteString(m.footerView())
	}
	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m *Model) headerView() string {
	parts := []string{"tabx"}
	if m.opts.Source.Path != "" {
		parts = append(parts, m.opts.Source.Path)
	}
	if len(m.tables) > 1 {
		parts = append(parts, fmt.Sprintf("table %d/%d", m.idx+1, len(m.tables)))
	}
	parts = append(parts, "cell "+m.cursor.String())
	if m.view != nil {
		parts = append(parts, "view: "+m.viewExpr)
	}
	if st := m.opts.Engine.State; st != nil && st.Condition() != "" {
		parts = append(parts, fmt.Sprintf("jump %s: %s", st.Direction(), st.Condition()))
	}
	s := strings.Join(parts, " · ")
	if m.opts.NoColor {
		return s
	}
	return headerStyle.Render(s)
}

func (m *Model) statusView() string {
	if m.status == "" {
		return ""
	}
	if m.opts.NoColor {
		return m.status
	}
	if m.statusType == "error" {
		return errorStyle.Render(m.status)
	}
	return infoStyle.Render(m.status)
}

func (m *Model) footerView() string {
	s := "arrows move · j jump · J/K repeat · : filter · t/T table · w write · u undo · q quit"
	if m.opts.NoColor {
		return s
	}
	return faintStyle.Render(s)
}

func (m *Model) promptView() string {
	label := "jump"
	if m.mode == modeFilter {
		label = "filter"
	}
	prompt := label + " ❯ "
	if !m.opts.NoColor {
		prompt = promptStyle.Render(prompt)
	}
	return prompt + m.input.View()
}

// gridRows is how many table rows fit between the header line and the status
// and footer lines.
func (m *Model) gridRows() int {
	return max(3, m.height-3)
}

// scrollToCursor brings the cursor back into the visible window, vertically
// and horizontally, after a move that may have left it.
func (m *Model) scrollToCursor() {
	d := m.display()
	if len(d.Rows) == 0 {
		m.topRow, m.leftCol = 1, 1
		return
	}
	cur := fullRowIndex(d, m.cursor.Line)
	if cur < m.topRow {
		m.topRow = cur
	}
	if bottom := m.topRow + m.gridRows() - 1; cur > bottom {
		m.topRow = cur - m.gridRows() + 1
	}
	if m.cursor.Col < m.leftCol {
		m.leftCol = m.cursor.Col
	}
	widths := d.ColumnWidths()
	for m.leftCol < m.cursor.Col && colSpanWidth(widths, m.leftCol, m.cursor.Col) > m.width {
		m.leftCol++
	}
}

// fullRowIndex maps a 1-based data line to its 1-based position in the full
// row sequence, separators included.
func fullRowIndex(t table.Table, line int) int {
	seen := 0
	for i, r := range t.Rows {
		if r.Separator {
			continue
		}
		seen++
		if seen == line {
			return i + 1
		}
	}
	return len(t.Rows)
}

// colSpanWidth is the rendered width of columns [from, to] inclusive: each
// cell costs its width plus ` | ` of chrome, after the leading pipe.
func colSpanWidth(widths []int, from, to int) int {
	w := 1
	for c := from; c <= to && c <= len(widths); c++ {
		w += widths[c-1] + 3
	}
	return w
}

// gridView renders the visible window of the displayed table as aligned pipe
// text with the cursor cell inverted.
func (m *Model) gridView() string {
	d := m.display()
	if len(d.Rows) == 0 {
		return faintRender(m.opts.NoColor, "(empty table)")
	}
	widths := d.ColumnWidths()
	lastCol := m.leftCol
	for lastCol < len(widths) && colSpanWidth(widths, m.leftCol, lastCol+1) <= m.width {
		lastCol++
	}

	var b strings.Builder
	line := 0 // data-line counter over the full sequence
	printed := 0
	for rowNo, r := range d.Rows {
		if !r.Separator {
			line++
		}
		if rowNo+1 < m.topRow {
			continue
		}
		if printed >= m.gridRows() {
			break
		}
		if printed > 0 {
			b.WriteByte('\n')
		}
		if r.Separator {
			b.WriteString(renderSeparator(widths, m.leftCol, lastCol))
		} else {
			b.WriteString(m.renderDataRow(r.Cells, widths, line, lastCol))
		}
		printed++
	}
	return b.String()
}

func (m *Model) renderDataRow(cells []string, widths []int, line, lastCol int) string {
	var b strings.Builder
	b.WriteByte('|')
	for c := m.leftCol; c <= lastCol; c++ {
		cell := ""
		if c-1 < len(cells) {
			cell = cells[c-1]
		}
		padded := cell + strings.Repeat(" ", max(0, widths[c-1]-runewidth.StringWidth(cell)))
		if line == m.cursor.Line && c == m.cursor.Col {
			// The inverse highlight is kept even in no-color mode;
			// without it the cursor would be invisible.
			padded = cursorStyle.Render(padded)
		}
		b.WriteByte(' ')
		b.WriteString(padded)
		b.WriteString(" |")
	}
	return b.String()
}

func renderSeparator(widths []int, from, to int) string {
	var b strings.Builder
	b.WriteByte('|')
	for c := from; c <= to && c <= len(widths); c++ {
		if c > from {
			b.WriteByte('+')
		}
		b.WriteString(strings.Repeat("-", widths[c-1]+2))
	}
	b.WriteByte('|')
	return b.String()
}

func faintRender(noColor bool, s string) string {
	if noColor {
		return s
	}
	return faintStyle.Render(s)
}
