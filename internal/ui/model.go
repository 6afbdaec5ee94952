package ui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/tabx/internal/celenv"
	"github.com/oakwood-commons/tabx/internal/filter"
	"github.com/oakwood-commons/tabx/internal/jump"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// mode tracks where keys go: the grid, or one of the two prompts.
type mode int

const (
	modeGrid mode = iota
	modeJump
	modeFilter
)

// snapshot is one undo step: the table it applies to, its content before the
// mutation, and where the cursor stood.
type snapshot struct {
	idx    int
	tab    table.Table
	cursor table.Coordinate
}

// maxUndo bounds the undo stack; the oldest step falls off beyond it.
const maxUndo = 100

// Model is the walker state. It owns working copies of the source tables, so
// nothing touches the host document until the user writes back.
type Model struct {
	opts   Options
	tables []table.Table
	idx    int
	cursor table.Coordinate

	// view is the read-only filter overlay; nil means the working table is
	// shown. viewExpr is the expression it was built from.
	view     *table.Table
	viewExpr string

	undo []snapshot

	// completions caches the jump-prompt candidates: preset names plus the
	// discovered cell-environment functions. Built on first tab press.
	completions []string

	mode  mode
	input textinput.Model

	status     string
	statusType string // "info" or "error"

	width, height   int
	topRow, leftCol int
}

// New builds the walker over the source's tables. The caller has validated
// that at least one table exists.
func New(opts Options) *Model {
	tables := make([]table.Table, len(opts.Source.Tables))
	for i, t := range opts.Source.Tables {
		tables[i] = t.Clone()
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.SetWidth(60)
	return &Model{
		opts:    opts,
		tables:  tables,
		cursor:  table.Coordinate{Line: 1, Col: 1},
		input:   ti,
		width:   80,
		height:  24,
		topRow:  1,
		leftCol: 1,
	}
}

// display returns the table the grid currently shows: the filter view when
// one is active, otherwise the working table.
func (m *Model) display() table.Table {
	if m.view != nil {
		return *m.view
	}
	return m.tables[m.idx]
}

// Cursor returns the current cell coordinate.
func (m *Model) Cursor() table.Coordinate { return m.cursor }

// Table returns the working copy of the current table.
func (m *Model) Table() table.Table { return m.tables[m.idx] }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := m.width - 10; w >= 20 {
			m.input.SetWidth(w)
		}
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeGrid {
			return m.updatePrompt(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

// updateGrid handles keys while the grid owns the focus.
func (m *Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up":
		m.moveCursor(-1, 0)
	case "down":
		m.moveCursor(1, 0)
	case "left":
		m.moveCursor(0, -1)
	case "right":
		m.moveCursor(0, 1)
	case "home":
		m.cursor.Col = 1
		m.leftCol = 1
	case "end":
		if n := m.display().ColumnCount(); n > 0 {
			m.cursor.Col = n
			m.scrollToCursor()
		}
	case "j":
		m.openPrompt(modeJump, "direction: condition  (e.g. right: nonempty)")
	case "J":
		m.repeatJump(1)
	case "K":
		m.repeatJump(-1)
	case ":":
		m.openPrompt(modeFilter, "filter expression  (e.g. c2n > 10.0)")
	case "t":
		m.cycleTable(1)
	case "T":
		m.cycleTable(-1)
	case "u":
		m.undoLast()
	case "w":
		m.writeBack()
	case "esc":
		if m.view != nil {
			m.clearView()
			m.setStatus("view closed", "info")
		} else {
			m.setStatus("", "")
		}
	}
	return m, nil
}

// updatePrompt handles keys while a prompt owns the focus.
func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.closePrompt()
		return m, nil
	case "tab":
		if m.mode == modeJump {
			m.completePreset()
		}
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		entered := m.mode
		m.closePrompt()
		if text == "" {
			return m, nil
		}
		if entered == modeJump {
			m.runJump(text)
		} else {
			m.applyFilter(text)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(target mode, placeholder string) {
	if target == modeJump && m.view != nil {
		m.setStatus("close the view (esc) before jumping", "error")
		return
	}
	m.mode = target
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) closePrompt() {
	m.mode = modeGrid
	m.input.Blur()
}

// moveCursor moves one cell, clamped to the displayed table. Plain movement
// never wraps; wraparound belongs to jumps.
func (m *Model) moveCursor(dl, dc int) {
	d := m.display()
	nlines, ncols := d.DataRowCount(), d.ColumnCount()
	if nlines == 0 || ncols == 0 {
		return
	}
	m.cursor.Line = clamp(m.cursor.Line+dl, 1, nlines)
	m.cursor.Col = clamp(m.cursor.Col+dc, 1, ncols)
	m.scrollToCursor()
}

// splitJump reads the "direction: condition" prompt form. When no direction
// prefix is present the whole text is the condition and the engine reuses the
// persisted direction.
func splitJump(text string) (dir, cond string) {
	if i := strings.Index(text, ":"); i > 0 {
		if d, err := jump.ParseDirection(text[:i]); err == nil {
			return string(d), strings.TrimSpace(text[i+1:])
		}
	}
	return "", text
}

// runJump executes one jump over the working table. The pre-jump table is
// snapshotted first: conditions may mutate cells and session state, and those
// side effects stay applied even when the jump itself finds no match.
func (m *Model) runJump(text string) {
	dir, cond := splitJump(text)
	m.pushUndo()
	cur, err := m.opts.Engine.Jump(&m.tables[m.idx], m.cursor, 1, cond, dir)
	m.cursor = cur
	m.scrollToCursor()
	if err != nil {
		m.setStatus(err.Error(), "error")
		return
	}
	m.setStatus(fmt.Sprintf("jumped to %s", cur), "info")
}

// repeatJump reruns the persisted jump, forward or backward.
func (m *Model) repeatJump(sign int) {
	if m.view != nil {
		m.setStatus("close the view (esc) before jumping", "error")
		return
	}
	m.pushUndo()
	cur, err := m.opts.Engine.Jump(&m.tables[m.idx], m.cursor, sign, "", "")
	m.cursor = cur
	m.scrollToCursor()
	if err != nil {
		m.setStatus(err.Error(), "error")
		return
	}
	m.setStatus(fmt.Sprintf("jumped to %s", cur), "info")
}

// applyFilter builds a read-only filtered view of the working table.
func (m *Model) applyFilter(expr string) {
	v, err := m.opts.Engine.FilterList(m.tables[m.idx], filter.Options{Filter: expr})
	if err != nil {
		m.setStatus(err.Error(), "error")
		return
	}
	m.view = &v
	m.viewExpr = expr
	m.cursor = table.Coordinate{Line: 1, Col: 1}
	m.topRow, m.leftCol = 1, 1
	m.setStatus(fmt.Sprintf("view: %d of %d rows", v.DataRowCount(), m.tables[m.idx].DataRowCount()), "info")
}

func (m *Model) clearView() {
	m.view = nil
	m.viewExpr = ""
	d := m.display()
	m.cursor.Line = clamp(m.cursor.Line, 1, max(1, d.DataRowCount()))
	m.cursor.Col = clamp(m.cursor.Col, 1, max(1, d.ColumnCount()))
	m.topRow, m.leftCol = 1, 1
}

// cycleTable steps to the next or previous table in document order.
func (m *Model) cycleTable(d int) {
	n := len(m.tables)
	if n < 2 {
		m.setStatus("input has a single table", "info")
		return
	}
	m.idx = ((m.idx+d)%n + n) % n
	m.clearView()
	m.cursor = table.Coordinate{Line: 1, Col: 1}
	m.setStatus(fmt.Sprintf("table %d/%d", m.idx+1, n), "info")
}

func (m *Model) pushUndo() {
	m.undo = append(m.undo, snapshot{idx: m.idx, tab: m.tables[m.idx].Clone(), cursor: m.cursor})
	if len(m.undo) > maxUndo {
		m.undo = m.undo[1:]
	}
}

// undoLast restores the most recent snapshot, switching back to its table
// when needed. The filter view is dropped: it may show stale rows.
func (m *Model) undoLast() {
	if len(m.undo) == 0 {
		m.setStatus("nothing to undo", "info")
		return
	}
	s := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.idx = s.idx
	m.tables[s.idx] = s.tab
	m.view = nil
	m.viewExpr = ""
	m.cursor = s.cursor
	m.scrollToCursor()
	m.setStatus("undone", "info")
}

// writeBack replaces the current table's span in the host document with the
// working copy and, for file input, rewrites the file. Spans are recomputed
// per write, so earlier writes that changed the line count stay consistent.
func (m *Model) writeBack() {
	src := m.opts.Source
	if src.Doc == nil {
		m.setStatus(fmt.Sprintf("write-back needs a document input, not %s", src.Format), "error")
		return
	}
	spans := src.Doc.TableSpans()
	if m.idx >= len(spans) {
		m.setStatus("table has no span in the document", "error")
		return
	}
	lines := strings.Split(m.tables[m.idx].String(), "\n")
	if err := src.Doc.Replace(spans[m.idx], lines); err != nil {
		m.setStatus(err.Error(), "error")
		return
	}
	if src.Path == "" {
		m.setStatus("updated document in memory (stdin input, not written to disk)", "info")
		return
	}
	if err := os.WriteFile(src.Path, []byte(src.Doc.String()), 0o644); err != nil {
		m.setStatus(err.Error(), "error")
		return
	}
	m.setStatus(fmt.Sprintf("wrote %s", src.Path), "info")
}

// completionCandidates lists what tab can expand to in the jump prompt:
// preset names and the bare names of the cell-environment functions, as
// discovered from a throwaway engine.
func (m *Model) completionCandidates() []string {
	if m.completions != nil {
		return m.completions
	}
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			m.completions = append(m.completions, name)
		}
	}
	for _, p := range m.opts.Engine.Presets.List() {
		add(p.Name)
	}
	tiny := table.FromCells([][]string{{""}})
	if je, err := jump.New(&tiny, jump.NewState(), m.opts.Engine.Presets, m.opts.Engine.Reducers); err == nil {
		for _, f := range celenv.Functions(je.Env(), nil) {
			name, _, _ := strings.Cut(f, "(")
			add(name)
		}
	}
	sort.Strings(m.completions)
	return m.completions
}

// completePreset expands the last word of the jump prompt against the presets
// and cell functions: a unique prefix completes in place, several matches are
// listed.
func (m *Model) completePreset() {
	val := m.input.Value()
	word := val
	if i := strings.LastIndexAny(val, " (,:"); i >= 0 {
		word = val[i+1:]
	}
	if word == "" {
		return
	}
	var names []string
	for _, c := range m.completionCandidates() {
		if strings.HasPrefix(c, word) {
			names = append(names, c)
		}
	}
	switch len(names) {
	case 0:
		m.setStatus(fmt.Sprintf("no completion for %q", word), "info")
	case 1:
		m.input.SetValue(val[:len(val)-len(word)] + names[0])
		m.input.SetCursor(len(m.input.Value()))
		m.setStatus("", "")
	default:
		m.setStatus("matches: "+strings.Join(names, ", "), "info")
	}
}

func (m *Model) setStatus(text, kind string) {
	m.status = text
	m.statusType = kind
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
