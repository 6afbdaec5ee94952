// Package jump drives condition-directed cursor traversal over a table: it
// parses the composable condition grammar (regex matches, direct coordinate
// jumps, boolean combinators, cyclic sequences, presets, expression leaves),
// then steps the cursor one cell at a time in the configured direction until
// the condition holds or a full cycle proves no cell matches. Conditions may
// mutate the table and the session state as they evaluate; each candidate
// cell is evaluated exactly once per visit, so a failed jump's side effects
// remain applied even though the cursor is restored.
package jump

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/oakwood-commons/tabx/internal/celenv"
	"github.com/oakwood-commons/tabx/internal/flatten"
	"github.com/oakwood-commons/tabx/pkg/rangespec"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// Direction is the traversal axis and sense for a jump.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection reads a direction name, accepting single-letter forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return "", &PreconditionError{Reason: fmt.Sprintf("unknown direction %q", s)}
}

// Invert returns the opposite direction.
func (d Direction) Invert() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	}
	return Left
}

// maxPresetDepth bounds recursive preset resolution so a preset naming
// itself is rejected instead of looping.
const maxPresetDepth = 32

// Engine runs jumps over one table. It owns the condition environment whose
// function bindings read and mutate the table at the cursor, and shares a
// State across invocations.
type Engine struct {
	tab      *table.Table
	state    *State
	presets  *Presets
	reducers *flatten.Registry
	env      *celenv.CellEnv
	bind     *binding

	lastSrc  string
	lastCond *Condition
}

// New builds an engine over t. A nil state starts a fresh session; nil
// presets and reducers fall back to the built-in tables.
func New(t *table.Table, st *State, presets *Presets, reducers *flatten.Registry) (*Engine, error) {
	if st == nil {
		st = NewState()
	}
	if presets == nil {
		presets = DefaultPresets()
	}
	if reducers == nil {
		reducers = flatten.NewRegistry()
	}
	e := &Engine{tab: t, state: st, presets: presets, reducers: reducers}
	e.bind = &binding{engine: e}
	env, err := celenv.NewCellEnv(e.bind)
	if err != nil {
		return nil, err
	}
	e.env = env
	return e, nil
}

// State returns the session state the engine reads and writes.
func (e *Engine) State() *State { return e.state }

// Presets returns the preset table, for listing and registration.
func (e *Engine) Presets() *Presets { return e.presets }

// Env exposes the condition environment for function discovery.
func (e *Engine) Env() *cel.Env { return e.env.Env() }

// Compiled condition nodes. Evaluation is a type switch on the engine, in
// the navigator style: plain structs, no behavior of their own.
type cnode interface{}

type cregex struct {
	re *regexp.Regexp
}

type cmatch struct {
	re     *regexp.Regexp
	dl, dc int
}

type cgoto struct {
	line, col       int
	hasLine, hasCol bool
}

type cand struct {
	kids []cnode
}

type cor struct {
	kids []cnode
}

type cnot struct {
	kid cnode
}

type cseq struct {
	kids []cnode
	key  string
	pick int
}

type cexpr struct {
	prg *celenv.CellProgram
}

// Condition is a compiled condition tree bound to one engine.
type Condition struct {
	source string
	root   cnode
	seqs   []*cseq
}

// Source returns the text the condition was compiled from.
func (c *Condition) Source() string { return c.source }

// Compile parses and compiles a condition. Presets resolve recursively;
// regexes and expression leaves compile once, so the result evaluates
// cheaply at every visited cell.
func (e *Engine) Compile(src string) (*Condition, error) {
	root, err := parseCondition(src)
	if err != nil {
		return nil, err
	}
	c := &Condition{source: src}
	c.root, err = e.compileNode(root, c, 0)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (e *Engine) compileNode(n node, c *Condition, depth int) (cnode, error) {
	if depth > maxPresetDepth {
		return nil, &ParseError{Fragment: c.source, Reason: "preset recursion too deep"}
	}
	switch v := n.(type) {
	case regexNode:
		re, err := e.env.Regexp(v.pattern)
		if err != nil {
			return nil, &ParseError{Fragment: v.pattern, Reason: err.Error()}
		}
		return &cregex{re: re}, nil
	case matchNode:
		re, err := e.env.Regexp(v.pattern)
		if err != nil {
			return nil, &ParseError{Fragment: v.pattern, Reason: err.Error()}
		}
		return &cmatch{re: re, dl: v.dl, dc: v.dc}, nil
	case gotoNode:
		return &cgoto{line: v.line, col: v.col, hasLine: v.hasLine, hasCol: v.hasCol}, nil
	case andNode:
		kids, err := e.compileKids(v.kids, c, depth)
		if err != nil {
			return nil, err
		}
		return &cand{kids: kids}, nil
	case orNode:
		kids, err := e.compileKids(v.kids, c, depth)
		if err != nil {
			return nil, err
		}
		return &cor{kids: kids}, nil
	case notNode:
		kid, err := e.compileNode(v.kid, c, depth)
		if err != nil {
			return nil, err
		}
		return &cnot{kid: kid}, nil
	case seqNode:
		// The persisted index is keyed by condition source plus the
		// sequence's position in it, so re-running the same condition
		// resumes its cycle while a different condition starts fresh.
		s := &cseq{key: fmt.Sprintf("%s#%d", c.source, len(c.seqs))}
		c.seqs = append(c.seqs, s)
		kids, err := e.compileKids(v.kids, c, depth)
		if err != nil {
			return nil, err
		}
		s.kids = kids
		return s, nil
	case identNode:
		if p, ok := e.presets.Lookup(v.name); ok {
			sub, err := parseCondition(p.Condition)
			if err != nil {
				return nil, &ParseError{Fragment: v.name, Reason: err.Error()}
			}
			return e.compileNode(sub, c, depth+1)
		}
		prg, err := e.env.Compile(v.name)
		if err != nil {
			return nil, err
		}
		return &cexpr{prg: prg}, nil
	case exprNode:
		prg, err := e.env.Compile(v.src)
		if err != nil {
			return nil, err
		}
		return &cexpr{prg: prg}, nil
	}
	return nil, &ParseError{Fragment: c.source, Reason: fmt.Sprintf("unknown condition node %T", n)}
}

func (e *Engine) compileKids(kids []node, c *Condition, depth int) ([]cnode, error) {
	out := make([]cnode, 0, len(kids))
	for _, k := range kids {
		ck, err := e.compileNode(k, c, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, ck)
	}
	return out, nil
}

// Next moves the cursor to the steps-th matching cell in the traversal
// direction. Empty cond and dir reuse the values persisted from the previous
// invocation; passing either updates the persisted value first. Negative
// steps invert the direction. Per step the cursor moves one cell at a time,
// evaluating the condition exactly once per visited cell, until it holds or
// every cell has been visited; a full cycle without a match restores the
// cursor to the invocation's start and reports ErrNoMatch. Side effects from
// already-evaluated cells stay applied either way.
func (e *Engine) Next(start table.Coordinate, steps int, cond, dir string) (table.Coordinate, error) {
	if e.state.busy {
		return start, &PreconditionError{Reason: "invoked from inside condition evaluation"}
	}
	e.state.busy = true
	defer func() { e.state.busy = false }()

	nlines := e.tab.DataRowCount()
	ncols := e.tab.ColumnCount()
	if nlines == 0 || ncols == 0 {
		return start, &PreconditionError{Reason: "table has no data cells"}
	}
	if start.Line < 1 || start.Line > nlines || start.Col < 1 || start.Col > ncols {
		return start, &PreconditionError{Reason: fmt.Sprintf("cursor %s outside the table", start)}
	}

	if dir != "" {
		d, err := ParseDirection(dir)
		if err != nil {
			return start, err
		}
		e.state.dir = d
	}
	if e.state.dir == "" {
		e.state.dir = Right
	}
	src := e.state.condSrc
	if cond != "" {
		src = cond
	}
	if src == "" {
		return start, &PreconditionError{Reason: "no condition given and none persisted"}
	}
	c, err := e.compiled(src)
	if err != nil {
		return start, err
	}
	e.state.condSrc = src

	if steps == 0 {
		return start, nil
	}
	sgn := 1
	if steps < 0 {
		sgn = -1
		steps = -steps
	}
	d := e.state.dir
	if sgn < 0 {
		d = d.Invert()
	}
	e.latchSequences(c, sgn)

	budget := nlines * ncols
	e.bind.start = start
	cur := start
	for s := 0; s < steps; s++ {
		visits := 0
		for {
			cur = move(cur, d, nlines, ncols)
			visits++
			e.bind.cur = cur
			ok, err := e.eval(c.root)
			if err != nil {
				return start, err
			}
			if ok {
				break
			}
			if visits >= budget {
				return start, fmt.Errorf("step %d of %d: %w", s+1, steps, ErrNoMatch)
			}
		}
	}
	return cur, nil
}

// Prev is Next with the step sense inverted.
func (e *Engine) Prev(start table.Coordinate, steps int, cond, dir string) (table.Coordinate, error) {
	return e.Next(start, -steps, cond, dir)
}

// compiled returns the condition for src, reusing the previous compilation
// when the source is unchanged.
func (e *Engine) compiled(src string) (*Condition, error) {
	if e.lastCond != nil && e.lastSrc == src {
		return e.lastCond, nil
	}
	c, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	e.lastSrc, e.lastCond = src, c
	return c, nil
}

// latchSequences picks each sequence's child for this invocation and
// advances its persisted index by one in the sign of steps. The selection
// stays fixed for every step and cell of the invocation.
func (e *Engine) latchSequences(c *Condition, sgn int) {
	for _, s := range c.seqs {
		n := len(s.kids)
		idx := e.state.seqIndex(s.key)
		s.pick = ((idx % n) + n) % n
		e.state.setSeqIndex(s.key, idx+sgn)
	}
}

// eval walks a compiled condition at the binding's current coordinate.
// Combinators short-circuit left-to-right in the engine, not in the
// expression language, so side-effecting leaves run in a contractual order.
func (e *Engine) eval(n cnode) (bool, error) {
	switch v := n.(type) {
	case *cregex:
		return v.re.MatchString(e.bind.Field(0, 0)), nil
	case *cmatch:
		return v.re.MatchString(e.bind.Field(v.dl, v.dc)), nil
	case *cgoto:
		want := e.bind.start
		if v.hasLine {
			want.Line = rangespec.Index(v.line, e.tab.DataRowCount())
		}
		if v.hasCol {
			want.Col = rangespec.Index(v.col, e.tab.ColumnCount())
		}
		return e.bind.cur == want, nil
	case *cand:
		for _, k := range v.kids {
			ok, err := e.eval(k)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *cor:
		for _, k := range v.kids {
			ok, err := e.eval(k)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case *cnot:
		ok, err := e.eval(v.kid)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case *cseq:
		return e.eval(v.kids[v.pick])
	case *cexpr:
		return v.prg.Eval()
	}
	return false, fmt.Errorf("jump: unknown compiled node %T", n)
}

// move advances one cell with wraparound: right and left walk the table in
// row-major order, down and up in column-major order, and walking off the
// last cell continues at the first (and the reverse).
func move(c table.Coordinate, d Direction, nlines, ncols int) table.Coordinate {
	switch d {
	case Right:
		c.Col++
		if c.Col > ncols {
			c.Col = 1
			c.Line++
			if c.Line > nlines {
				c.Line = 1
			}
		}
	case Left:
		c.Col--
		if c.Col < 1 {
			c.Col = ncols
			c.Line--
			if c.Line < 1 {
				c.Line = nlines
			}
		}
	case Down:
		c.Line++
		if c.Line > nlines {
			c.Line = 1
			c.Col++
			if c.Col > ncols {
				c.Col = 1
			}
		}
	case Up:
		c.Line--
		if c.Line < 1 {
			c.Line = nlines
			c.Col--
			if c.Col < 1 {
				c.Col = ncols
			}
		}
	}
	return c
}

// binding implements celenv.CellBinding over the engine's table and cursor.
// Out-of-bounds reads return "" and out-of-bounds writes are dropped, so
// relative accessors near the table edge stay harmless.
type binding struct {
	engine *Engine
	cur    table.Coordinate
	start  table.Coordinate
}

func (b *binding) Line() int { return b.cur.Line }

func (b *binding) Col() int { return b.cur.Col }

func (b *binding) Lines() int { return b.engine.tab.DataRowCount() }

func (b *binding) Cols() int { return b.engine.tab.ColumnCount() }

func (b *binding) Field(dl, dc int) string {
	v, err := b.engine.tab.Cell(b.cur.Line+dl, b.cur.Col+dc)
	if err != nil {
		return ""
	}
	return v
}

func (b *binding) SetField(dl, dc int, val string) {
	_ = b.engine.tab.SetCell(b.cur.Line+dl, b.cur.Col+dc, val)
}

func (b *binding) HLineAbove() bool {
	return b.engine.tab.SeparatorBefore(b.cur.Line)
}

func (b *binding) HLineBelow() bool {
	return b.engine.tab.SeparatorAfter(b.cur.Line)
}

func (b *binding) GetVar(name string) string {
	return b.engine.state.Var(name)
}

func (b *binding) SetVar(name, val string) {
	b.engine.state.SetVar(name, val)
}

func (b *binding) CheckVar(name, val string) bool {
	return b.engine.state.Var(name) == val
}

func (b *binding) Counter(name string) int {
	return b.engine.state.Counter(name)
}

func (b *binding) Flatten(nrows int, reducer string) error {
	red, err := b.engine.reducers.Resolve(reducer)
	if err != nil {
		return err
	}
	_, err = flatten.Column(b.engine.tab, b.cur, nrows, red)
	return err
}
