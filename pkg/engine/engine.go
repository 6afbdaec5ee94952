// Package engine is the public façade over the table components: filtering,
// flattening, narrowing, reshaping, jump navigation, and dynamic-block
// updates behind one configured entry point. Engines are not safe for
// concurrent use; the jump State is the only cross-call mutable piece and is
// owned by the caller.
package engine

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tabx/internal/document"
	"github.com/oakwood-commons/tabx/internal/filter"
	"github.com/oakwood-commons/tabx/internal/flatten"
	"github.com/oakwood-commons/tabx/internal/jump"
	"github.com/oakwood-commons/tabx/internal/narrow"
	"github.com/oakwood-commons/tabx/pkg/loader"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// Engine ties the table components to one set of collaborators: a named-table
// resolver, an external narrowing solver, preset and reducer registries, and
// the persistent jump state.
type Engine struct {
	Resolver filter.Resolver
	Solver   narrow.Solver
	Presets  *jump.Presets
	Reducers *flatten.Registry
	State    *jump.State
	Logger   logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithResolver sets the named-table resolver (usually a loaded Document).
func WithResolver(r filter.Resolver) Option {
	return func(e *Engine) {
		e.Resolver = r
	}
}

// WithSolver sets the external narrowing optimizer.
func WithSolver(s narrow.Solver) Option {
	return func(e *Engine) {
		e.Solver = s
	}
}

// WithPresets sets the jump preset table.
func WithPresets(p *jump.Presets) Option {
	return func(e *Engine) {
		e.Presets = p
	}
}

// WithReducers sets the flatten reducer registry.
func WithReducers(r *flatten.Registry) Option {
	return func(e *Engine) {
		e.Reducers = r
	}
}

// WithState sets the persistent jump state, letting one session span several
// engines.
func WithState(s *jump.State) Option {
	return func(e *Engine) {
		e.State = s
	}
}

// WithLogger sets the logger.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.Logger = lgr
	}
}

// New creates an Engine with defaults: built-in presets and reducers, fresh
// jump state, no resolver, no solver.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{
		Presets:  jump.DefaultPresets(),
		Reducers: flatten.NewRegistry(),
		State:    jump.NewState(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.State == nil {
		engine.State = jump.NewState()
	}
	return engine, nil
}

// LoadFile reads a file through the shared loader.
func LoadFile(path string, opts loader.Options) (*loader.Source, error) {
	return loader.LoadFile(path, opts)
}

// LoadString loads in-memory input through the shared loader.
func LoadString(input string, opts loader.Options) (*loader.Source, error) {
	return loader.LoadString(input, opts)
}

// FilterList projects rows and columns out of a table: row selection, filter
// expression with the n counter, column projection.
func (e *Engine) FilterList(t table.Table, opts filter.Options) (table.Table, error) {
	return filter.List(t, opts)
}

// MergeNamed fetches the named tables through the resolver and concatenates
// them vertically, optionally injecting a provenance column.
func (e *Engine) MergeNamed(refs []string, placement filter.NamesCol) (table.Table, error) {
	if e == nil || e.Resolver == nil {
		return table.Table{}, fmt.Errorf("no table resolver configured")
	}
	return filter.MergeNamed(e.Resolver, refs, placement, "")
}

// Run executes a full dynamic-block parameter set: merge the named sources,
// then filter.
func (e *Engine) Run(p filter.Params) (table.Table, error) {
	if e == nil || e.Resolver == nil {
		return table.Table{}, fmt.Errorf("no table resolver configured")
	}
	return filter.Run(e.Resolver, p)
}

// Flatten collapses nrows cells in ncols columns at the coordinate into
// single cells using the named reducer, repeated reps times downward.
func (e *Engine) Flatten(t *table.Table, at table.Coordinate, nrows, ncols int, reducer string, reps int) error {
	red, err := e.Reducers.Resolve(reducer)
	if err != nil {
		return err
	}
	return flatten.Columns(t, at, nrows, ncols, red, reps)
}

// NarrowColumn word-wraps one column to width, inserting continuation rows.
func (e *Engine) NarrowColumn(t *table.Table, col, width int, separators bool) error {
	return narrow.Column(t, col, width, separators)
}

// NarrowTable fits the whole table into a width budget by delegating the
// column-width assignment to the external solver.
func (e *Engine) NarrowTable(ctx context.Context, t *table.Table, opts narrow.Options) error {
	var solver narrow.Solver
	if e != nil {
		solver = e.Solver
	}
	return narrow.Table(ctx, t, solver, opts)
}

// Transpose swaps rows and columns, dropping separators.
func (e *Engine) Transpose(t table.Table) (table.Table, error) {
	return t.Transpose()
}

// HConcat concatenates tables side by side, padding short ones with pad rows.
func (e *Engine) HConcat(tables []table.Table, pad string) (table.Table, error) {
	return table.HConcat(tables, pad)
}

// VConcat stacks tables, right-padding narrow rows with pad.
func (e *Engine) VConcat(tables []table.Table, pad string) (table.Table, error) {
	return table.VConcat(tables, pad)
}

// Jump moves from start through the table until cond holds, in the given
// direction, stepping steps matches forward (negative steps invert the
// direction). Empty cond or dir fall back to the persisted state; the chosen
// pair is persisted for the next call.
func (e *Engine) Jump(t *table.Table, start table.Coordinate, steps int, cond, dir string) (table.Coordinate, error) {
	eng, err := jump.New(t, e.State, e.Presets, e.Reducers)
	if err != nil {
		return start, err
	}
	return eng.Next(start, steps, cond, dir)
}

// UpdateBlocks rewrites every dynamic block in the document, layering each
// block's parameters over the document properties and the given defaults.
func (e *Engine) UpdateBlocks(doc *document.Document, defaults filter.Params) (int, error) {
	if doc == nil {
		return 0, fmt.Errorf("no document loaded")
	}
	return doc.UpdateBlocks(defaults)
}
