package flatten

import (
	"sort"
	"strconv"
	"strings"

	"github.com/oakwood-commons/tabx/internal/celenv"
)

// Reducer is a named reduction from the collected cells to the replacement
// cell text.
type Reducer struct {
	Name        string
	Description string
	Apply       func(cells []string) (string, error)
}

// Registry maps reducer names to implementations. Names that match no entry
// resolve as CEL reduction expressions over the variable cells, so custom
// reductions need no Go code.
type Registry struct {
	byName map[string]Reducer
	env    *celenv.ReduceEnv
}

// NewRegistry returns a registry holding the built-in reducers.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Reducer)}
	for _, red := range builtinReducers() {
		r.byName[red.Name] = red
	}
	return r
}

// Register adds or replaces a reducer.
func (r *Registry) Register(red Reducer) {
	r.byName[red.Name] = red
}

// RegisterExpr compiles src in the reducer environment and registers the
// program under name. Config-supplied reducers arrive through here, so a
// malformed expression is rejected at configuration time.
func (r *Registry) RegisterExpr(name, src, description string) error {
	red, err := r.compile(src)
	if err != nil {
		return err
	}
	red.Name = name
	if description != "" {
		red.Description = description
	}
	r.byName[name] = red
	return nil
}

// Lookup returns the reducer registered under name.
func (r *Registry) Lookup(name string) (Reducer, bool) {
	red, ok := r.byName[name]
	return red, ok
}

// List returns all registered reducers sorted by name.
func (r *Registry) List() []Reducer {
	out := make([]Reducer, 0, len(r.byName))
	for _, red := range r.byName {
		out = append(out, red)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve returns the reducer for src: a registry entry when the name
// matches, otherwise src compiled as a reduction expression. An empty src
// means join.
func (r *Registry) Resolve(src string) (Reducer, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		src = "join"
	}
	if red, ok := r.byName[src]; ok {
		return red, nil
	}
	return r.compile(src)
}

func (r *Registry) compile(src string) (Reducer, error) {
	if r.env == nil {
		env, err := celenv.NewReduceEnv()
		if err != nil {
			return Reducer{}, err
		}
		r.env = env
	}
	prg, err := r.env.Compile(src)
	if err != nil {
		return Reducer{}, err
	}
	return Reducer{
		Name:        src,
		Description: "reduction expression over cells",
		Apply:       prg.Eval,
	}, nil
}

func pure(fn func([]string) string) func([]string) (string, error) {
	return func(cells []string) (string, error) { return fn(cells), nil }
}

func builtinReducers() []Reducer {
	return []Reducer{
		{Name: "join", Description: "non-blank cells joined with a space", Apply: pure(joinCells)},
		{Name: "concat", Description: "cells concatenated without a separator", Apply: pure(concatCells)},
		{Name: "sum", Description: "sum of the numeric cells", Apply: pure(sumCells)},
		{Name: "mean", Description: "mean of the numeric cells", Apply: pure(meanCells)},
		{Name: "min", Description: "smallest numeric cell", Apply: pure(minCells)},
		{Name: "max", Description: "largest numeric cell", Apply: pure(maxCells)},
		{Name: "count", Description: "number of non-blank cells", Apply: pure(countCells)},
		{Name: "first", Description: "first non-blank cell", Apply: pure(firstCell)},
		{Name: "last", Description: "last non-blank cell", Apply: pure(lastCell)},
		{Name: "uniq", Description: "non-blank cells deduplicated, joined with a space", Apply: pure(uniqCells)},
	}
}

func nonBlank(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// numbers parses soft: non-numeric cells are skipped, not errors.
func numbers(cells []string) []float64 {
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if f, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinCells(cells []string) string {
	return strings.Join(nonBlank(cells), " ")
}

func concatCells(cells []string) string {
	return strings.Join(cells, "")
}

func sumCells(cells []string) string {
	nums := numbers(cells)
	if len(nums) == 0 {
		return ""
	}
	sum := 0.0
	for _, f := range nums {
		sum += f
	}
	return formatNumber(sum)
}

func meanCells(cells []string) string {
	nums := numbers(cells)
	if len(nums) == 0 {
		return ""
	}
	sum := 0.0
	for _, f := range nums {
		sum += f
	}
	return formatNumber(sum / float64(len(nums)))
}

func minCells(cells []string) string {
	nums := numbers(cells)
	if len(nums) == 0 {
		return ""
	}
	m := nums[0]
	for _, f := range nums[1:] {
		if f < m {
			m = f
		}
	}
	return formatNumber(m)
}

func maxCells(cells []string) string {
	nums := numbers(cells)
	if len(nums) == 0 {
		return ""
	}
	m := nums[0]
	for _, f := range nums[1:] {
		if f > m {
			m = f
		}
	}
	return formatNumber(m)
}

func countCells(cells []string) string {
	return strconv.Itoa(len(nonBlank(cells)))
}

func firstCell(cells []string) string {
	nb := nonBlank(cells)
	if len(nb) == 0 {
		return ""
	}
	return nb[0]
}

func lastCell(cells []string) string {
	nb := nonBlank(cells)
	if len(nb) == 0 {
		return ""
	}
	return nb[len(nb)-1]
}

func uniqCells(cells []string) string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(cells))
	for _, c := range nonBlank(cells) {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return strings.Join(out, " ")
}
