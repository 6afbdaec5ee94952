package jump

import "sort"

// Preset is a named, reusable condition.
type Preset struct {
	Name        string
	Description string
	Condition   string
}

// Presets maps names appearing in conditions to their bound expressions.
// Resolution is recursive, so a preset's condition may name other presets.
type Presets struct {
	byName map[string]Preset
}

// DefaultPresets returns the built-in preset table.
func DefaultPresets() *Presets {
	p := &Presets{byName: make(map[string]Preset)}
	for _, b := range builtinPresets() {
		p.byName[b.Name] = b
	}
	return p
}

// Register adds or replaces a preset. Config-supplied presets arrive here.
func (p *Presets) Register(pr Preset) {
	p.byName[pr.Name] = pr
}

// Lookup returns the preset registered under name.
func (p *Presets) Lookup(name string) (Preset, bool) {
	pr, ok := p.byName[name]
	return pr, ok
}

// List returns all presets sorted by name.
func (p *Presets) List() []Preset {
	out := make([]Preset, 0, len(p.byName))
	for _, pr := range p.byName {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func builtinPresets() []Preset {
	return []Preset{
		{Name: "empty", Description: "cell is blank", Condition: `field.trim() == ""`},
		{Name: "nonempty", Description: "cell has content", Condition: `field.trim() != ""`},
		{Name: "number", Description: "cell is a plain number", Condition: `"^[+-]?[0-9]*\.?[0-9]+$"`},
		{Name: "hline", Description: "first cell row below a separator", Condition: `hline_above()`},
		{Name: "firstcol", Description: "first column", Condition: `col == 1`},
		{Name: "lastcol", Description: "last column", Condition: `col == ncols`},
		{Name: "firstrow", Description: "first data row", Condition: `line == 1`},
		{Name: "lastrow", Description: "last data row", Condition: `line == nlines`},
		{Name: "dup", Description: "cell equals the cell above", Condition: `line > 1 && field == field(-1, 0)`},
	}
}
