// Package config holds the file-backed configuration: the external optimizer
// command, user jump presets, user reducers, and dynamic-block filter
// defaults. Built-in defaults are embedded; a user file merges over them
// field by field.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tabx/internal/filter"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration text.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Config is the file schema.
type Config struct {
	Solver   Solver    `yaml:"solver"`
	Presets  []Preset  `yaml:"presets"`
	Reducers []Reducer `yaml:"reducers"`
	Filter   Filter    `yaml:"filter"`
}

// Solver configures the external width optimizer.
type Solver struct {
	Command        []string `yaml:"command"`
	TimeoutSeconds *int     `yaml:"timeout_seconds"`
	Marker         string   `yaml:"marker"`
}

// Timeout returns the configured deadline, zero when unset so the solver
// applies its own default.
func (s Solver) Timeout() time.Duration {
	if s.TimeoutSeconds == nil {
		return 0
	}
	return time.Duration(*s.TimeoutSeconds) * time.Second
}

// Preset is a user jump preset.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Condition   string `yaml:"condition"`
}

// Reducer is a user flatten reducer, an expression over the cell list.
type Reducer struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Expr        string `yaml:"expr"`
}

// Filter carries dynamic-block defaults.
type Filter struct {
	Defaults string `yaml:"defaults"`
}

// Load returns the effective configuration: embedded defaults, with the user
// file merged over them when path is non-empty.
func Load(path string) (Config, error) {
	var base Config
	if err := yaml.Unmarshal(defaultYAML, &base); err != nil {
		return Config{}, fmt.Errorf("decode embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		var over Config
		if err := yaml.Unmarshal(data, &over); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
		base = Merge(base, over)
	}
	if err := base.Validate(); err != nil {
		return Config{}, err
	}
	return base, nil
}

// Merge overlays override on base. Scalar fields inherit when zero; presets
// and reducers merge by name, with override entries replacing same-named base
// entries and appending otherwise.
func Merge(base, override Config) Config {
	out := base
	if len(override.Solver.Command) > 0 {
		out.Solver.Command = override.Solver.Command
	}
	if override.Solver.TimeoutSeconds != nil {
		out.Solver.TimeoutSeconds = override.Solver.TimeoutSeconds
	}
	if override.Solver.Marker != "" {
		out.Solver.Marker = override.Solver.Marker
	}
	out.Presets = mergePresets(out.Presets, override.Presets)
	out.Reducers = mergeReducers(out.Reducers, override.Reducers)
	if override.Filter.Defaults != "" {
		out.Filter.Defaults = override.Filter.Defaults
	}
	return out
}

func mergePresets(base, override []Preset) []Preset {
	out := make([]Preset, len(base))
	copy(out, base)
	for _, p := range override {
		replaced := false
		for i := range out {
			if out[i].Name == p.Name {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

func mergeReducers(base, override []Reducer) []Reducer {
	out := make([]Reducer, len(base))
	copy(out, base)
	for _, r := range override {
		replaced := false
		for i := range out {
			if out[i].Name == r.Name {
				out[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, r)
		}
	}
	return out
}

// Validate rejects configurations that cannot take effect.
func (c Config) Validate() error {
	if c.Solver.TimeoutSeconds != nil && *c.Solver.TimeoutSeconds < 0 {
		return fmt.Errorf("solver.timeout_seconds must be non-negative, got %d", *c.Solver.TimeoutSeconds)
	}
	for _, p := range c.Presets {
		if p.Name == "" || p.Condition == "" {
			return fmt.Errorf("preset %q needs a name and a condition", p.Name)
		}
	}
	for _, r := range c.Reducers {
		if r.Name == "" || r.Expr == "" {
			return fmt.Errorf("reducer %q needs a name and an expression", r.Name)
		}
	}
	if _, err := filter.ParseParams(c.Filter.Defaults); err != nil {
		return fmt.Errorf("filter.defaults: %w", err)
	}
	return nil
}

// FilterDefaults parses the dynamic-block defaults string. Load has already
// validated it, so errors only surface for hand-built configs.
func (c Config) FilterDefaults() (filter.Params, error) {
	return filter.ParseParams(c.Filter.Defaults)
}
