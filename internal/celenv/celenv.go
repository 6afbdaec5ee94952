// Package celenv builds the CEL environments the table engine evaluates
// expressions in. There are three, with deliberately disjoint registries:
// the row environment (filtering: per-column bindings and pure value
// helpers), the cell environment (cursor navigation: relative accessors,
// mutators, persistent state), and the reducer environment (flattening:
// the collected cell list). A filter expression that names a navigation
// function fails to compile, and vice versa; the separation is enforced by
// environment construction rather than by documentation.
package celenv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// extensionLibs enables the standard CEL extension libraries so discovery
// surfaces richer functions alongside the engine's own registry.
func extensionLibs() []cel.EnvOption {
	return []cel.EnvOption{
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
		cel.CrossTypeNumericComparisons(true),
	}
}

// Truthy maps a CEL result onto the engine's match semantics: everything is
// a match except false and null. Zero and the empty string count as matches;
// absent cells are bound to null and therefore do not.
func Truthy(v ref.Val) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case types.Bool:
		return bool(t)
	case types.Null:
		return false
	}
	return true
}

// ToGo converts a CEL value to a native Go value, recursing into lists and
// maps. Unconvertible values fall back to Value().
func ToGo(v ref.Val) interface{} {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case types.Bool:
		return bool(t)
	case types.Int:
		return int64(t)
	case types.Uint:
		return uint64(t)
	case types.Double:
		return float64(t)
	case types.String:
		return string(t)
	case types.Bytes:
		return []byte(t)
	case types.Null:
		return nil
	}
	inner := v.Value()
	switch iv := inner.(type) {
	case []ref.Val:
		out := make([]interface{}, len(iv))
		for i, e := range iv {
			out[i] = ToGo(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(iv))
		for i, e := range iv {
			if rv, ok := e.(ref.Val); ok {
				out[i] = ToGo(rv)
			} else {
				out[i] = e
			}
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]interface{}, len(iv))
		for k, e := range iv {
			out[fmt.Sprintf("%v", ToGo(k))] = ToGo(e)
		}
		return out
	}
	return inner
}

// Stringify renders a CEL result as cell text: strings pass through, null
// becomes the empty cell, numbers use the shortest round-trip form.
func Stringify(v ref.Val) string {
	switch g := ToGo(v).(type) {
	case nil:
		return ""
	case string:
		return g
	case float64:
		return strconv.FormatFloat(g, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(g, 10)
	case uint64:
		return strconv.FormatUint(g, 10)
	case bool:
		return strconv.FormatBool(g)
	default:
		return fmt.Sprintf("%v", g)
	}
}

// argString reads any scalar CEL argument as cell text. Null (an absent
// cell) reads as the empty string.
func argString(v ref.Val) string {
	switch t := v.(type) {
	case types.String:
		return string(t)
	case types.Null:
		return ""
	case types.Int:
		return strconv.FormatInt(int64(t), 10)
	case types.Uint:
		return strconv.FormatUint(uint64(t), 10)
	case types.Double:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case types.Bool:
		return strconv.FormatBool(bool(t))
	}
	return fmt.Sprintf("%v", v.Value())
}

// parseNumber is the soft numeric parse shared by the c<N>n bindings and
// the numeric tier of between.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

var stampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseStamp recognizes the supported timestamp grammar: bare dates and
// date-times, RFC3339, and org-style active/inactive stamps whose brackets
// and weekday tokens are stripped before parsing.
func parseStamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if n := len(s); n >= 2 &&
		((s[0] == '<' && s[n-1] == '>') || (s[0] == '[' && s[n-1] == ']')) {
		s = strings.TrimSpace(s[1 : n-1])
	}
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if f[0] >= '0' && f[0] <= '9' {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return time.Time{}, false
	}
	s = strings.Join(kept, " ")
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// betweenValues implements the three-tier dispatch: numeric when either
// bound parses as a plain number, timestamp when both bounds parse under
// the stamp grammar, lexicographic otherwise. Bounds are inclusive in all
// three tiers. In the numeric tier any operand that fails to parse makes
// the comparison false.
func betweenValues(v, lo, hi string) bool {
	if _, ok := parseNumber(lo); ok {
		return betweenNumeric(v, lo, hi)
	}
	if _, ok := parseNumber(hi); ok {
		return betweenNumeric(v, lo, hi)
	}
	tlo, lok := parseStamp(lo)
	thi, hok := parseStamp(hi)
	if lok && hok {
		tv, ok := parseStamp(v)
		if !ok {
			return false
		}
		return !tv.Before(tlo) && !tv.After(thi)
	}
	return lo <= v && v <= hi
}

func betweenNumeric(v, lo, hi string) bool {
	fv, okv := parseNumber(v)
	flo, oklo := parseNumber(lo)
	fhi, okhi := parseNumber(hi)
	if !okv || !oklo || !okhi {
		return false
	}
	return flo <= fv && fv <= fhi
}

// valueFuncs declares the pure value helpers available in row and reducer
// contexts: between, num, blank. They inspect cell text only and never
// mutate, so they stay out of the navigation registry.
func valueFuncs() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("between",
			cel.Overload("between_dyn_dyn_dyn",
				[]*cel.Type{cel.DynType, cel.DynType, cel.DynType},
				cel.BoolType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					v := argString(args[0])
					lo := argString(args[1])
					hi := argString(args[2])
					return types.Bool(betweenValues(v, lo, hi))
				}),
			),
		),
		cel.Function("num",
			cel.Overload("num_dyn",
				[]*cel.Type{cel.DynType},
				cel.DoubleType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					f, ok := parseNumber(argString(args[0]))
					if !ok {
						return types.Double(math.NaN())
					}
					return types.Double(f)
				}),
			),
		),
		cel.Function("blank",
			cel.Overload("blank_dyn",
				[]*cel.Type{cel.DynType},
				cel.BoolType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.Bool(strings.TrimSpace(argString(args[0])) == "")
				}),
			),
		),
	}
}
