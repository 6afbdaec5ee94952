package celenv

import (
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
)

// Functions discovers the callable surface of an environment and returns
// formatted suggestions, one per overload, as "name() - usage". The bare
// name leads so completion UIs can insert it; hints (from config examples)
// append after " | ". Operator-style internals are filtered out.
func Functions(env *cel.Env, hints map[string]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 64)

	for _, fn := range env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			entry := fn.Name() + "() - " + overloadUsage(fn.Name(), o)
			if hint, ok := hints[fn.Name()]; ok {
				entry += " | " + hint
			}
			if seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
	}
	for _, m := range env.Macros() {
		name := m.Function()
		if isOperator(name) {
			continue
		}
		entry := name + "() - CEL macro"
		if hint, ok := hints[name]; ok {
			entry += " | " + hint
		}
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}

	sort.Strings(out)
	return out
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "@in", "_in_":
		return true
	}
	return false
}

func overloadUsage(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	if o.IsMemberFunction() && len(params) > 0 {
		return typeLabel(params[0]) + "." + name +
			"(" + paramList(params[1:]) + ")" + resultLabel(o.ResultType())
	}
	return name + "(" + paramList(params) + ")" + resultLabel(o.ResultType())
}

func paramList(params []*types.Type) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeLabel(p)
	}
	return strings.Join(parts, ", ")
}

func resultLabel(t *types.Type) string {
	if t == nil {
		return ""
	}
	return " -> " + typeLabel(t)
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}
