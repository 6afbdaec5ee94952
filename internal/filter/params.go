package filter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/tabx/pkg/rangespec"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// Params is the dynamic-block configuration record: the recognized options
// of a filter block, parsed from its `:key value` parameter string. The
// record remembers which options the source text actually named, so block
// parameters can overlay inherited document-property defaults key by key.
type Params struct {
	TblNames []string
	Rows     rangespec.Spec
	Cols     rangespec.Spec
	Filter   string
	NoErrors bool
	NamesCol NamesCol

	keys map[string]bool
}

// ParseParams reads a parameter string such as
//
//	:tblnames a b :cols 1-3 :filter "c1n > 4" :noerrors :namescol first
//
// Double-quoted values keep their spaces; a token starting with a colon
// outside quotes begins the next option. Unknown options are rejected.
func ParseParams(s string) (Params, error) {
	toks, err := tokenize(s)
	if err != nil {
		return Params{}, fmt.Errorf("block parameters %q: %v", s, err)
	}
	p := Params{NamesCol: NamesColNone, keys: make(map[string]bool)}
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.quoted || !strings.HasPrefix(t.text, ":") {
			return Params{}, fmt.Errorf("block parameters: expected :option, got %q", t.text)
		}
		key := strings.ToLower(strings.TrimPrefix(t.text, ":"))
		i++
		var vals []token
		for i < len(toks) && (toks[i].quoted || !strings.HasPrefix(toks[i].text, ":")) {
			vals = append(vals, toks[i])
			i++
		}
		if err := p.apply(key, vals); err != nil {
			return Params{}, err
		}
		p.keys[key] = true
	}
	return p, nil
}

func (p *Params) apply(key string, vals []token) error {
	switch key {
	case "tblnames":
		if len(vals) == 0 {
			return fmt.Errorf(":tblnames needs at least one table reference")
		}
		p.TblNames = nil
		for _, v := range vals {
			p.TblNames = append(p.TblNames, v.text)
		}
	case "rows", "cols":
		if len(vals) != 1 {
			return fmt.Errorf(":%s takes one range spec", key)
		}
		spec, err := rangespec.Parse(vals[0].text)
		if err != nil {
			return err
		}
		if key == "rows" {
			p.Rows = spec
		} else {
			p.Cols = spec
		}
	case "filter":
		if len(vals) == 0 {
			return fmt.Errorf(":filter needs an expression")
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.text
		}
		p.Filter = strings.Join(parts, " ")
	case "noerrors":
		switch {
		case len(vals) == 0:
			p.NoErrors = true
		case len(vals) == 1:
			b, err := parseBool(vals[0].text)
			if err != nil {
				return fmt.Errorf(":noerrors: %v", err)
			}
			p.NoErrors = b
		default:
			return fmt.Errorf(":noerrors takes at most one value")
		}
	case "namescol":
		if len(vals) != 1 {
			return fmt.Errorf(":namescol takes one placement")
		}
		nc, err := ParseNamesCol(vals[0].text)
		if err != nil {
			return err
		}
		p.NamesCol = nc
	default:
		return fmt.Errorf("%w :%s", ErrUnknownOption, key)
	}
	return nil
}

// Has reports whether the source text named the option.
func (p Params) Has(key string) bool {
	return p.keys[key]
}

// Merge overlays p on base: options p names win, everything else inherits.
// base typically comes from an enclosing document property; explicit block
// parameters take precedence key by key.
func (p Params) Merge(base Params) Params {
	out := base
	out.keys = make(map[string]bool, len(base.keys)+len(p.keys))
	for k := range base.keys {
		out.keys[k] = true
	}
	for k := range p.keys {
		out.keys[k] = true
	}
	if p.Has("tblnames") {
		out.TblNames = p.TblNames
	}
	if p.Has("rows") {
		out.Rows = p.Rows
	}
	if p.Has("cols") {
		out.Cols = p.Cols
	}
	if p.Has("filter") {
		out.Filter = p.Filter
	}
	if p.Has("noerrors") {
		out.NoErrors = p.NoErrors
	}
	if p.Has("namescol") {
		out.NamesCol = p.NamesCol
	}
	return out
}

// Run executes a dynamic-block query: fetch and merge the named tables, then
// List with the record's selection and filter. With a first/last namescol
// the provenance column is part of the table the filter and col spec see.
func Run(r Resolver, p Params) (table.Table, error) {
	if len(p.TblNames) == 0 {
		return table.Table{}, fmt.Errorf("dynamic block: no :tblnames given")
	}
	merged, err := MergeNamed(r, p.TblNames, p.NamesCol, "")
	if err != nil {
		return table.Table{}, err
	}
	return List(merged, Options{
		Rows:     p.Rows,
		Cols:     p.Cols,
		Filter:   p.Filter,
		NoErrors: p.NoErrors,
	})
}

type token struct {
	text   string
	quoted bool
}

// tokenize splits on whitespace, keeping double-quoted runs together with
// the quotes stripped and \" and \\ unescaped.
func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		ch := s[i]
		if ch == ' ' || ch == '\t' || ch == '\n' {
			i++
			continue
		}
		if ch == '"' {
			var b strings.Builder
			i++
			closed := false
			for i < len(s) {
				c := s[i]
				if c == '\\' && i+1 < len(s) {
					next := s[i+1]
					if next != '"' && next != '\\' {
						b.WriteByte('\\')
					}
					b.WriteByte(next)
					i += 2
					continue
				}
				if c == '"' {
					i++
					closed = true
					break
				}
				b.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quote")
			}
			toks = append(toks, token{text: b.String(), quoted: true})
			continue
		}
		j := i
		for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\n' {
			j++
		}
		toks = append(toks, token{text: s[i:j]})
		i = j
	}
	return toks, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "t", "true", "yes", "1":
		return true, nil
	case "nil", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("want t or nil, got %q", s)
}
