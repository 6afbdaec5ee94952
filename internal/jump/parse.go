package jump

import (
	"fmt"
	"strconv"
	"strings"
)

// Syntax nodes produced by parseCondition. Structural heads are recognized
// here; every other leaf stays an opaque expression and is compiled against
// the cell environment later.
type node interface{}

// regexNode is a fully-quoted condition: does the current cell match.
type regexNode struct {
	pattern string
}

// matchNode is match(pattern) or match(pattern, lines, cols): does the cell
// at the relative offset match.
type matchNode struct {
	pattern string
	dl, dc  int
}

// gotoNode is cell(L, C), line(L) or col(C): a predicate satisfied exactly at
// the target coordinate, so the traversal reaches it as a direct jump. An
// omitted axis defaults to the invocation's start coordinate.
type gotoNode struct {
	line, col       int
	hasLine, hasCol bool
}

type andNode struct {
	kids []node
}

type orNode struct {
	kids []node
}

type notNode struct {
	kid node
}

// seqNode is seq(cond, ...): a cyclic sequence selecting one child per
// invocation via an index persisted in the session state.
type seqNode struct {
	kids []node
}

// identNode is a bare name: a preset when one is registered under it,
// otherwise compiled as an expression leaf.
type identNode struct {
	name string
}

type exprNode struct {
	src string
}

// parseCondition reads one condition. In order: a fully-quoted string is a
// current-cell regex; match/cell/line/col/and/or/not/seq calls spanning the
// whole input are structural; a bare identifier is a preset name; anything
// else is an expression leaf.
func parseCondition(src string) (node, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return nil, &ParseError{Fragment: src, Reason: "empty condition"}
	}
	if pat, ok := wholeQuote(s); ok {
		return regexNode{pattern: pat}, nil
	}
	if head, args, ok := wholeCall(s); ok {
		switch head {
		case "match":
			return parseMatch(s, args)
		case "cell":
			return parseCell(s, args)
		case "line":
			return parseAxis(s, args, true)
		case "col":
			return parseAxis(s, args, false)
		case "and", "or", "seq":
			return parseList(head, s, args)
		case "not":
			parts, err := splitTop(args)
			if err != nil {
				return nil, &ParseError{Fragment: s, Reason: err.Error()}
			}
			if len(parts) != 1 {
				return nil, &ParseError{Fragment: s, Reason: "not takes exactly one condition"}
			}
			kid, err := parseCondition(parts[0])
			if err != nil {
				return nil, err
			}
			return notNode{kid: kid}, nil
		}
	}
	if isIdent(s) {
		return identNode{name: s}, nil
	}
	return exprNode{src: s}, nil
}

func parseMatch(whole, args string) (node, error) {
	parts, err := splitTop(args)
	if err != nil {
		return nil, &ParseError{Fragment: whole, Reason: err.Error()}
	}
	if len(parts) != 1 && len(parts) != 3 {
		return nil, &ParseError{Fragment: whole, Reason: "match takes (pattern) or (pattern, lines, cols)"}
	}
	pat := parts[0]
	if inner, ok := wholeQuote(pat); ok {
		pat = inner
	}
	m := matchNode{pattern: pat}
	if len(parts) == 3 {
		dl, err1 := strconv.Atoi(parts[1])
		dc, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil {
			return nil, &ParseError{Fragment: whole, Reason: "match offsets must be integers"}
		}
		m.dl, m.dc = dl, dc
	}
	return m, nil
}

func parseCell(whole, args string) (node, error) {
	parts, err := splitTop(args)
	if err != nil {
		return nil, &ParseError{Fragment: whole, Reason: err.Error()}
	}
	if len(parts) != 2 {
		return nil, &ParseError{Fragment: whole, Reason: "cell takes (line, col)"}
	}
	l, err1 := strconv.Atoi(parts[0])
	c, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, &ParseError{Fragment: whole, Reason: "cell coordinates must be integers"}
	}
	return gotoNode{line: l, col: c, hasLine: true, hasCol: true}, nil
}

func parseAxis(whole, args string, isLine bool) (node, error) {
	parts, err := splitTop(args)
	if err != nil {
		return nil, &ParseError{Fragment: whole, Reason: err.Error()}
	}
	if len(parts) != 1 {
		return nil, &ParseError{Fragment: whole, Reason: "takes one integer"}
	}
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, &ParseError{Fragment: whole, Reason: "index must be an integer"}
	}
	if isLine {
		return gotoNode{line: v, hasLine: true}, nil
	}
	return gotoNode{col: v, hasCol: true}, nil
}

func parseList(head, whole, args string) (node, error) {
	parts, err := splitTop(args)
	if err != nil {
		return nil, &ParseError{Fragment: whole, Reason: err.Error()}
	}
	kids := make([]node, 0, len(parts))
	for _, p := range parts {
		kid, err := parseCondition(p)
		if err != nil {
			return nil, err
		}
		kids = append(kids, kid)
	}
	switch head {
	case "and":
		return andNode{kids: kids}, nil
	case "or":
		return orNode{kids: kids}, nil
	}
	return seqNode{kids: kids}, nil
}

// wholeQuote reports whether s is a single double-quoted string and returns
// its content. Only \" and \\ are unescaped; other escapes pass through so
// regex classes like \d survive unharmed.
func wholeQuote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' {
		return "", false
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			next := s[i+1]
			if next != '"' && next != '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(next)
			i += 2
			continue
		}
		if ch == '"' {
			if i == len(s)-1 {
				return b.String(), true
			}
			return "", false
		}
		b.WriteByte(ch)
		i++
	}
	return "", false
}

// wholeCall splits s of the shape head(args) where the parenthesis closes at
// the very end. Anything else is not structural.
func wholeCall(s string) (head, args string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || s[len(s)-1] != ')' || !isIdent(s[:open]) {
		return "", "", false
	}
	if !balancedToEnd(s[open:]) {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// balancedToEnd reports whether the bracket opening s closes exactly at its
// last byte, respecting quoted strings.
func balancedToEnd(s string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return ch == ')' && i == len(s)-1
			}
		}
	}
	return false
}

// splitTop splits s on top-level commas, honoring nested brackets and quoted
// strings. Pieces are trimmed; an empty piece is an error.
func splitTop(s string) ([]string, error) {
	var parts []string
	depth := 0
	var quote byte
	mark := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q", string(ch))
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[mark:i])
				mark = i + 1
			}
		}
	}
	if depth != 0 || quote != 0 {
		return nil, fmt.Errorf("unbalanced brackets or quotes")
	}
	parts = append(parts, s[mark:])
	out := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty argument")
		}
		out[i] = p
	}
	return out, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
