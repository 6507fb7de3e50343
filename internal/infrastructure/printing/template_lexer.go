package printing

import (
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokVar
	tokOpen
	tokClose
	tokCall
)

// token is one lexical element of a document template
type token struct {
	kind  tokenKind
	line  int
	text  string // tokText: literal; tokVar: name; tokOpen/tokClose: block kind
	arg   string // tokOpen: block argument
	call  *callExpr
	raw   string // original tag including braces
	fault string // non-empty when the tag is malformed
}

// lexTemplate splits content into text and tag tokens. A "{{" without a
// matching "}}" produces a fault token; the remainder is kept as text.
func lexTemplate(content string) []token {
	var tokens []token
	line := 1
	rest := content

	for len(rest) > 0 {
		open := strings.Index(rest, "{{")
		if open < 0 {
			tokens = append(tokens, token{kind: tokText, line: line, text: rest})
			break
		}
		if open > 0 {
			tokens = append(tokens, token{kind: tokText, line: line, text: rest[:open]})
			line += strings.Count(rest[:open], "\n")
			rest = rest[open:]
		}

		// "{{{name}}}" is the token {{name}} wrapped in literal braces
		if len(rest) > 2 && rest[2] == '{' {
			tokens = append(tokens, token{kind: tokText, line: line, text: "{"})
			rest = rest[1:]
			continue
		}

		end := strings.Index(rest[2:], "}}")
		if end < 0 {
			tokens = append(tokens, token{kind: tokText, line: line, text: rest, fault: "unclosed tag"})
			break
		}
		raw := rest[:end+4]
		tokens = append(tokens, lexTag(raw, line))
		line += strings.Count(raw, "\n")
		rest = rest[end+4:]
	}

	return tokens
}

// lexTag classifies a single {{...}} tag
func lexTag(raw string, line int) token {
	body := raw[2 : len(raw)-2]
	tok := token{line: line, raw: raw}

	switch {
	case strings.HasPrefix(body, "#"):
		fields := strings.Fields(body[1:])
		tok.kind = tokOpen
		switch {
		case len(fields) == 0:
			tok.fault = "block tag without a name"
		case fields[0] != blockEach && fields[0] != blockIf:
			tok.text = fields[0]
			tok.fault = "unknown block {{#" + fields[0] + "}}"
		case len(fields) != 2 || !isIdentifier(fields[1]):
			tok.text = fields[0]
			tok.fault = "{{#" + fields[0] + "}} takes exactly one variable name"
		default:
			tok.text = fields[0]
			tok.arg = fields[1]
		}
		return tok

	case strings.HasPrefix(body, "/"):
		tok.kind = tokClose
		tok.text = strings.TrimSpace(body[1:])
		if tok.text != blockEach && tok.text != blockIf {
			tok.fault = "unknown closing tag " + raw
		}
		return tok

	case isIdentifier(body):
		tok.kind = tokVar
		tok.text = body
		return tok

	case len(body) > 0 && isIdentStart(body[0]) && strings.ContainsAny(strings.TrimSpace(body), " \t("):
		call, err := parseCall(body)
		tok.kind = tokCall
		tok.call = call
		if err != "" {
			tok.fault = err
		}
		return tok
	}

	// Anything else ({{ name }}, {{a.b}}, {{}}) is not template syntax and
	// is emitted unchanged.
	tok.kind = tokText
	tok.text = raw
	return tok
}

// callExpr is a helper invocation: name arg arg...
type callExpr struct {
	name string
	args []argExpr
}

// argExpr is a helper argument: a variable, a number literal or a nested call
type argExpr struct {
	ident  string
	number string
	call   *callExpr
}

// parseCall parses "helper arg ..." where an argument is a variable name, a
// number or a parenthesized nested call. It returns a fault message on error.
func parseCall(src string) (*callExpr, string) {
	p := &callParser{items: splitCallItems(src)}
	call, fault := p.call()
	if fault != "" {
		return nil, fault
	}
	if p.pos != len(p.items) {
		return nil, "unexpected " + p.items[p.pos] + " in helper call"
	}
	return call, ""
}

type callParser struct {
	items []string
	pos   int
}

func (p *callParser) next() (string, bool) {
	if p.pos >= len(p.items) {
		return "", false
	}
	s := p.items[p.pos]
	p.pos++
	return s, true
}

func (p *callParser) peek() string {
	if p.pos >= len(p.items) {
		return ""
	}
	return p.items[p.pos]
}

func (p *callParser) call() (*callExpr, string) {
	name, ok := p.next()
	if !ok || !isIdentifier(name) {
		return nil, "helper call without a helper name"
	}
	c := &callExpr{name: name}
	for {
		item := p.peek()
		switch {
		case item == "" || item == ")":
			if len(c.args) == 0 {
				return nil, "helper " + name + " called without arguments"
			}
			return c, ""
		case item == "(":
			p.pos++
			inner, fault := p.call()
			if fault != "" {
				return nil, fault
			}
			if closing, _ := p.next(); closing != ")" {
				return nil, "missing ) in helper call"
			}
			c.args = append(c.args, argExpr{call: inner})
		case isIdentifier(item):
			p.pos++
			c.args = append(c.args, argExpr{ident: item})
		case isNumber(item):
			p.pos++
			c.args = append(c.args, argExpr{number: item})
		default:
			return nil, "invalid helper argument " + item
		}
	}
}

// splitCallItems splits helper source on whitespace, keeping parentheses as items
func splitCallItems(src string) []string {
	var items []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			items = append(items, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch r {
		case ' ', '\t', '\n', '\r':
			flush()
		case '(', ')':
			flush()
			items = append(items, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return items
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		b := s[i]
		if !isIdentStart(b) && (b < '0' || b > '9') {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	digits := 0
	dot := false
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b >= '0' && b <= '9':
			digits++
		case b == '.' && !dot:
			dot = true
		case b == '-' && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}
