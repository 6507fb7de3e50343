package printing

import (
	"fmt"
	"strings"
)

const (
	blockEach = "each"
	blockIf   = "if"
)

// node is an element of a parsed document template
type node interface{}

type textNode struct {
	text string
}

type varNode struct {
	name string
}

type callNode struct {
	call *callExpr
}

type blockNode struct {
	kind string // blockEach or blockIf
	name string
	line int
	body []node
}

// Template is a parsed document template ready to execute
type Template struct {
	nodes []node
}

// SyntaxProblem is one defect found while parsing a template
type SyntaxProblem struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (p SyntaxProblem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

// TemplateSyntaxError lists every syntax problem found in a template
type TemplateSyntaxError struct {
	Problems []SyntaxProblem
}

func (e *TemplateSyntaxError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return "template syntax error: " + strings.Join(msgs, "; ")
}

// ParseTemplate parses content. Parsing continues past errors so that the
// returned *TemplateSyntaxError lists all of them.
func ParseTemplate(content string) (*Template, error) {
	p := &parser{}
	p.parse(lexTemplate(content))
	if len(p.problems) > 0 {
		return nil, &TemplateSyntaxError{Problems: p.problems}
	}
	return &Template{nodes: p.root}, nil
}

type parser struct {
	root     []node
	stack    []*blockNode
	problems []SyntaxProblem
}

func (p *parser) fail(line int, format string, args ...any) {
	p.problems = append(p.problems, SyntaxProblem{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) emit(n node) {
	if len(p.stack) == 0 {
		p.root = append(p.root, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.body = append(top.body, n)
}

func (p *parser) parse(tokens []token) {
	for _, tok := range tokens {
		if tok.fault != "" {
			p.fail(tok.line, "%s", tok.fault)
			// keep structure balanced for later diagnostics
			if tok.kind == tokOpen && (tok.text == blockEach || tok.text == blockIf) {
				p.stack = append(p.stack, &blockNode{kind: tok.text, line: tok.line})
			}
			continue
		}

		switch tok.kind {
		case tokText:
			p.emit(&textNode{text: tok.text})
		case tokVar:
			p.emit(&varNode{name: tok.text})
		case tokCall:
			if problem := checkCall(tok.call); problem != "" {
				p.fail(tok.line, "%s", problem)
				continue
			}
			p.emit(&callNode{call: tok.call})
		case tokOpen:
			p.open(tok)
		case tokClose:
			p.close(tok)
		}
	}

	for i := len(p.stack) - 1; i >= 0; i-- {
		b := p.stack[i]
		p.fail(b.line, "unclosed {{#%s %s}}", b.kind, b.name)
	}
}

func (p *parser) open(tok token) {
	for _, b := range p.stack {
		if b.kind == tok.text {
			p.fail(tok.line, "nested {{#%s}} blocks are not supported", tok.text)
			break
		}
	}
	b := &blockNode{kind: tok.text, name: tok.arg, line: tok.line}
	p.emit(b)
	p.stack = append(p.stack, b)
}

func (p *parser) close(tok token) {
	if len(p.stack) == 0 {
		p.fail(tok.line, "unexpected {{/%s}}", tok.text)
		return
	}
	top := p.stack[len(p.stack)-1]
	if top.kind != tok.text {
		p.fail(tok.line, "unexpected {{/%s}}, expected {{/%s}}", tok.text, top.kind)
	}
	p.stack = p.stack[:len(p.stack)-1]
}

// checkCall verifies helper names and arity recursively
func checkCall(c *callExpr) string {
	h, ok := helpers[c.name]
	if !ok {
		return "unknown helper " + c.name
	}
	if len(c.args) != h.arity {
		return fmt.Sprintf("helper %s takes %d argument(s), got %d", c.name, h.arity, len(c.args))
	}
	for _, a := range c.args {
		if a.call != nil {
			if problem := checkCall(a.call); problem != "" {
				return problem
			}
		}
	}
	return ""
}
