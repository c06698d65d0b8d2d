package passes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrConditionSyntax = errors.New("passes: condition syntax error")

// ConditionSet is the set of feature tokens active for this session.
type ConditionSet map[string]struct{}

func NewConditionSet(tokens ...string) ConditionSet {
	s := make(ConditionSet, len(tokens))
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

func (s ConditionSet) Add(token string) {
	if token != "" {
		s[token] = struct{}{}
	}
}

func (s ConditionSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in lexical order.
func (s ConditionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Upper returns an upper-cased copy, the form shaders see as defines.
func (s ConditionSet) Upper() ConditionSet {
	out := make(ConditionSet, len(s))
	for t := range s {
		out[strings.ToUpper(t)] = struct{}{}
	}
	return out
}

type node interface {
	eval(ConditionSet) bool
}

type tokenNode string

func (n tokenNode) eval(s ConditionSet) bool { return s.Has(string(n)) }

type notNode struct{ x node }

func (n notNode) eval(s ConditionSet) bool { return !n.x.eval(s) }

type andNode []node

func (n andNode) eval(s ConditionSet) bool {
	for _, x := range n {
		if !x.eval(s) {
			return false
		}
	}
	return true
}

type orNode []node

func (n orNode) eval(s ConditionSet) bool {
	for _, x := range n {
		if x.eval(s) {
			return true
		}
	}
	return false
}

// Condition is a parsed condition expression.
type Condition struct {
	source  string
	root    node
	invalid bool
	tokens  []string
}

// Satisfied evaluates the condition against set. An empty condition is
// always satisfied; an invalid one never is.
func (c Condition) Satisfied(set ConditionSet) bool {
	if c.invalid {
		return false
	}
	if c.root == nil {
		return true
	}
	return c.root.eval(set)
}

// Valid reports whether the expression parsed.
func (c Condition) Valid() bool {
	return !c.invalid
}

// Tokens returns the feature tokens the expression mentions, in order of
// first appearance.
func (c Condition) Tokens() []string {
	return c.tokens
}

func (c Condition) String() string {
	return c.source
}

// Parse parses a condition expression. On error the returned Condition is
// never satisfied.
func Parse(expr string) (Condition, error) {
	c := Condition{source: expr}
	lex, err := lexCondition(expr)
	if err != nil {
		c.invalid = true
		return c, err
	}
	if len(lex) == 0 {
		return c, nil
	}
	p := &parser{src: expr, toks: lex}
	root, err := p.or()
	if err == nil && p.pos < len(p.toks) {
		err = p.errorf("unexpected %q", p.toks[p.pos].text)
	}
	if err != nil {
		c.invalid = true
		return c, err
	}
	c.root = root
	seen := make(map[string]bool)
	for _, t := range lex {
		if t.kind == kindIdent && !seen[t.text] {
			seen[t.text] = true
			c.tokens = append(c.tokens, t.text)
		}
	}
	return c, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(expr string) Condition {
	c, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return c
}

type lexKind uint8

const (
	kindIdent lexKind = iota
	kindNot
	kindAnd
	kindOr
	kindOpen
	kindClose
)

type lexeme struct {
	kind lexKind
	text string
	pos  int
}

func isIdentByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' ||
		b == '_' || b == '.' || b == '-'
}

func lexCondition(expr string) ([]lexeme, error) {
	var out []lexeme
	for i := 0; i < len(expr); {
		b := expr[i]
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			i++
		case b == '!':
			out = append(out, lexeme{kindNot, "!", i})
			i++
		case b == '(':
			out = append(out, lexeme{kindOpen, "(", i})
			i++
		case b == ')':
			out = append(out, lexeme{kindClose, ")", i})
			i++
		case strings.HasPrefix(expr[i:], "&&"):
			out = append(out, lexeme{kindAnd, "&&", i})
			i += 2
		case strings.HasPrefix(expr[i:], "||"):
			out = append(out, lexeme{kindOr, "||", i})
			i += 2
		case isIdentByte(b):
			j := i
			for j < len(expr) && isIdentByte(expr[j]) {
				j++
			}
			out = append(out, lexeme{kindIdent, expr[i:j], i})
			i = j
		default:
			return nil, fmt.Errorf("%w: %q: unexpected character %q at %d", ErrConditionSyntax, expr, b, i)
		}
	}
	return out, nil
}

type parser struct {
	src  string
	toks []lexeme
	pos  int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q: %s", ErrConditionSyntax, p.src, fmt.Sprintf(format, args...))
}

func (p *parser) peek() (lexeme, bool) {
	if p.pos >= len(p.toks) {
		return lexeme{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) or() (node, error) {
	first, err := p.and()
	if err != nil {
		return nil, err
	}
	terms := orNode{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != kindOr {
			break
		}
		p.pos++
		next, err := p.and()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

// and also accepts juxtaposed operands: "a b" means "a && b".
func (p *parser) and() (node, error) {
	first, err := p.unary()
	if err != nil {
		return nil, err
	}
	terms := andNode{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind == kindOr || t.kind == kindClose {
			break
		}
		if t.kind == kindAnd {
			p.pos++
		}
		next, err := p.unary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) unary() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of expression")
	}
	switch t.kind {
	case kindNot:
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{x}, nil
	case kindOpen:
		p.pos++
		x, err := p.or()
		if err != nil {
			return nil, err
		}
		c, ok := p.peek()
		if !ok || c.kind != kindClose {
			return nil, p.errorf("missing ')' for '(' at %d", t.pos)
		}
		p.pos++
		return x, nil
	case kindIdent:
		p.pos++
		return tokenNode(t.text), nil
	}
	return nil, p.errorf("unexpected %q at %d", t.text, t.pos)
}
