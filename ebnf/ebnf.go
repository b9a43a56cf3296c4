// Package ebnf turns a grammar written in the EBNF dialect of
// golang.org/x/exp/ebnf into a cut parser that builds a tree of Nodes.
//
// Productions whose names start with a lower case letter are lexical: they
// match runes exactly and produce a leaf holding the matched text. Other
// productions skip white space before each token and keep the nodes of the
// productions they refer to as children.
package ebnf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/tef/cut"
)

var log = commonlog.GetLogger("cut.ebnf")

// Node is a matched production. Start and End are rune offsets into the
// input, and Text is the input between them.
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Text     string  `json:"text" yaml:"text"`
	Start    int     `json:"start" yaml:"start"`
	End      int     `json:"end" yaml:"end"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s %d:%d", strings.Repeat("  ", depth), n.Name, n.Start, n.End)
	if len(n.Children) == 0 {
		fmt.Fprintf(b, " %q", n.Text)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.write(b, depth+1)
	}
}

// Walk calls fn for n and every node below it, parents first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Parser is a compiled grammar.
type Parser struct {
	Filename string
	Start    string
	Grammar  ebnf.Grammar

	rules *cut.Grammar[rune, *Node]
	top   cut.Parser[rune, *Node]
}

// Load reads and compiles the grammar in filename.
func Load(filename string, start string) (*Parser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Read(filename, f, start)
}

// Read parses, verifies and compiles a grammar.
func Read(filename string, r io.Reader, start string) (*Parser, error) {
	grammar, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if err := ebnf.Verify(grammar, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	return Compile(filename, grammar, start)
}

// IsLexical reports whether the named production matches runes without
// skipping white space.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

var space = cut.ZeroOrMore(cut.Satisfy(unicode.IsSpace))

type nodes = cut.Parser[rune, []*Node]

var empty = cut.Select[rune, []*Node](nil)

type compiler struct {
	filename string
	g        *cut.Grammar[rune, *Node]
	err      error
}

// Compile builds a parser for an already verified grammar.
func Compile(filename string, grammar ebnf.Grammar, start string) (*Parser, error) {
	c := &compiler{
		filename: filename,
		g:        cut.NewGrammar[rune, *Node](start),
	}
	for name, prod := range grammar {
		c.g.Enter(name)
		body := c.expr(name, prod.Expr, IsLexical(name))
		pos := prod.Pos()
		c.g.DefineAt(filename, pos.Line, name, production(name, IsLexical(name), body))
		log.Debugf("compiled production %s at %v", name, pos)
	}
	c.g.Enter("")
	if c.err != nil {
		return nil, c.err
	}

	rule, err := c.g.Parser()
	if err != nil {
		return nil, err
	}

	top := cut.Bind(start, rule, func(n *Node) cut.Parser[rune, *Node] {
		return cut.MustEnd(cut.Select[rune](n))
	})
	if !IsLexical(start) {
		top = cut.Then(space, cut.Bind(start, rule, func(n *Node) cut.Parser[rune, *Node] {
			return cut.Then(space, cut.MustEnd(cut.Select[rune](n)))
		}))
	}

	log.Infof("compiled %d productions from %s, starting at %s", len(grammar), filename, start)
	return &Parser{
		Filename: filename,
		Start:    start,
		Grammar:  grammar,
		rules:    c.g,
		top:      top,
	}, nil
}

func (c *compiler) errorf(pos fmt.Stringer, format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%v: %s", pos, fmt.Sprintf(format, args...))
	}
}

func (c *compiler) expr(name string, e ebnf.Expression, lexical bool) nodes {
	switch e := e.(type) {
	case nil:
		return empty
	case ebnf.Alternative:
		alts := make([]nodes, len(e))
		for i, x := range e {
			alts[i] = c.expr(name, x, lexical)
		}
		return cut.Choice(alts...)
	case ebnf.Sequence:
		p := empty
		for i := len(e) - 1; i >= 0; i-- {
			head, tail := c.expr(name, e[i], lexical), p
			p = cut.Bind(name, head, func(first []*Node) nodes {
				return cut.Map(tail, func(rest []*Node) []*Node {
					return append(first[:len(first):len(first)], rest...)
				})
			})
		}
		return p
	case *ebnf.Group:
		return c.expr(name, e.Body, lexical)
	case *ebnf.Option:
		return cut.Map(cut.Optional(c.expr(name, e.Body, lexical)), func(o cut.Option[[]*Node]) []*Node {
			return o.Value
		})
	case *ebnf.Repetition:
		return cut.Map(cut.ZeroOrMore(c.expr(name, e.Body, lexical)), flatten)
	case *ebnf.Token:
		return c.token(lexical, cut.Map(cut.Literal([]rune(e.String)...), func([]rune) []*Node {
			return nil
		}))
	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		return c.token(lexical, cut.Map(cut.Range(lo, hi), func(rune) []*Node {
			return nil
		}))
	case *ebnf.Name:
		call := c.g.CallAt(c.filename, e.Pos().Line, e.String)
		return c.token(lexical, cut.Map(call, func(n *Node) []*Node {
			return []*Node{n}
		}))
	default:
		c.errorf(e.Pos(), "cannot compile %T in %s", e, name)
		return empty
	}
}

func (c *compiler) token(lexical bool, p nodes) nodes {
	if lexical {
		return p
	}
	return cut.Then(space, p)
}

func flatten(parts [][]*Node) []*Node {
	var out []*Node
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// production wraps the body of a rule so that it yields a Node spanning
// everything the body consumed.
func production(name string, lexical bool, body nodes) cut.Parser[rune, *Node] {
	return func(c cut.Cursor[rune]) cut.Outcome[*Node] {
		rp := c.Snapshot()
		o := body(c)
		if !o.Ok() {
			return cut.Retype[*Node](o)
		}
		n := &Node{Name: name, Start: rp.Offset(), End: c.Offset()}
		text := make([]rune, 0, n.End-n.Start)
		for i := n.Start; i < n.End; i++ {
			r, _ := rp.Next()
			text = append(text, r)
		}
		n.Text = string(text)
		if !lexical {
			n.Children = o.Value
		}
		return cut.Success(n)
	}
}

// Parse matches all of src against the start production.
func (p *Parser) Parse(src string) (*Node, error) {
	n, err := cut.ParseString(p.top, src)
	if err != nil {
		var fatal *cut.FatalError
		if errors.As(err, &fatal) {
			return nil, fmt.Errorf("%s: at %s: %w", p.Start, location(src, fatal.Offset), err)
		}
		return nil, fmt.Errorf("%s: %w", p.Start, err)
	}
	return n, nil
}

// Rule returns the compiled parser for one production, without the white
// space handling and end of input check that Parse adds.
func (p *Parser) Rule(name string) (cut.Parser[rune, *Node], bool) {
	return p.rules.Rule(name)
}

// location renders a rune offset as line:column, both counted from one.
func location(src string, offset int) string {
	line, col := 1, 1
	for i, r := range []rune(src) {
		if i == offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return fmt.Sprintf("%d:%d", line, col)
}

// Check parses a grammar and, when start is not empty, verifies that every
// production is defined and reachable from start.
func Check(filename string, r io.Reader, start string) error {
	grammar, err := ebnf.Parse(filename, r)
	if err != nil {
		return fmt.Errorf("parse grammar: %w", err)
	}
	if start == "" {
		return nil
	}
	if err := ebnf.Verify(grammar, start); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}
