// Package infix parses and evaluates arithmetic statements such as
// "x = (1 + 2) * -y". Input is split into tokens with text/scanner and the
// token slice is parsed with cut, so the grammar works on whole tokens
// rather than runes.
package infix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/tef/cut"
)

type Token struct {
	Kind rune
	Text string
	Pos  scanner.Position
}

func (t Token) String() string {
	return fmt.Sprintf("%v %q", t.Pos, t.Text)
}

// Tokenize splits src into identifiers, numbers and single rune operators.
func Tokenize(src string) ([]Token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats

	var errs []error
	s.Error = func(s *scanner.Scanner, msg string) {
		errs = append(errs, fmt.Errorf("%v: %s", s.Pos(), msg))
	}

	var tokens []Token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		tokens = append(tokens, Token{Kind: tok, Text: s.TokenText(), Pos: s.Position})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return tokens, nil
}

var StatementParser, StatementErr = cut.BuildParser("statement", define)

func kind(k rune) cut.Parser[Token, Token] {
	return cut.Satisfy(func(t Token) bool { return t.Kind == k })
}

func op(ops ...rune) cut.Parser[Token, Token] {
	return cut.Satisfy(func(t Token) bool {
		for _, o := range ops {
			if t.Kind == o {
				return true
			}
		}
		return false
	})
}

var number = cut.Token(func(t Token) (Expr, bool) {
	switch t.Kind {
	case scanner.Int:
		n, err := strconv.ParseInt(t.Text, 0, 64)
		if err != nil {
			return nil, false
		}
		return Number(n), true
	case scanner.Float:
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, false
		}
		return Number(f), true
	}
	return nil, false
})

type step struct {
	op    string
	right Expr
}

// leftAssoc parses operand {op !operand} and folds the steps to the left.
func leftAssoc(name string, operand cut.Parser[Token, Expr], ops ...rune) cut.Parser[Token, Expr] {
	operator := op(ops...)
	right := cut.Sequence(func(s *cut.Seq[Token]) step {
		o := cut.Take(s, "op", operator)
		y := cut.TakeCommit(s, name, operand)
		return step{op: o.Text, right: y}
	})
	return cut.Sequence(func(s *cut.Seq[Token]) Expr {
		x := cut.Take(s, "left", operand)
		steps := cut.TakeMany(s, "right", right)
		for _, st := range steps {
			x = &Binary{Op: st.op, X: x, Y: st.right}
		}
		return x
	})
}

// Sequence bodies run on every parse, so rule calls are made up front.
func define(g *cut.Grammar[Token, Expr]) {
	expr := g.Call("expr")
	unary := g.Call("unary")
	target := cut.Left(kind(scanner.Ident), op('='))

	g.Define("statement", cut.Sequence(func(s *cut.Seq[Token]) Expr {
		name, assign := cut.TakeOptional(s, "target", target).Get()
		var x Expr
		if assign {
			x = cut.TakeCommit(s, "value", expr)
		} else {
			x = cut.Take(s, "value", expr)
		}
		s.MustEnd()
		if assign {
			return &Assign{Name: name.Text, X: x}
		}
		return x
	}))

	g.Enter("expr")
	g.Define("expr", leftAssoc("term", g.Call("term"), '+', '-'))

	g.Enter("term")
	g.Define("term", leftAssoc("unary", unary, '*', '/'))

	g.Enter("unary")
	negate := func(x Expr) cut.Parser[Token, Expr] {
		return cut.Select[Token, Expr](&Unary{Op: "-", X: x})
	}
	g.Define("unary", cut.Choice(
		cut.Bind("minus", op('-'), func(Token) cut.Parser[Token, Expr] {
			return cut.BindCommit("operand", unary, negate)
		}),
		g.Call("primary"),
	))

	g.Enter("primary")
	open, closing := op('('), op(')')
	g.Define("primary", cut.Choice(
		number,
		cut.Map(kind(scanner.Ident), func(t Token) Expr {
			return Var(t.Text)
		}),
		cut.Sequence(func(s *cut.Seq[Token]) Expr {
			cut.Take(s, "open", open)
			x := cut.TakeCommit(s, "inner", expr)
			cut.TakeCommit(s, "close", closing)
			return x
		}),
	))
	g.Enter("")
}

// Parse reads one statement. Fatal errors are reported at the token where
// parsing stopped.
func Parse(src string) (Expr, error) {
	if StatementErr != nil {
		return nil, StatementErr
	}
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("infix: %w", err)
	}
	x, err := cut.ParseSlice(StatementParser, tokens)
	if err == nil {
		return x, nil
	}
	var fatal *cut.FatalError
	if errors.As(err, &fatal) {
		if fatal.Offset < len(tokens) {
			return nil, fmt.Errorf("infix: at %v: %w", tokens[fatal.Offset], err)
		}
		return nil, fmt.Errorf("infix: at end of input: %w", err)
	}
	return nil, fmt.Errorf("infix: %w", err)
}

// Run parses and evaluates src against env. A nil env is replaced with an
// empty one, so assignments are discarded.
func Run(src string, env Env) (float64, error) {
	if env == nil {
		env = Env{}
	}
	x, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return x.Eval(env)
}
