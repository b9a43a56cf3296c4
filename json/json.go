// Package json is a JSON grammar written with cut. It commits as soon as a
// construct is unambiguous, so malformed documents fail with a trace naming
// the rules that were open instead of a bare mismatch.
package json

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf16"

	"github.com/tef/cut"
)

var JsonParser, JsonErr = cut.BuildParser("document", define)

// Parse decodes a document into map[string]any, []any, string, float64,
// bool and nil values.
func Parse(s string) (any, error) {
	if JsonErr != nil {
		return nil, JsonErr
	}
	v, err := cut.ParseString(JsonParser, s)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return v, nil
}

type member struct {
	key   string
	value any
}

var ws = cut.ZeroOrMore(cut.OneOf(' ', '\t', '\n', '\r'))

func token(r rune) cut.Parser[rune, rune] {
	return cut.Left(cut.Equal(r), ws)
}

func keyword(word string, v any) cut.Parser[rune, any] {
	return cut.Map(cut.Literal([]rune(word)...), func([]rune) any {
		return v
	})
}

var digit = cut.Range('0', '9')

var hexDigit = cut.Token(func(r rune) (rune, bool) {
	switch {
	case '0' <= r && r <= '9':
		return r - '0', true
	case 'a' <= r && r <= 'f':
		return r - 'a' + 10, true
	case 'A' <= r && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
})

var escapes = map[rune]rune{
	'"': '"', '\\': '\\', '/': '/', 'b': '\b',
	'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
}

var unicodeEscape = cut.Bind("u", cut.Literal('\\', 'u'), func([]rune) cut.Parser[rune, rune] {
	return cut.BindCommit("hex", cut.Repeat(4, 4, hexDigit), func(ds []rune) cut.Parser[rune, rune] {
		var r rune
		for _, d := range ds {
			r = r<<4 | d
		}
		return cut.Select[rune](r)
	})
})

var simpleEscape = cut.Bind("escape", cut.Equal('\\'), func(rune) cut.Parser[rune, rune] {
	return cut.BindCommit("char", cut.Token(func(r rune) (rune, bool) {
		e, ok := escapes[r]
		return e, ok
	}), func(e rune) cut.Parser[rune, rune] {
		return cut.Select[rune](e)
	})
})

var plain = cut.Satisfy(func(r rune) bool {
	return r != '"' && r != '\\' && r >= 0x20
})

var (
	sign     = cut.Equal('-')
	integral = cut.Choice(
		cut.Map(cut.Equal('0'), func(r rune) []rune { return []rune{r} }),
		cut.Capture(cut.Then(cut.Range('1', '9'), cut.ZeroOrMore(digit))),
	)
	fraction = cut.Then(cut.Equal('.'), cut.Commit(cut.OneOrMore(digit)))
	exponent = cut.Then(cut.OneOf('e', 'E'), cut.Commit(
		cut.Then(cut.Optional(cut.OneOf('+', '-')), cut.OneOrMore(digit)),
	))
)

var number = cut.Capture(cut.Sequence(func(s *cut.Seq[rune]) struct{} {
	cut.TakeOptional(s, "sign", sign)
	cut.Take(s, "int", integral)
	cut.TakeOptional(s, "frac", fraction)
	cut.TakeOptional(s, "exp", exponent)
	return struct{}{}
}))

// Sequence bodies run on every parse, so rule calls are made up front.
func define(g *cut.Grammar[rune, any]) {
	element := cut.Left(g.Call("value"), ws)
	key := cut.Left(g.Call("string"), ws)
	comma := token(',')

	g.Define("document", cut.Then(ws, cut.Bind("root", element, func(v any) cut.Parser[rune, any] {
		return cut.MustEnd(cut.Select[rune](v))
	})))

	g.Define("value", cut.Choice(
		g.Call("list"),
		g.Call("object"),
		g.Call("string"),
		g.Call("number"),
		keyword("true", true),
		keyword("false", false),
		keyword("null", nil),
	))

	open, closeList := token('['), cut.Equal(']')
	nextItem := cut.Then(comma, cut.Commit(element))
	g.Define("list", cut.Sequence(func(s *cut.Seq[rune]) any {
		cut.Take(s, "open", open)
		items := []any{}
		if v, ok := cut.TakeOptional(s, "item", element).Get(); ok {
			items = append(items, v)
			rest := cut.TakeMany(s, "items", nextItem)
			items = append(items, rest...)
		}
		cut.TakeCommit(s, "close", closeList)
		return items
	}))

	colon := token(':')
	pair := cut.Sequence(func(s *cut.Seq[rune]) member {
		k := cut.Take(s, "key", key)
		cut.TakeCommit(s, "colon", colon)
		value := cut.TakeCommit(s, "value", element)
		name, _ := k.(string)
		return member{key: name, value: value}
	})

	openObject, closeObject := token('{'), cut.Equal('}')
	nextPair := cut.Then(comma, cut.Commit(pair))
	g.Define("object", cut.Sequence(func(s *cut.Seq[rune]) any {
		cut.Take(s, "open", openObject)
		m := map[string]any{}
		if first, ok := cut.TakeOptional(s, "member", pair).Get(); ok {
			m[first.key] = first.value
			rest := cut.TakeMany(s, "members", nextPair)
			for _, mem := range rest {
				m[mem.key] = mem.value
			}
		}
		cut.TakeCommit(s, "close", closeObject)
		return m
	}))

	quote := cut.Equal('"')
	char := cut.Choice(unicodeEscape, simpleEscape, plain)
	g.Define("string", cut.Sequence(func(s *cut.Seq[rune]) any {
		cut.Take(s, "open", quote)
		chars := cut.TakeMany(s, "chars", char)
		cut.TakeCommit(s, "close", quote)
		return decodeSurrogates(chars)
	}))

	// Numbers outside the float64 range are a fatal Guard failure.
	g.Define("number", func(c cut.Cursor[rune]) cut.Outcome[any] {
		o := number(c)
		if !o.Ok() {
			return cut.Retype[any](o)
		}
		f, err := strconv.ParseFloat(string(o.Value), 64)
		if err != nil {
			return cut.Fatal[any](cut.Reason{Kind: cut.Guard})
		}
		return cut.Success[any](f)
	})
}

func decodeSurrogates(chars []rune) string {
	out := make([]rune, 0, len(chars))
	for i := 0; i < len(chars); i++ {
		r := chars[i]
		if utf16.IsSurrogate(r) && i+1 < len(chars) {
			if d := utf16.DecodeRune(r, chars[i+1]); d != unicode.ReplacementChar {
				out = append(out, d)
				i += 1
				continue
			}
		}
		out = append(out, r)
	}
	return string(out)
}
