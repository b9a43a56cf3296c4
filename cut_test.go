package cut

import (
	"errors"
	"reflect"
	"testing"
)

var (
	parseY  = Equal('y')
	parseZ  = Equal('z')
	anyChar = AnyItem[rune]()
)

func returnFatal(c Cursor[rune]) Outcome[rune] {
	return Fatal[rune](Reason{Kind: Origin})
}

func parseYY() Parser[rune, [2]rune] {
	return Bind("one", parseY, func(one rune) Parser[rune, [2]rune] {
		return BindCommit("two", parseY, func(two rune) Parser[rune, [2]rune] {
			return Select[rune]([2]rune{one, two})
		})
	})
}

func cursor(s string) *StringCursor {
	return NewStringCursor(s)
}

func expectNext(t *testing.T, c Cursor[rune], want ...rune) {
	t.Helper()
	for _, w := range want {
		r, ok := c.Next()
		if !ok {
			t.Fatalf("expected %q, input exhausted", w)
		}
		if r != w {
			t.Fatalf("expected %q, got %q", w, r)
		}
	}
}

func expectExhausted(t *testing.T, c Cursor[rune]) {
	t.Helper()
	if r, ok := c.Next(); ok {
		t.Fatalf("expected end of input, got %q", r)
	}
}

func TestTokenRestoresOnMismatch(t *testing.T) {
	c := cursor("x")
	o := parseY(c)
	if o.Status != Recoverable {
		t.Fatalf("expected recoverable, got %v", o.Status)
	}
	if c.Offset() != 0 {
		t.Errorf("token consumed on failure, offset %d", c.Offset())
	}

	o = parseY(cursor(""))
	if o.Status != Recoverable {
		t.Errorf("expected recoverable at end of input, got %v", o.Status)
	}

	pat := Token(func(r rune) (int, bool) {
		if r >= '0' && r <= '9' {
			return int(r-'0') + 1, true
		}
		return 0, false
	})
	o2 := pat(cursor("4"))
	if !o2.Ok() || o2.Value != 5 {
		t.Errorf("pattern token: got %v %v", o2.Status, o2.Value)
	}
}

func TestFatalEnd(t *testing.T) {
	p := Bind("y", parseY, func(y rune) Parser[rune, rune] {
		return MustEnd(Select[rune](y))
	})

	c := cursor("y")
	o := p(c)
	if !o.Ok() || o.Value != 'y' {
		t.Fatalf("expected success with 'y', got %v %q", o.Status, o.Value)
	}
	expectExhausted(t, c)

	c = cursor("ye")
	o = p(c)
	if o.Status != Unrecoverable {
		t.Fatalf("expected unrecoverable, got %v", o.Status)
	}
	if !reflect.DeepEqual(o.Trace, Trace{{Kind: EndOfInput}}) {
		t.Errorf("unexpected trace %v", o.Trace)
	}
	expectNext(t, c, 'e')
}

func TestEnd(t *testing.T) {
	p := Bind("y", parseY, func(y rune) Parser[rune, rune] {
		return End(Select[rune](y))
	})

	if o := p(cursor("y")); !o.Ok() || o.Value != 'y' {
		t.Errorf("expected success, got %v", o.Status)
	}

	c := cursor("yy")
	o := p(c)
	if o.Status != Recoverable {
		t.Fatalf("expected recoverable, got %v", o.Status)
	}
	expectNext(t, c, 'y', 'y')
}

func TestWhere(t *testing.T) {
	soft := func(want rune) Parser[rune, rune] {
		return Bind("y", parseY, func(y rune) Parser[rune, rune] {
			return Where(y == want, Select[rune](y))
		})
	}
	hard := func(want rune) Parser[rune, rune] {
		return Bind("y", parseY, func(y rune) Parser[rune, rune] {
			return MustWhere(y == want, Select[rune](y))
		})
	}

	if o := soft('y')(cursor("y")); !o.Ok() {
		t.Errorf("where: expected success, got %v", o.Status)
	}
	if o := hard('y')(cursor("y")); !o.Ok() {
		t.Errorf("fatal where: expected success, got %v", o.Status)
	}

	c := cursor("y")
	if o := soft('x')(c); o.Status != Recoverable {
		t.Errorf("where: expected recoverable, got %v", o.Status)
	}
	expectNext(t, c, 'y')

	c = cursor("y")
	if o := hard('x')(c); o.Status != Unrecoverable {
		t.Errorf("fatal where: expected unrecoverable, got %v", o.Status)
	}
	expectExhausted(t, c)
}

func TestLetAndZeroOrMore(t *testing.T) {
	type x struct{ n int }
	type result struct {
		n  int
		ys [][2]rune
	}
	p := Let(x{1}, func(v x) Parser[rune, result] {
		return Bind("ys", ZeroOrMore(parseYY()), func(ys [][2]rune) Parser[rune, result] {
			return Select[rune](result{v.n, ys})
		})
	})

	o := p(cursor("yyyyyy"))
	if !o.Ok() {
		t.Fatalf("expected success, got %v", o.Status)
	}
	if o.Value.n != 1 {
		t.Errorf("let binding lost, got %d", o.Value.n)
	}
	want := [][2]rune{{'y', 'y'}, {'y', 'y'}, {'y', 'y'}}
	if !reflect.DeepEqual(o.Value.ys, want) {
		t.Errorf("got %q want %q", o.Value.ys, want)
	}
}

func TestZeroOrMorePassesThroughFatal(t *testing.T) {
	p := Bind("ys", ZeroOrMore(parseYY()), func(ys [][2]rune) Parser[rune, [][2]rune] {
		return Select[rune](ys)
	})
	o := p(cursor("yyyyyz"))
	if o.Status != Unrecoverable {
		t.Fatalf("expected unrecoverable, got %v", o.Status)
	}
	if o.Value != nil {
		t.Errorf("partial matches leaked: %q", o.Value)
	}
	if got := o.Trace.Rules(); !reflect.DeepEqual(got, []string{"two", "ys"}) {
		t.Errorf("unexpected rules %v", got)
	}
}

func TestZeroOrMore(t *testing.T) {
	p := Bind("ys", ZeroOrMore(parseY), func(ys []rune) Parser[rune, []rune] {
		return Bind("z", parseZ, func(rune) Parser[rune, []rune] {
			return Select[rune](ys)
		})
	})
	c := cursor("yyz")
	o := p(c)
	if !o.Ok() || string(o.Value) != "yy" {
		t.Fatalf("expected success with yy, got %v %q", o.Status, o.Value)
	}
	expectExhausted(t, c)

	c = cursor("x")
	o2 := ZeroOrMore(parseY)(c)
	if !o2.Ok() || len(o2.Value) != 0 || o2.Value == nil {
		t.Errorf("expected empty success, got %v %q", o2.Status, o2.Value)
	}
	expectNext(t, c, 'x')
}

func TestZeroOrMoreWithoutProgress(t *testing.T) {
	p := ZeroOrMore(Lookahead(parseY))
	o := p(cursor("yyy"))
	if o.Status != Unrecoverable {
		t.Fatalf("expected unrecoverable, got %v", o.Status)
	}
	if !reflect.DeepEqual(o.Trace, Trace{{Kind: NoProgress}}) {
		t.Errorf("unexpected trace %v", o.Trace)
	}
}

func TestRepeatBounds(t *testing.T) {
	p := Repeat(2, 3, parseY)

	c := cursor("y")
	if o := p(c); o.Status != Recoverable {
		t.Errorf("below minimum: expected recoverable, got %v", o.Status)
	}
	expectNext(t, c, 'y')

	c = cursor("yyyyy")
	o := p(c)
	if !o.Ok() || len(o.Value) != 3 {
		t.Errorf("above maximum: got %v %q", o.Status, o.Value)
	}
	expectNext(t, c, 'y', 'y')

	if o := OneOrMore(parseY)(cursor("z")); o.Status != Recoverable {
		t.Errorf("one or more: expected recoverable, got %v", o.Status)
	}
}

func TestBoundedRepeatWithoutProgress(t *testing.T) {
	c := cursor("x")
	o := Repeat(0, 2, Optional(parseY))(c)
	if !o.Ok() || len(o.Value) != 2 {
		t.Errorf("bounded: got %v %v", o.Status, o.Value)
	}
	if c.Offset() != 0 {
		t.Errorf("bounded: cursor moved to %d", c.Offset())
	}

	o = ZeroOrMore(Optional(parseY))(cursor("x"))
	if o.Status != Unrecoverable || !reflect.DeepEqual(o.Trace, Trace{{Kind: NoProgress}}) {
		t.Errorf("unbounded: got %v %v", o.Status, o.Trace)
	}
}

func TestOptional(t *testing.T) {
	p := Bind("one", Optional(parseY), func(one Option[rune]) Parser[rune, Option[rune]] {
		return Bind("two", parseZ, func(rune) Parser[rune, Option[rune]] {
			return Select[rune](one)
		})
	})
	o := p(cursor("yz"))
	if !o.Ok() || o.Value != Some('y') {
		t.Errorf("present: got %v %v", o.Status, o.Value)
	}

	q := Bind("zero", anyChar, func(zero rune) Parser[rune, Option[rune]] {
		return Bind("one", Optional(parseY), func(one Option[rune]) Parser[rune, Option[rune]] {
			return Bind("two", parseZ, func(rune) Parser[rune, Option[rune]] {
				return Select[rune](one)
			})
		})
	})
	o = q(cursor("wz"))
	if !o.Ok() || o.Value.Ok {
		t.Errorf("absent: got %v %v", o.Status, o.Value)
	}
	if o.Value.Or('d') != 'd' {
		t.Errorf("default not used")
	}

	c := cursor("x")
	o3 := Optional(parseY)(c)
	if !o3.Ok() || o3.Value.Ok {
		t.Errorf("expected empty option, got %v", o3.Value)
	}
	expectNext(t, c, 'x')

	f := Bind("zero", anyChar, func(rune) Parser[rune, Option[rune]] {
		return Bind("one", Optional[rune, rune](returnFatal), func(one Option[rune]) Parser[rune, Option[rune]] {
			return Select[rune](one)
		})
	})
	if o := f(cursor("wz")); o.Status != Unrecoverable {
		t.Errorf("optional swallowed fatal: %v", o.Status)
	}
}

func yOrZ() Parser[rune, rune] {
	return Choice(parseY, parseZ)
}

func TestChoice(t *testing.T) {
	p := Bind("one", yOrZ(), func(one rune) Parser[rune, string] {
		return Bind("two", yOrZ(), func(two rune) Parser[rune, string] {
			return Bind("three", yOrZ(), func(three rune) Parser[rune, string] {
				return Select[rune](string([]rune{one, two, three}))
			})
		})
	})
	if o := p(cursor("yzy")); !o.Ok() || o.Value != "yzy" {
		t.Errorf("got %v %q", o.Status, o.Value)
	}

	if o := Choice(parseY, parseZ, anyChar)(cursor("x")); !o.Ok() || o.Value != 'x' {
		t.Errorf("last alternative: got %v %q", o.Status, o.Value)
	}

	c := cursor("x")
	if o := yOrZ()(c); o.Status != Recoverable {
		t.Errorf("expected recoverable, got %v", o.Status)
	}
	expectNext(t, c, 'x')
}

func TestChoiceStopsAtCommit(t *testing.T) {
	tried := false
	never := Satisfy(func(rune) bool {
		tried = true
		return true
	})
	p := Choice(Then(parseY, Commit(parseZ)), never)

	o := p(cursor("yy"))
	if o.Status != Unrecoverable {
		t.Fatalf("expected unrecoverable, got %v", o.Status)
	}
	if tried {
		t.Error("alternative after a commit was attempted")
	}
	want := Trace{{Kind: Origin}, {Kind: Alternative}}
	if !reflect.DeepEqual(o.Trace, want) {
		t.Errorf("got trace %v want %v", o.Trace, want)
	}
}

func TestSequence(t *testing.T) {
	p := Bind("one", parseY, func(one rune) Parser[rune, string] {
		return Bind("two", parseY, func(two rune) Parser[rune, string] {
			return Bind("three", parseY, func(three rune) Parser[rune, string] {
				return Select[rune](string([]rune{one, two, three}))
			})
		})
	})
	if o := p(cursor("yyy")); !o.Ok() || o.Value != "yyy" {
		t.Errorf("got %v %q", o.Status, o.Value)
	}

	c := cursor("yyz")
	if o := p(c); o.Status != Recoverable {
		t.Errorf("expected recoverable, got %v", o.Status)
	}
	expectNext(t, c, 'y', 'y', 'z')
}

func twoYs(last func(Parser[rune, string]) Parser[rune, string]) Parser[rune, string] {
	return Bind("one", parseY, func(one rune) Parser[rune, string] {
		return Bind("two", parseY, func(two rune) Parser[rune, string] {
			return last(Select[rune](string([]rune{one, two})))
		})
	})
}

func TestFailureResetsInput(t *testing.T) {
	cases := map[string]func(Parser[rune, string]) Parser[rune, string]{
		"where": func(next Parser[rune, string]) Parser[rune, string] {
			return Where(false, next)
		},
		"end": func(next Parser[rune, string]) Parser[rune, string] {
			return End(next)
		},
		"rule": func(next Parser[rune, string]) Parser[rune, string] {
			return Bind("three", parseY, func(rune) Parser[rune, string] { return next })
		},
	}
	for name, last := range cases {
		c := cursor("yyz")
		o := twoYs(last)(c)
		if o.Status != Recoverable {
			t.Errorf("%s: expected recoverable, got %v", name, o.Status)
			continue
		}
		if c.Offset() != 0 {
			t.Errorf("%s: cursor left at %d", name, c.Offset())
		}
	}
}

func TestFatalFailureKeepsInput(t *testing.T) {
	cases := map[string]struct {
		last  func(Parser[rune, string]) Parser[rune, string]
		trace Trace
	}{
		"where": {func(next Parser[rune, string]) Parser[rune, string] {
			return MustWhere(false, next)
		}, Trace{{Kind: Guard}}},
		"end": {func(next Parser[rune, string]) Parser[rune, string] {
			return MustEnd(next)
		}, Trace{{Kind: EndOfInput}}},
		"rule": {func(next Parser[rune, string]) Parser[rune, string] {
			return BindCommit("three", parseY, func(rune) Parser[rune, string] { return next })
		}, Trace{RuleReason("three")}},
	}
	for name, tc := range cases {
		c := cursor("yyz")
		o := twoYs(tc.last)(c)
		if o.Status != Unrecoverable {
			t.Errorf("%s: expected unrecoverable, got %v", name, o.Status)
			continue
		}
		if !reflect.DeepEqual(o.Trace, tc.trace) {
			t.Errorf("%s: got trace %v want %v", name, o.Trace, tc.trace)
		}
		expectNext(t, c, 'z')
	}
}

func TestCommitLeavesCursor(t *testing.T) {
	c := cursor("yx")
	o := Commit(Then(parseY, parseZ))(c)
	if o.Status != Unrecoverable {
		t.Fatalf("expected unrecoverable, got %v", o.Status)
	}
	if !reflect.DeepEqual(o.Trace, Trace{{Kind: Origin}}) {
		t.Errorf("unexpected trace %v", o.Trace)
	}

	if o := Commit(parseY)(cursor("y")); !o.Ok() {
		t.Errorf("commit changed a success: %v", o.Status)
	}
}

func TestLookaheadAndReject(t *testing.T) {
	c := cursor("y")
	if o := Lookahead(parseY)(c); !o.Ok() || o.Value != 'y' {
		t.Errorf("lookahead: got %v", o.Status)
	}
	expectNext(t, c, 'y')

	c = cursor("y")
	if o := Reject(parseY)(c); o.Status != Recoverable {
		t.Errorf("reject: got %v", o.Status)
	}
	expectNext(t, c, 'y')

	c = cursor("z")
	if o := Reject(parseY)(c); !o.Ok() {
		t.Errorf("reject: got %v", o.Status)
	}
	expectNext(t, c, 'z')
}

func TestLiteralAndSepBy(t *testing.T) {
	lit := Literal([]rune("true")...)
	if !Accept(lit, "true") {
		t.Error("literal rejected its own text")
	}
	c := cursor("trux")
	if o := lit(c); o.Status != Recoverable {
		t.Errorf("literal: got %v", o.Status)
	}
	if c.Offset() != 0 {
		t.Errorf("literal consumed %d on failure", c.Offset())
	}

	list := SepBy(Range('0', '9'), Equal(','))
	o := list(cursor("1,2,3,"))
	if !o.Ok() || string(o.Value) != "123" {
		t.Errorf("sepby: got %v %q", o.Status, o.Value)
	}
	if o := list(cursor("")); !o.Ok() || len(o.Value) != 0 {
		t.Errorf("sepby empty: got %v %q", o.Status, o.Value)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := ParseString(parseY, "x")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}

	_, err = ParseString(parseYY(), "yx")
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fatal.Offset != 1 {
		t.Errorf("expected offset 1, got %d", fatal.Offset)
	}
	t.Logf("fatal error: %v", err)

	v, err := ParseSlice(OneOrMore(Equal(3)), []int{3, 3, 4})
	if err != nil || len(v) != 2 {
		t.Errorf("slice parse: %v %v", v, err)
	}
	if _, err := ParseAll(OneOrMore(Equal(3)), Cursor[int](NewSliceCursor([]int{3, 4}))); !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
}

func TestLazy(t *testing.T) {
	built := 0
	var parens Parser[rune, int]
	parens = Lazy(func() Parser[rune, int] {
		built++
		return Choice(
			Bind("open", Equal('('), func(rune) Parser[rune, int] {
				return BindCommit("inner", parens, func(n int) Parser[rune, int] {
					return BindCommit("close", Equal(')'), func(rune) Parser[rune, int] {
						return Select[rune](n + 1)
					})
				})
			}),
			Select[rune](0),
		)
	})

	for s, depth := range map[string]int{"": 0, "()": 1, "((()))": 3} {
		if v, err := ParseString(parens, s); err != nil || v != depth {
			t.Errorf("%q: got %d %v", s, v, err)
		}
	}
	if built != 1 {
		t.Errorf("built %d times", built)
	}

	_, err := ParseString(parens, "((()")
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if got := fatal.Trace.Rules(); !reflect.DeepEqual(got, []string{"close", "inner"}) {
		t.Errorf("unexpected rules %v", got)
	}
}

func TestEOF(t *testing.T) {
	end := Map(EOF[rune](), func(struct{}) rune { return '$' })
	p := ZeroOrMore(Choice(parseY, end))
	if o := p(cursor("yy")); o.Status != Unrecoverable {
		t.Errorf("repeated end: expected no progress, got %v", o.Status)
	}

	line := Bind("y", parseY, func(rune) Parser[rune, rune] {
		return Choice(parseZ, end)
	})
	if v, err := ParseString(line, "y"); err != nil || v != '$' {
		t.Errorf("y: got %q %v", v, err)
	}
	if v, err := ParseString(line, "yz"); err != nil || v != 'z' {
		t.Errorf("yz: got %q %v", v, err)
	}

	c := cursor("yx")
	if o := line(c); o.Status != Recoverable || c.Offset() != 0 {
		t.Errorf("yx: got %v at %d", o.Status, c.Offset())
	}
	if _, err := ParseAll(parseY, Cursor[rune](cursor("yy"))); !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected incomplete, got %v", err)
	}
}
