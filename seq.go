package cut

// Seq is the state of one run of a Sequence body. Once a step fails, later
// steps are skipped and return zero values, so a body can be written
// straight through and checked once with Ok.
type Seq[T any] struct {
	c      Cursor[T]
	status Status
	trace  Trace
}

// Sequence builds a parser from straight-line code. The steps behave like
// Bind, BindCommit, Where, MustWhere, End and MustEnd, and the returned value
// plays the part of Select.
//
//	pair := cut.Sequence(func(s *cut.Seq[rune]) [2]rune {
//		one := cut.Take(s, "one", y)
//		two := cut.TakeCommit(s, "two", y)
//		return [2]rune{one, two}
//	})
func Sequence[T, R any](body func(s *Seq[T]) R) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		start := c.Snapshot()
		s := &Seq[T]{c: c}
		v := body(s)
		switch s.status {
		case Succeeded:
			return Success(v)
		case Recoverable:
			c.Restore(start)
			return Fail[R]()
		default:
			return Outcome[R]{Status: Unrecoverable, Trace: s.trace}
		}
	}
}

func (s *Seq[T]) Ok() bool {
	return s.status == Succeeded
}

func (s *Seq[T]) Offset() int {
	return s.c.Offset()
}

func (s *Seq[T]) fatal(trace Trace, r Reason) {
	s.status = Unrecoverable
	s.trace = append(trace, r)
}

func Take[T, A any](s *Seq[T], name string, p Parser[T, A]) A {
	if !s.Ok() {
		var zero A
		return zero
	}
	o := p(s.c)
	switch o.Status {
	case Recoverable:
		s.status = Recoverable
	case Unrecoverable:
		s.fatal(o.Trace, RuleReason(name))
	}
	return o.Value
}

func TakeCommit[T, A any](s *Seq[T], name string, p Parser[T, A]) A {
	if !s.Ok() {
		var zero A
		return zero
	}
	rp := s.c.Snapshot()
	o := p(s.c)
	switch o.Status {
	case Recoverable:
		s.c.Restore(rp)
		s.fatal(nil, RuleReason(name))
	case Unrecoverable:
		s.fatal(o.Trace, RuleReason(name))
	}
	return o.Value
}

func TakeOptional[T, A any](s *Seq[T], name string, p Parser[T, A]) Option[A] {
	return Take(s, name, Optional(p))
}

func TakeMany[T, A any](s *Seq[T], name string, p Parser[T, A]) []A {
	return Take(s, name, ZeroOrMore(p))
}

func (s *Seq[T]) Where(cond bool) bool {
	if !s.Ok() {
		return false
	}
	if !cond {
		s.status = Recoverable
	}
	return cond
}

func (s *Seq[T]) MustWhere(cond bool) bool {
	if !s.Ok() {
		return false
	}
	if !cond {
		s.fatal(nil, Reason{Kind: Guard})
	}
	return cond
}

func (s *Seq[T]) End() bool {
	if !s.Ok() {
		return false
	}
	rp := s.c.Snapshot()
	if _, ok := s.c.Next(); ok {
		s.c.Restore(rp)
		s.status = Recoverable
		return false
	}
	return true
}

func (s *Seq[T]) MustEnd() bool {
	if !s.Ok() {
		return false
	}
	rp := s.c.Snapshot()
	if _, ok := s.c.Next(); ok {
		s.c.Restore(rp)
		s.fatal(nil, Reason{Kind: EndOfInput})
		return false
	}
	return true
}
