package cut

import (
	"cmp"
	"sync"
)

// Parser consumes items from a cursor and reports an outcome. A parser that
// fails recoverably leaves the cursor where it found it.
type Parser[T, R any] func(Cursor[T]) Outcome[R]

// Token consumes exactly one item and hands it to f. When f rejects the item,
// or the input is exhausted, the item is pushed back.
func Token[T, R any](f func(T) (R, bool)) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		rp := c.Snapshot()
		if v, ok := c.Next(); ok {
			if r, ok := f(v); ok {
				return Success(r)
			}
		}
		c.Restore(rp)
		return Fail[R]()
	}
}

func Satisfy[T any](pred func(T) bool) Parser[T, T] {
	return Token(func(v T) (T, bool) {
		return v, pred(v)
	})
}

func AnyItem[T any]() Parser[T, T] {
	return Satisfy(func(T) bool { return true })
}

func Equal[T comparable](want T) Parser[T, T] {
	return Satisfy(func(v T) bool { return v == want })
}

func OneOf[T comparable](want ...T) Parser[T, T] {
	return Satisfy(func(v T) bool {
		for _, w := range want {
			if v == w {
				return true
			}
		}
		return false
	})
}

// Range matches an item between lo and hi inclusive.
func Range[T cmp.Ordered](lo, hi T) Parser[T, T] {
	return Satisfy(func(v T) bool { return lo <= v && v <= hi })
}

// Literal matches the items in order, all or nothing.
func Literal[T comparable](want ...T) Parser[T, []T] {
	return func(c Cursor[T]) Outcome[[]T] {
		rp := c.Snapshot()
		for _, w := range want {
			v, ok := c.Next()
			if !ok || v != w {
				c.Restore(rp)
				return Fail[[]T]()
			}
		}
		return Success(want)
	}
}

// Choice tries each alternative in order from the same position and returns
// the first success. An unrecoverable alternative ends the choice.
func Choice[T, R any](alts ...Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		for _, alt := range alts {
			rp := c.Snapshot()
			o := alt(c)
			switch o.Status {
			case Succeeded:
				return o
			case Recoverable:
				c.Restore(rp)
			default:
				return o.Push(Reason{Kind: Alternative})
			}
		}
		return Fail[R]()
	}
}

// Commit turns a recoverable failure of p into an unrecoverable one. The
// cursor is left where p left it.
func Commit[T, R any](p Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		o := p(c)
		if o.Status == Recoverable {
			return Fatal[R](Reason{Kind: Origin})
		}
		return o
	}
}

type Option[A any] struct {
	Value A
	Ok    bool
}

func Some[A any](v A) Option[A] {
	return Option[A]{Value: v, Ok: true}
}

func None[A any]() Option[A] {
	return Option[A]{}
}

func (o Option[A]) Get() (A, bool) {
	return o.Value, o.Ok
}

func (o Option[A]) Or(v A) A {
	if o.Ok {
		return o.Value
	}
	return v
}

func Optional[T, A any](p Parser[T, A]) Parser[T, Option[A]] {
	return func(c Cursor[T]) Outcome[Option[A]] {
		rp := c.Snapshot()
		o := p(c)
		switch o.Status {
		case Succeeded:
			return Success(Some(o.Value))
		case Recoverable:
			c.Restore(rp)
			return Success(None[A]())
		default:
			return Retype[Option[A]](o)
		}
	}
}

// Repeat matches p greedily at least min times and, when max is above zero,
// at most max times. In an unbounded repeat, a p that succeeds without
// consuming anything is reported as NoProgress rather than looped on.
func Repeat[T, A any](min, max int, p Parser[T, A]) Parser[T, []A] {
	return func(c Cursor[T]) Outcome[[]A] {
		start := c.Snapshot()
		ret := []A{}
		for max <= 0 || len(ret) < max {
			peek := c.Snapshot()
			o := p(c)
			if o.Status == Recoverable {
				c.Restore(peek)
				break
			}
			if o.Status == Unrecoverable {
				return Retype[[]A](o)
			}
			if max <= 0 && c.Offset() == peek.Offset() {
				return Fatal[[]A](Reason{Kind: NoProgress})
			}
			ret = append(ret, o.Value)
		}
		if len(ret) < min {
			c.Restore(start)
			return Fail[[]A]()
		}
		return Success(ret)
	}
}

func ZeroOrMore[T, A any](p Parser[T, A]) Parser[T, []A] {
	return Repeat(0, 0, p)
}

func OneOrMore[T, A any](p Parser[T, A]) Parser[T, []A] {
	return Repeat(1, 0, p)
}

// SepBy matches zero or more p separated by sep.
func SepBy[T, A, S any](p Parser[T, A], sep Parser[T, S]) Parser[T, []A] {
	rest := ZeroOrMore(Then(sep, p))
	return func(c Cursor[T]) Outcome[[]A] {
		rp := c.Snapshot()
		first := p(c)
		switch first.Status {
		case Recoverable:
			c.Restore(rp)
			return Success([]A{})
		case Unrecoverable:
			return Retype[[]A](first)
		}
		o := rest(c)
		if !o.Ok() {
			return o
		}
		return Success(append([]A{first.Value}, o.Value...))
	}
}

// Then runs a and then b, keeping b's value. It fails atomically like a
// binding but adds no frame to a trace.
func Then[T, A, B any](a Parser[T, A], b Parser[T, B]) Parser[T, B] {
	return func(c Cursor[T]) Outcome[B] {
		rp := c.Snapshot()
		o := a(c)
		if !o.Ok() {
			if o.Status == Recoverable {
				c.Restore(rp)
			}
			return Retype[B](o)
		}
		ob := b(c)
		if ob.Status == Recoverable {
			c.Restore(rp)
		}
		return ob
	}
}

// Left runs a and then b, keeping a's value.
func Left[T, A, B any](a Parser[T, A], b Parser[T, B]) Parser[T, A] {
	return func(c Cursor[T]) Outcome[A] {
		rp := c.Snapshot()
		o := a(c)
		if !o.Ok() {
			if o.Status == Recoverable {
				c.Restore(rp)
			}
			return o
		}
		ob := b(c)
		if !ob.Ok() {
			if ob.Status == Recoverable {
				c.Restore(rp)
			}
			return Retype[A](ob)
		}
		return o
	}
}

// Lookahead succeeds with p's value without consuming anything.
func Lookahead[T, A any](p Parser[T, A]) Parser[T, A] {
	return func(c Cursor[T]) Outcome[A] {
		rp := c.Snapshot()
		o := p(c)
		if o.Status != Unrecoverable {
			c.Restore(rp)
		}
		return o
	}
}

// Reject succeeds, without consuming anything, when p does not match.
func Reject[T, A any](p Parser[T, A]) Parser[T, struct{}] {
	return func(c Cursor[T]) Outcome[struct{}] {
		rp := c.Snapshot()
		o := p(c)
		switch o.Status {
		case Succeeded:
			c.Restore(rp)
			return Fail[struct{}]()
		case Recoverable:
			c.Restore(rp)
			return Success(struct{}{})
		default:
			return Retype[struct{}](o)
		}
	}
}

// EOF matches the end of input.
func EOF[T any]() Parser[T, struct{}] {
	return func(c Cursor[T]) Outcome[struct{}] {
		rp := c.Snapshot()
		if _, ok := c.Next(); ok {
			c.Restore(rp)
			return Fail[struct{}]()
		}
		return Success(struct{}{})
	}
}

// Capture runs p and returns the items it consumed.
func Capture[T, A any](p Parser[T, A]) Parser[T, []T] {
	return func(c Cursor[T]) Outcome[[]T] {
		rp := c.Snapshot()
		o := p(c)
		if !o.Ok() {
			return Retype[[]T](o)
		}
		n := c.Offset() - rp.Offset()
		items := make([]T, 0, n)
		for i := 0; i < n; i++ {
			v, _ := rp.Next()
			items = append(items, v)
		}
		return Success(items)
	}
}

func Map[T, A, R any](p Parser[T, A], f func(A) R) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		o := p(c)
		if !o.Ok() {
			return Retype[R](o)
		}
		return Success(f(o.Value))
	}
}

// Lazy builds the parser on first use, which lets a grammar refer to itself.
func Lazy[T, R any](build func() Parser[T, R]) Parser[T, R] {
	var once sync.Once
	var p Parser[T, R]
	return func(c Cursor[T]) Outcome[R] {
		once.Do(func() { p = build() })
		return p(c)
	}
}
