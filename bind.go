package cut

// Bind runs p and hands its value to k, which returns the rest of the
// sequence. A sequence fails atomically: when p or anything after it fails
// recoverably, the cursor goes back to where Bind started. When p itself
// fails unrecoverably, name is added to the trace. Unrecoverable failures
// from the rest of the sequence pass through untouched.
func Bind[T, A, R any](name string, p Parser[T, A], k func(A) Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		rp := c.Snapshot()
		o := p(c)
		switch o.Status {
		case Recoverable:
			c.Restore(rp)
			return Fail[R]()
		case Unrecoverable:
			return Retype[R](o).Push(RuleReason(name))
		}
		return resume(c, rp, k(o.Value))
	}
}

// BindCommit is Bind for a step past a commit point. A recoverable failure of
// p becomes unrecoverable, with a trace naming this step, and the cursor is
// put back to where p started rather than to the start of the sequence.
func BindCommit[T, A, R any](name string, p Parser[T, A], k func(A) Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		rp := c.Snapshot()
		o := p(c)
		switch o.Status {
		case Recoverable:
			c.Restore(rp)
			return Fatal[R](RuleReason(name))
		case Unrecoverable:
			return Retype[R](o).Push(RuleReason(name))
		}
		return resume(c, rp, k(o.Value))
	}
}

func resume[T, R any](c Cursor[T], rp Cursor[T], next Parser[T, R]) Outcome[R] {
	o := next(c)
	if o.Status == Recoverable {
		c.Restore(rp)
	}
	return o
}

// Let binds a value computed from earlier steps. It never fails.
func Let[T, A, R any](v A, k func(A) Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		return k(v)(c)
	}
}

// Where continues with next when cond holds, and fails recoverably
// otherwise.
func Where[T, R any](cond bool, next Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		if !cond {
			return Fail[R]()
		}
		return next(c)
	}
}

// MustWhere is Where past a commit point: a false cond is unrecoverable and
// the cursor stays put.
func MustWhere[T, R any](cond bool, next Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		if !cond {
			return Fatal[R](Reason{Kind: Guard})
		}
		return next(c)
	}
}

// End continues with next at end of input and fails recoverably otherwise.
func End[T, R any](next Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		rp := c.Snapshot()
		if _, ok := c.Next(); ok {
			c.Restore(rp)
			return Fail[R]()
		}
		return next(c)
	}
}

// MustEnd is End past a commit point. The probed item is pushed back before
// the failure is reported.
func MustEnd[T, R any](next Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		rp := c.Snapshot()
		if _, ok := c.Next(); ok {
			c.Restore(rp)
			return Fatal[R](Reason{Kind: EndOfInput})
		}
		return next(c)
	}
}

// Select ends a sequence with its result.
func Select[T, R any](v R) Parser[T, R] {
	return func(Cursor[T]) Outcome[R] {
		return Success(v)
	}
}
