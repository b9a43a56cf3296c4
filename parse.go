package cut

// Parse runs p once over c. The error is nil on success, ErrNoMatch when p
// did not match and a *FatalError when p failed past a commit point.
func Parse[T, R any](p Parser[T, R], c Cursor[T]) (R, error) {
	o := p(c)
	return o.Value, o.Err(c.Offset())
}

func ParseString[R any](p Parser[rune, R], s string) (R, error) {
	return Parse(p, Cursor[rune](NewStringCursor(s)))
}

func ParseSlice[T, R any](p Parser[T, R], items []T) (R, error) {
	return Parse(p, Cursor[T](NewSliceCursor(items)))
}

// ParseAll is Parse that also requires the input to be used up.
func ParseAll[T, R any](p Parser[T, R], c Cursor[T]) (R, error) {
	v, err := Parse(p, c)
	if err != nil {
		return v, err
	}
	if !EOF[T]()(c).Ok() {
		var zero R
		return zero, ErrIncomplete
	}
	return v, nil
}

// Accept reports whether p matches all of s.
func Accept[R any](p Parser[rune, R], s string) bool {
	_, err := ParseAll(p, Cursor[rune](NewStringCursor(s)))
	return err == nil
}
