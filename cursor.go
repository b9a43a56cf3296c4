package cut

import (
	"fmt"
	"unicode/utf8"
)

// Cursor is a resettable position over a sequence of items.
//
// Snapshot returns an independent cursor over the same items, and Restore
// moves the receiver back to a position previously returned by Snapshot.
// Restoring a snapshot must leave no trace of anything consumed since it
// was taken.
type Cursor[T any] interface {
	Next() (T, bool)
	Snapshot() Cursor[T]
	Restore(Cursor[T])
	Offset() int
}

type SliceCursor[T any] struct {
	items  []T
	offset int
}

func NewSliceCursor[T any](items []T) *SliceCursor[T] {
	return &SliceCursor[T]{items: items}
}

func (c *SliceCursor[T]) Next() (T, bool) {
	if c.offset >= len(c.items) {
		var zero T
		return zero, false
	}
	v := c.items[c.offset]
	c.offset += 1
	return v, true
}

func (c *SliceCursor[T]) Snapshot() Cursor[T] {
	st := *c
	return &st
}

func (c *SliceCursor[T]) Restore(s Cursor[T]) {
	other, ok := s.(*SliceCursor[T])
	if !ok {
		panic(fmt.Sprintf("cut: cannot restore %T from %T", c, s))
	}
	*c = *other
}

func (c *SliceCursor[T]) Offset() int {
	return c.offset
}

// Rest returns the unconsumed items.
func (c *SliceCursor[T]) Rest() []T {
	return c.items[c.offset:]
}

// StringCursor walks a string rune by rune. Offset counts runes; Pos
// reports the byte offset.
type StringCursor struct {
	buf   string
	pos   int
	runes int
}

func NewStringCursor(s string) *StringCursor {
	return &StringCursor{buf: s}
}

func (c *StringCursor) Next() (rune, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(c.buf[c.pos:])
	c.pos += size
	c.runes += 1
	return r, true
}

func (c *StringCursor) Snapshot() Cursor[rune] {
	st := *c
	return &st
}

func (c *StringCursor) Restore(s Cursor[rune]) {
	other, ok := s.(*StringCursor)
	if !ok {
		panic(fmt.Sprintf("cut: cannot restore %T from %T", c, s))
	}
	*c = *other
}

func (c *StringCursor) Offset() int {
	return c.runes
}

func (c *StringCursor) Pos() int {
	return c.pos
}

func (c *StringCursor) Rest() string {
	return c.buf[c.pos:]
}

// Span returns the text between two positions taken from the same string.
func (c *StringCursor) Span(from, to int) string {
	return c.buf[from:to]
}
