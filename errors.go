package cut

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoMatch = errors.New("no match")

// ErrIncomplete is returned by ParseAll when the parser succeeded without
// consuming the whole input.
var ErrIncomplete = errors.New("unconsumed input")

// FatalError is the error form of an unrecoverable outcome.
type FatalError struct {
	Trace  Trace
	Offset int
}

func (e *FatalError) Error() string {
	frames := make([]string, len(e.Trace))
	for i, r := range e.Trace {
		frames[i] = r.String()
	}
	return fmt.Sprintf("fatal at offset %d: %s", e.Offset, strings.Join(frames, " <- "))
}

// Err reports an outcome as an error. offset is where the failing parser
// left the cursor.
func (o Outcome[R]) Err(offset int) error {
	switch o.Status {
	case Succeeded:
		return nil
	case Recoverable:
		return ErrNoMatch
	default:
		return &FatalError{Trace: o.Trace, Offset: offset}
	}
}
