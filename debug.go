package cut

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cut")

// Debug logs entry to and exit from p under name. Nothing is logged, and
// nothing is formatted, unless the "cut" logger allows debug messages.
func Debug[T, R any](name string, p Parser[T, R]) Parser[T, R] {
	return func(c Cursor[T]) Outcome[R] {
		if !log.AllowLevel(commonlog.Debug) {
			return p(c)
		}
		start := c.Offset()
		log.Debugf("enter %s at %d", name, start)
		o := p(c)
		switch o.Status {
		case Succeeded:
			log.Debugf("exit %s at %d: matched %d items", name, c.Offset(), c.Offset()-start)
		case Recoverable:
			log.Debugf("exit %s at %d: no match", name, c.Offset())
		default:
			log.Debugf("exit %s at %d: fatal: %s", name, c.Offset(), o.Trace.Rules())
		}
		return o
	}
}

// Print logs a message when it is reached and always succeeds.
func Print[T any](args ...any) Parser[T, struct{}] {
	return func(c Cursor[T]) Outcome[struct{}] {
		if log.AllowLevel(commonlog.Debug) {
			log.Debug("print", "offset", c.Offset(), "message", fmt.Sprint(args...))
		}
		return Success(struct{}{})
	}
}
