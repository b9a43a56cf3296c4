package cut

import (
	"strings"
)

type Status uint8

const (
	Succeeded Status = iota
	Recoverable
	Unrecoverable
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "Success"
	case Recoverable:
		return "Recoverable"
	case Unrecoverable:
		return "Unrecoverable"
	default:
		return "Unknown"
	}
}

type ReasonKind uint8

const (
	Alternative ReasonKind = iota
	Guard
	EndOfInput
	Origin
	Rule
	NoProgress
)

// Reason is one frame of the trace carried by an unrecoverable failure.
type Reason struct {
	Kind ReasonKind
	Name string
}

func RuleReason(name string) Reason {
	return Reason{Kind: Rule, Name: name}
}

func (r Reason) String() string {
	switch r.Kind {
	case Alternative:
		return "Alternative"
	case Guard:
		return "Guard"
	case EndOfInput:
		return "End"
	case Origin:
		return "Origin"
	case Rule:
		return "Rule: " + r.Name
	case NoProgress:
		return "NoProgress"
	default:
		return "Unknown"
	}
}

// Trace lists frames innermost first.
type Trace []Reason

func (t Trace) String() string {
	lines := make([]string, len(t))
	for i, r := range t {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// Rules returns the names of the Rule frames, innermost first.
func (t Trace) Rules() []string {
	var out []string
	for _, r := range t {
		if r.Kind == Rule {
			out = append(out, r.Name)
		}
	}
	return out
}

// Outcome is the result of running a parser once.
type Outcome[R any] struct {
	Value  R
	Status Status
	Trace  Trace
}

func Success[R any](v R) Outcome[R] {
	return Outcome[R]{Value: v, Status: Succeeded}
}

func Fail[R any]() Outcome[R] {
	return Outcome[R]{Status: Recoverable}
}

func Fatal[R any](reasons ...Reason) Outcome[R] {
	t := make(Trace, len(reasons), len(reasons)+4)
	copy(t, reasons)
	return Outcome[R]{Status: Unrecoverable, Trace: t}
}

func (o Outcome[R]) Ok() bool {
	return o.Status == Succeeded
}

func (o Outcome[R]) Fatal() bool {
	return o.Status == Unrecoverable
}

// Push appends a frame to an unrecoverable outcome and leaves any other
// outcome alone.
func (o Outcome[R]) Push(r Reason) Outcome[R] {
	if o.Status == Unrecoverable {
		o.Trace = append(o.Trace, r)
	}
	return o
}

// Retype carries a failure over to a parser with a different result type.
// It must not be called on a successful outcome.
func Retype[S, R any](o Outcome[R]) Outcome[S] {
	if o.Status == Succeeded {
		panic("cut: retype of a successful outcome")
	}
	return Outcome[S]{Status: o.Status, Trace: o.Trace}
}
