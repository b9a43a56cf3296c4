package cut

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

type position struct {
	file string
	line int
	rule string
}

func (p position) String() string {
	return fmt.Sprintf("%v:%v", p.file, p.line)
}

type GrammarError struct {
	Pos     string
	Rule    string
	RulePos string
	Message string
}

func (e *GrammarError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%v: %v (inside %q at %v)", e.Pos, e.Message, e.Rule, e.RulePos)
	}
	return fmt.Sprintf("%v: %v", e.Pos, e.Message)
}

// Grammar is a set of named rules sharing one result type. Rules may refer to
// each other, and to themselves, through Call before they are defined.
type Grammar[T, R any] struct {
	Start string

	rules   []Parser[T, R]
	names   []string
	nameIdx map[string]int

	// list of pos for each name
	callPos map[string][]int
	// pos of each numbered rule
	rulePos []int
	posInfo []position

	// one shared parser per called rule
	callers map[string]Parser[T, R]
	frozen  bool

	current string
	pos     int
	errors  []error
	err     error
}

func NewGrammar[T, R any](start string) *Grammar[T, R] {
	g := &Grammar[T, R]{
		Start:   start,
		nameIdx: make(map[string]int),
		callPos: make(map[string][]int),
		callers: make(map[string]Parser[T, R]),
	}
	g.pos = g.markPosition()
	return g
}

func (g *Grammar[T, R]) Err() error {
	return g.err
}

func (g *Grammar[T, R]) Errors() []error {
	if g.errors == nil {
		return []error{}
	}
	return g.errors
}

func (g *Grammar[T, R]) Errorf(pos int, s string, args ...any) {
	p := g.posInfo[pos]
	err := &GrammarError{
		Pos:     p.String(),
		Message: fmt.Sprintf(s, args...),
	}
	if p.rule != "" {
		err.Rule = p.rule
		if idx, ok := g.nameIdx[p.rule]; ok {
			err.RulePos = g.posInfo[g.rulePos[idx]].String()
		}
	}
	if g.err == nil {
		g.err = err
	}
	g.errors = append(g.errors, err)
}

func (g *Grammar[T, R]) markPosition() int {
	_, file, no, ok := runtime.Caller(2)
	if !ok {
		return g.mark("", 0)
	}
	if base, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(base, file); err == nil {
			file = rel
		}
	}
	return g.mark(file, no)
}

func (g *Grammar[T, R]) mark(file string, line int) int {
	p := len(g.posInfo)
	g.posInfo = append(g.posInfo, position{file: file, line: line, rule: g.current})
	return p
}

func (g *Grammar[T, R]) Define(name string, p Parser[T, R]) {
	if g.frozen {
		panic(lateError(2, "cant define %q, grammar already checked", name))
	}
	g.define(g.markPosition(), name, p)
}

// DefineAt is Define for rules that come from a grammar file rather than Go
// source; errors about the rule will point at file:line.
func (g *Grammar[T, R]) DefineAt(file string, line int, name string, p Parser[T, R]) {
	if g.frozen {
		panic(&GrammarError{Pos: position{file: file, line: line}.String(), Message: fmt.Sprintf("cant define %q, grammar already checked", name)})
	}
	g.define(g.mark(file, line), name, p)
}

func (g *Grammar[T, R]) define(pos int, name string, p Parser[T, R]) {
	if old, ok := g.nameIdx[name]; ok {
		oldPos := g.posInfo[g.rulePos[old]]
		g.Errorf(pos, "cant redefine %q, already defined at %v", name, oldPos)
		return
	}
	if p == nil {
		g.Errorf(pos, "rule %q has no parser", name)
		return
	}
	ruleNum := len(g.names)
	g.names = append(g.names, name)
	g.nameIdx[name] = ruleNum
	g.rulePos = append(g.rulePos, pos)
	g.rules = append(g.rules, p)
}

// Enter makes later Call and CallAt positions belong to the named rule, so
// that errors report which rule the reference was made from. An empty name
// leaves every rule.
func (g *Grammar[T, R]) Enter(name string) {
	g.current = name
}

// Call refers to a rule by name. Unrecoverable failures passing out of the
// rule gain a frame naming it, and the rule logs entry and exit when the
// "cut" logger allows debug messages.
//
// Once Check has passed the grammar is frozen: Call returns the shared
// parser for the rule without recording anything, so rules built while
// parsing are safe to run from several goroutines. Calling an undefined rule
// on a frozen grammar panics with a *GrammarError.
func (g *Grammar[T, R]) Call(name string) Parser[T, R] {
	if g.frozen {
		return g.lateCall(name)
	}
	return g.call(g.markPosition(), name)
}

func (g *Grammar[T, R]) CallAt(file string, line int, name string) Parser[T, R] {
	if g.frozen {
		return g.lateCall(name)
	}
	return g.call(g.mark(file, line), name)
}

func (g *Grammar[T, R]) call(pos int, name string) Parser[T, R] {
	g.callPos[name] = append(g.callPos[name], pos)
	return g.caller(name)
}

func (g *Grammar[T, R]) caller(name string) Parser[T, R] {
	if p, ok := g.callers[name]; ok {
		return p
	}
	rule := Debug(name, Lazy(func() Parser[T, R] {
		idx, ok := g.nameIdx[name]
		if !ok {
			return func(Cursor[T]) Outcome[R] { return Fail[R]() }
		}
		return g.rules[idx]
	}))
	p := func(c Cursor[T]) Outcome[R] {
		return rule(c).Push(RuleReason(name))
	}
	g.callers[name] = p
	return p
}

func (g *Grammar[T, R]) lateCall(name string) Parser[T, R] {
	if p, ok := g.callers[name]; ok {
		return p
	}
	panic(lateError(3, "missing rule %q", name))
}

// lateError builds an error for misuse after freezing without touching the
// position tables. skip counts frames above lateError, as in runtime.Caller.
func lateError(skip int, s string, args ...any) *GrammarError {
	err := &GrammarError{Message: fmt.Sprintf(s, args...)}
	if _, file, line, ok := runtime.Caller(skip); ok {
		err.Pos = position{file: filepath.Base(file), line: line}.String()
	}
	return err
}

func (g *Grammar[T, R]) Check() error {
	if g.err != nil || g.frozen {
		return g.err
	}
	for name, pos := range g.callPos {
		if _, ok := g.nameIdx[name]; !ok {
			for _, p := range pos {
				g.Errorf(p, "missing rule %q", name)
			}
		}
	}

	for n, name := range g.names {
		if name != g.Start && g.callPos[name] == nil {
			g.Errorf(g.rulePos[n], "unused rule %q", name)
		}
	}

	if g.Start == "" {
		g.Errorf(g.pos, "starting rule undefined")
	} else if _, ok := g.nameIdx[g.Start]; !ok {
		g.Errorf(g.pos, "starting rule %q is missing", g.Start)
	}

	if g.err == nil {
		g.freeze()
	}
	return g.err
}

func (g *Grammar[T, R]) freeze() {
	for _, name := range g.names {
		g.caller(name)
	}
	g.frozen = true
}

// Parser returns the start rule once the grammar checks out.
func (g *Grammar[T, R]) Parser() (Parser[T, R], error) {
	if g.Check() != nil {
		return nil, g.err
	}
	return g.rules[g.nameIdx[g.Start]], nil
}

func (g *Grammar[T, R]) Rule(name string) (Parser[T, R], bool) {
	idx, ok := g.nameIdx[name]
	if !ok {
		return nil, false
	}
	return g.rules[idx], true
}

func BuildGrammar[T, R any](start string, stub func(*Grammar[T, R])) (*Grammar[T, R], error) {
	if stub == nil {
		return nil, errors.New("missing grammar body")
	}
	g := NewGrammar[T, R](start)
	g.pos = g.markPosition()
	stub(g)
	return g, g.Check()
}

func BuildParser[T, R any](start string, stub func(*Grammar[T, R])) (Parser[T, R], error) {
	g, err := BuildGrammar(start, stub)
	if err != nil {
		return nil, err
	}
	return g.Parser()
}
