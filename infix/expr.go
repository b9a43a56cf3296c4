package infix

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrNoEnv        = errors.New("assignment without an environment")
)

// Env holds variable bindings. Assignments write to it.
type Env map[string]float64

// Expr is a parsed statement. String renders it as an s-expression.
type Expr interface {
	String() string
	Eval(env Env) (float64, error)
}

type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (n Number) Eval(Env) (float64, error) {
	return float64(n), nil
}

type Var string

func (v Var) String() string {
	return string(v)
}

func (v Var) Eval(env Env) (float64, error) {
	f, ok := env[string(v)]
	if !ok {
		return 0, fmt.Errorf("undefined variable %q", string(v))
	}
	return f, nil
}

type Unary struct {
	Op string
	X  Expr
}

func (u *Unary) String() string {
	return fmt.Sprintf("(%s %v)", u.Op, u.X)
}

func (u *Unary) Eval(env Env) (float64, error) {
	x, err := u.X.Eval(env)
	if err != nil {
		return 0, err
	}
	return -x, nil
}

type Binary struct {
	Op   string
	X, Y Expr
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %v %v)", b.Op, b.X, b.Y)
}

func (b *Binary) Eval(env Env) (float64, error) {
	x, err := b.X.Eval(env)
	if err != nil {
		return 0, err
	}
	y, err := b.Y.Eval(env)
	if err != nil {
		return 0, err
	}
	switch b.Op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return 0, ErrDivideByZero
		}
		return x / y, nil
	}
	return 0, fmt.Errorf("unknown operator %q", b.Op)
}

type Assign struct {
	Name string
	X    Expr
}

func (a *Assign) String() string {
	return fmt.Sprintf("(= %s %v)", a.Name, a.X)
}

func (a *Assign) Eval(env Env) (float64, error) {
	if env == nil {
		return 0, fmt.Errorf("assign %s: %w", a.Name, ErrNoEnv)
	}
	x, err := a.X.Eval(env)
	if err != nil {
		return 0, err
	}
	env[a.Name] = x
	return x, nil
}
