// Package hostarith performs folding arithmetic with Go's native numeric
// types and reports the IEEE-754 conditions each operation raises into a
// software floating-point environment.
package hostarith

import (
	"errors"
	"fmt"
	"strings"
)

// Op is an arithmetic operation the folder can evaluate on the host.
type Op uint8

const (
	OpInvalid Op = iota
	Add
	Sub
	Mul
	Div
	Neg
	Sqrt
)

// ErrOperation reports an operation that is not defined for the category of
// its operands, such as the square root of an integer.
var ErrOperation = errors.New("operation not defined")

func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Neg:
		return "neg"
	case Sqrt:
		return "sqrt"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Arity returns the number of operands o takes.
func (o Op) Arity() int {
	switch o {
	case Neg, Sqrt:
		return 1
	case Add, Sub, Mul, Div:
		return 2
	default:
		return 0
	}
}

// ParseOp accepts an operator symbol or its name.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add":
		return Add, nil
	case "-", "sub":
		return Sub, nil
	case "*", "mul":
		return Mul, nil
	case "/", "div":
		return Div, nil
	case "neg", "negate":
		return Neg, nil
	case "sqrt":
		return Sqrt, nil
	default:
		return OpInvalid, fmt.Errorf("unknown operation %q (expected: add|sub|mul|div|neg|sqrt)", s)
	}
}
