package hostarith

import (
	"errors"
	"fmt"
	"unsafe"
)

// Integer is a host integer type.
type Integer interface {
	int8 | int16 | int32 | int64
}

var (
	ErrIntegerOverflow = errors.New("integer overflow")
	ErrDivideByZero    = errors.New("integer division by zero")
)

// Int applies op to two's-complement operands of one width. Division
// truncates toward zero. A result that does not fit the width is an error,
// not a wrapped value.
func Int[I Integer](op Op, a, b I) (I, error) {
	lowest := minOf[I]()
	switch op {
	case Add:
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return 0, overflow(op, a, b)
		}
		return r, nil
	case Sub:
		r := a - b
		if (b > 0 && r > a) || (b < 0 && r < a) {
			return 0, overflow(op, a, b)
		}
		return r, nil
	case Mul:
		if a == 0 || b == 0 {
			return 0, nil
		}
		r := a * b
		if (a == -1 && b == lowest) || (b == -1 && a == lowest) || r/b != a {
			return 0, overflow(op, a, b)
		}
		return r, nil
	case Div:
		if b == 0 {
			return 0, fmt.Errorf("%w: %d / 0", ErrDivideByZero, a)
		}
		if a == lowest && b == -1 {
			return 0, overflow(op, a, b)
		}
		return a / b, nil
	case Neg:
		if a == lowest {
			return 0, fmt.Errorf("%w: -(%d)", ErrIntegerOverflow, a)
		}
		return -a, nil
	default:
		return 0, fmt.Errorf("%w: %s on integers", ErrOperation, op)
	}
}

func overflow[I Integer](op Op, a, b I) error {
	return fmt.Errorf("%w: %d %s %d", ErrIntegerOverflow, a, op, b)
}

func minOf[I Integer]() I {
	var z I
	return I(-1) << (8*unsafe.Sizeof(z) - 1)
}
