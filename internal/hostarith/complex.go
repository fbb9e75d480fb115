package hostarith

import (
	"fmt"
	"math"

	"hostfold/internal/fpenv"
)

// Complex64 applies op to complex64 operands. Each part is computed by a
// sequence of Real operations, so the raised conditions are those of the
// individual steps.
func Complex64(e *fpenv.Env, op Op, a, b complex64) (complex64, error) {
	re, im, err := complexOp(e, op, real(a), imag(a), real(b), imag(b))
	return complex(re, im), err
}

// Complex128 applies op to complex128 operands.
func Complex128(e *fpenv.Env, op Op, a, b complex128) (complex128, error) {
	re, im, err := complexOp(e, op, real(a), imag(a), real(b), imag(b))
	return complex(re, im), err
}

// steps evaluates Real operations in order and keeps the first trap.
type steps struct {
	env *fpenv.Env
	err error
}

func step[F Float](s *steps, op Op, a, b F) F {
	r, err := Real(s.env, op, a, b)
	if s.err == nil {
		s.err = err
	}
	return r
}

func complexOp[F Float](e *fpenv.Env, op Op, ar, ai, br, bi F) (F, F, error) {
	s := &steps{env: e}
	var re, im F
	switch op {
	case Add, Sub:
		re = step(s, op, ar, br)
		im = step(s, op, ai, bi)
	case Neg:
		re, im = -ar, -ai
	case Mul:
		re = step(s, Sub, step(s, Mul, ar, br), step(s, Mul, ai, bi))
		im = step(s, Add, step(s, Mul, ar, bi), step(s, Mul, ai, br))
	case Div:
		re, im = smithDiv(s, ar, ai, br, bi)
	default:
		return 0, 0, fmt.Errorf("%w: %s on complex operands", ErrOperation, op)
	}
	return re, im, s.err
}

// smithDiv divides (a+bi)/(c+di) scaling by the larger part of the divisor,
// which keeps the intermediate products from overflowing.
func smithDiv[F Float](s *steps, a, b, c, d F) (F, F) {
	if c == 0 && d == 0 {
		return step(s, Div, a, c), step(s, Div, b, c)
	}
	if math.Abs(float64(c)) >= math.Abs(float64(d)) {
		r := step(s, Div, d, c)
		den := step(s, Add, c, step(s, Mul, d, r))
		re := step(s, Div, step(s, Add, a, step(s, Mul, b, r)), den)
		im := step(s, Div, step(s, Sub, b, step(s, Mul, a, r)), den)
		return re, im
	}
	r := step(s, Div, c, d)
	den := step(s, Add, step(s, Mul, c, r), d)
	re := step(s, Div, step(s, Add, step(s, Mul, a, r), b), den)
	im := step(s, Div, step(s, Sub, step(s, Mul, b, r), a), den)
	return re, im
}
