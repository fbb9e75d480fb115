package hostarith

import (
	"fmt"
	"math"

	"hostfold/internal/fpenv"
)

// Float is a host floating-point type.
type Float interface {
	float32 | float64
}

// Real applies op to a and b (b is ignored by unary operations) and raises
// the resulting conditions in e. The value is the IEEE result under e's
// rounding direction whether or not a condition is trapped; a trapped
// condition is reported as a *fpenv.TrapError.
//
// float32 operations are evaluated in float64 and narrowed once. For these
// five operations binary64 has more than twice the precision of binary32
// plus two bits, so the narrowing gives the correctly rounded result.
func Real[F Float](e *fpenv.Env, op Op, a, b F) (F, error) {
	x, y := float64(a), float64(b)
	var o outcome
	switch op {
	case Add:
		o = add(x, y)
	case Sub:
		o = add(x, -y)
	case Mul:
		o = mul(x, y)
	case Div:
		o = div(x, y)
	case Sqrt:
		o = sqrt(x)
	case Neg:
		return -a, nil
	default:
		return 0, fmt.Errorf("%w: %s on reals", ErrOperation, op)
	}
	r, flags := round[F](o, e.Rounding(), e.FlushSubnormals())
	return r, e.Raise(flags)
}

// outcome is a float64 result rounded to nearest together with the sign of
// the error exact-v. Special outcomes (NaN, infinities produced from
// infinities, division by zero) are exact and skip rounding.
type outcome struct {
	v       float64
	dir     int
	flags   fpenv.Flags
	special bool
	cancel  bool // exact zero sum of operands of opposite sign
}

func specialOf(v float64, flags fpenv.Flags) outcome {
	return outcome{v: v, flags: flags, special: true}
}

func round[F Float](o outcome, mode fpenv.Rounding, flush bool) (F, fpenv.Flags) {
	if o.special {
		return F(o.v), o.flags
	}
	maxFinite, minNormal := limits[F]()
	flags := o.flags

	r := F(o.v)
	d := o.dir
	rf := float64(r)
	if math.IsInf(rf, 0) {
		return overflowed[F](rf < 0, mode), flags | fpenv.Overflow | fpenv.Inexact
	}
	if diff := o.v - rf; diff != 0 {
		d = sign(diff)
	}

	if d != 0 {
		flags |= fpenv.Inexact
		abs := math.Abs(rf)
		if abs < minNormal || (abs == minNormal && (d > 0) != (rf > 0)) {
			flags |= fpenv.Underflow
		}
		switch mode {
		case fpenv.Upward:
			if d > 0 {
				r = next(r, math.Inf(1))
			}
		case fpenv.Downward:
			if d < 0 {
				r = next(r, math.Inf(-1))
			}
		case fpenv.TowardZero:
			if (rf > 0 && d < 0) || (rf < 0 && d > 0) {
				r = next(r, 0)
			}
		}
		if math.Abs(float64(r)) > maxFinite {
			flags |= fpenv.Overflow
		}
	}

	if flush && r != 0 && math.Abs(float64(r)) < minNormal {
		r = F(math.Copysign(0, float64(r)))
		flags |= fpenv.Underflow | fpenv.Inexact
	}
	if o.cancel && r == 0 && mode == fpenv.Downward {
		r = F(math.Copysign(0, -1))
	}
	return r, flags
}

func limits[F Float]() (maxFinite, minNormal float64) {
	var z F
	if _, ok := any(z).(float32); ok {
		return math.MaxFloat32, 0x1p-126
	}
	return math.MaxFloat64, 0x1p-1022
}

func next[F Float](r F, toward float64) F {
	if v, ok := any(r).(float32); ok {
		return F(math.Nextafter32(v, float32(toward)))
	}
	return F(math.Nextafter(float64(r), toward))
}

// overflowed is the result of an overflow under mode: infinity when the
// direction points away from zero, the largest finite value otherwise.
func overflowed[F Float](neg bool, mode fpenv.Rounding) F {
	maxFinite, _ := limits[F]()
	toInf := mode == fpenv.NearestEven ||
		(mode == fpenv.Upward && !neg) ||
		(mode == fpenv.Downward && neg)
	v := maxFinite
	if toInf {
		v = math.Inf(1)
	}
	if neg {
		v = -v
	}
	return F(v)
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func anyNaN(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

func anyInf(xs ...float64) bool {
	for _, x := range xs {
		if math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

func add(x, y float64) outcome {
	s := x + y
	if anyNaN(x, y) {
		return specialOf(s, 0)
	}
	if math.IsNaN(s) {
		return specialOf(s, fpenv.Invalid)
	}
	if anyInf(x, y) {
		return specialOf(s, 0)
	}
	if math.IsInf(s, 0) {
		return outcome{v: s}
	}
	err := twoSumError(x, y, s)
	return outcome{
		v:      s,
		dir:    sign(err),
		cancel: s == 0 && err == 0 && math.Signbit(x) != math.Signbit(y),
	}
}

func mul(x, y float64) outcome {
	p := x * y
	if anyNaN(x, y) {
		return specialOf(p, 0)
	}
	if math.IsNaN(p) {
		return specialOf(p, fpenv.Invalid)
	}
	if anyInf(x, y) {
		return specialOf(p, 0)
	}
	if math.IsInf(p, 0) || x == 0 || y == 0 {
		return outcome{v: p}
	}
	if math.Abs(p) >= eftFloor {
		return outcome{v: p, dir: sign(math.FMA(x, y, -p))}
	}
	return outcome{v: p, dir: mulResidualSign(x, y, p)}
}

func div(x, y float64) outcome {
	q := x / y
	if anyNaN(x, y) {
		return specialOf(q, 0)
	}
	if math.IsNaN(q) {
		return specialOf(q, fpenv.Invalid)
	}
	if anyInf(x, y) {
		return specialOf(q, 0)
	}
	if y == 0 {
		return specialOf(q, fpenv.DivByZero)
	}
	if math.IsInf(q, 0) || x == 0 {
		return outcome{v: q}
	}
	if math.Abs(q) >= eftFloor && math.Abs(x) >= eftFloor {
		return outcome{v: q, dir: sign(math.FMA(-q, y, x)) * sign(y)}
	}
	return outcome{v: q, dir: divResidualSign(x, y, q)}
}

func sqrt(x float64) outcome {
	r := math.Sqrt(x)
	switch {
	case math.IsNaN(x):
		return specialOf(r, 0)
	case x < 0:
		return specialOf(r, fpenv.Invalid)
	case x == 0 || math.IsInf(x, 1):
		return specialOf(r, 0)
	}
	if x >= eftFloor {
		return outcome{v: r, dir: sign(math.FMA(-r, r, x))}
	}
	return outcome{v: r, dir: sqrtResidualSign(x, r)}
}
