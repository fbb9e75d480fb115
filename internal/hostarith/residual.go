package hostarith

import "math/big"

// Below eftFloor the FMA residual of a product, quotient or square root may
// itself underflow, so the sign of the rounding error is taken from an exact
// big.Float comparison instead.
const eftFloor = 0x1p-969

// twoSumError returns the exact error x+y-s of s = fl(x+y) (Knuth's TwoSum).
// Addition never underflows, so the error is exact for every finite s.
func twoSumError(x, y, s float64) float64 {
	yv := s - x
	xv := s - yv
	return (x - xv) + (y - yv)
}

// Products of two float64 values are exact at 106 bits.
const exactProduct = 106

func exactMul(x, y float64) *big.Float {
	return new(big.Float).SetPrec(exactProduct).Mul(big.NewFloat(x), big.NewFloat(y))
}

// mulResidualSign is the sign of x*y-p.
func mulResidualSign(x, y, p float64) int {
	return exactMul(x, y).Cmp(big.NewFloat(p))
}

// divResidualSign is the sign of x/y-q, that is sign(x-q*y)·sign(y).
func divResidualSign(x, y, q float64) int {
	s := big.NewFloat(x).Cmp(exactMul(q, y))
	if y < 0 {
		s = -s
	}
	return s
}

// sqrtResidualSign is the sign of sqrt(x)-r, the sign of x-r*r.
func sqrtResidualSign(x, r float64) int {
	return big.NewFloat(x).Cmp(exactMul(r, r))
}
