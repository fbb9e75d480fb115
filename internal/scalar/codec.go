package scalar

import (
	"fmt"
	"math/big"

	"hostfold/internal/fpenv"
)

// Class is the IEEE-754 class of a decoded value.
type Class uint8

const (
	ClassZero Class = iota
	ClassSubnormal
	ClassNormal
	ClassInf
	ClassNaN
)

func (c Class) String() string {
	switch c {
	case ClassZero:
		return "zero"
	case ClassSubnormal:
		return "subnormal"
	case ClassNormal:
		return "normal"
	case ClassInf:
		return "inf"
	case ClassNaN:
		return "nan"
	default:
		return fmt.Sprintf("Class(%d)", c)
	}
}

// Decoded is a floating-point value taken apart. Value is exact and carries
// the sign for finite values; it is nil for Inf and NaN.
type Decoded struct {
	Class     Class
	Neg       bool
	Signaling bool // NaN only
	Value     *big.Float
}

// IsFinite reports whether d is zero, subnormal or normal.
func (d Decoded) IsFinite() bool {
	return d.Class != ClassInf && d.Class != ClassNaN
}

// Finite builds a Decoded for an exact finite value.
func Finite(x *big.Float) Decoded {
	if x.Sign() == 0 {
		return Decoded{Class: ClassZero, Neg: x.Signbit(), Value: new(big.Float).Set(x)}
	}
	return Decoded{Class: ClassNormal, Neg: x.Sign() < 0, Value: x}
}

// Inf builds an infinity of the given sign.
func Inf(neg bool) Decoded { return Decoded{Class: ClassInf, Neg: neg} }

// NaN builds a quiet NaN.
func NaN() Decoded { return Decoded{Class: ClassNaN} }

// Decode takes apart an encoding of f.
func (f Format) Decode(b []byte) (Decoded, error) {
	if len(b) != f.Size {
		return Decoded{}, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrSize, f.Name, f.Size, len(b))
	}
	raw := leToInt(b)
	mb := uint(f.mantBits())
	mant := new(big.Int).And(raw, lowMask(mb))
	biased := int(new(big.Int).And(new(big.Int).Rsh(raw, mb), lowMask(uint(f.ExpBits))).Int64())
	neg := raw.Bit(int(mb)+f.ExpBits) == 1
	frac := new(big.Int).And(mant, lowMask(uint(f.FracBits)))
	intBit := biased != 0
	if f.ExplicitInt {
		intBit = mant.Bit(f.FracBits) == 1
	}

	switch {
	case biased == f.maxBiased():
		if f.ExplicitInt && !intBit {
			// pseudo-infinity / pseudo-NaN: not a valid operand
			return Decoded{Class: ClassNaN, Neg: neg, Signaling: true}, nil
		}
		if frac.Sign() == 0 {
			return Inf(neg), nil
		}
		quiet := frac.Bit(f.FracBits-1) == 1
		return Decoded{Class: ClassNaN, Neg: neg, Signaling: !quiet}, nil
	case biased == 0:
		if mant.Sign() == 0 {
			z := new(big.Float)
			if neg {
				z.Neg(z)
			}
			return Decoded{Class: ClassZero, Neg: neg, Value: z}, nil
		}
		return Decoded{Class: ClassSubnormal, Neg: neg, Value: scaled(mant, f.Emin()-f.FracBits, neg)}, nil
	default:
		if f.ExplicitInt && !intBit {
			// unnormal
			return Decoded{Class: ClassNaN, Neg: neg, Signaling: true}, nil
		}
		sig := new(big.Int).Set(frac)
		sig.SetBit(sig, f.FracBits, 1)
		return Decoded{Class: ClassNormal, Neg: neg, Value: scaled(sig, biased-f.Bias()-f.FracBits, neg)}, nil
	}
}

// Encode rounds d into f. The returned flags are the IEEE conditions the
// rounding raised: overflow, underflow and inexact, or invalid for a
// signaling NaN.
func (f Format) Encode(d Decoded, r fpenv.Rounding, flush bool) ([]byte, fpenv.Flags) {
	switch d.Class {
	case ClassNaN:
		var flags fpenv.Flags
		if d.Signaling {
			flags = fpenv.Invalid
		}
		return f.quietNaN(d.Neg), flags
	case ClassInf:
		return f.inf(d.Neg), 0
	}
	x := d.Value
	if x == nil || x.Sign() == 0 {
		neg := d.Neg
		if x != nil {
			neg = x.Signbit()
		}
		return f.zero(neg), 0
	}
	neg := x.Sign() < 0
	lead := x.MantExp(nil) - 1
	quantum := f.Emin() - f.FracBits
	tiny := lead < f.Emin()

	prec := f.Digits()
	if tiny {
		prec = lead - quantum + 1
	}
	if prec <= 0 {
		if f.roundsAwayBelowQuantum(x, quantum, r) {
			if flush {
				return f.zero(neg), fpenv.Underflow | fpenv.Inexact
			}
			return f.assemble(neg, 0, big.NewInt(1)), fpenv.Underflow | fpenv.Inexact
		}
		return f.zero(neg), fpenv.Underflow | fpenv.Inexact
	}

	z := new(big.Float).SetMode(r.BigMode()).SetPrec(uint(prec)).Set(x)
	var flags fpenv.Flags
	if z.Acc() != big.Exact {
		flags |= fpenv.Inexact
		if tiny {
			flags |= fpenv.Underflow
		}
	}
	lead = z.MantExp(nil) - 1
	if lead > f.Emax() {
		return f.overflowed(neg, r), fpenv.Overflow | fpenv.Inexact
	}
	if lead < f.Emin() {
		if flush {
			return f.zero(neg), fpenv.Underflow | fpenv.Inexact
		}
		sig := integral(z, -quantum)
		return f.assemble(neg, 0, sig), flags
	}
	sig := integral(z, f.FracBits-lead)
	if !f.ExplicitInt {
		sig.SetBit(sig, f.FracBits, 0)
	}
	return f.assemble(neg, lead+f.Bias(), sig), flags
}

// roundsAwayBelowQuantum decides the rounding of a nonzero x smaller than the
// smallest subnormal 2^quantum: true means the result is the smallest
// subnormal, false means zero.
func (f Format) roundsAwayBelowQuantum(x *big.Float, quantum int, r fpenv.Rounding) bool {
	neg := x.Sign() < 0
	switch r {
	case fpenv.Upward:
		return !neg
	case fpenv.Downward:
		return neg
	case fpenv.TowardZero:
		return false
	}
	half := new(big.Float).SetMantExp(big.NewFloat(1), quantum-1)
	abs := new(big.Float).Abs(x)
	// exactly half rounds to the even neighbour, which is zero
	return abs.Cmp(half) > 0
}

func (f Format) overflowed(neg bool, r fpenv.Rounding) []byte {
	switch r {
	case fpenv.TowardZero:
		return f.maxFinite(neg)
	case fpenv.Upward:
		if neg {
			return f.maxFinite(true)
		}
	case fpenv.Downward:
		if !neg {
			return f.maxFinite(false)
		}
	}
	return f.inf(neg)
}

func (f Format) zero(neg bool) []byte {
	return f.assemble(neg, 0, new(big.Int))
}

func (f Format) inf(neg bool) []byte {
	m := new(big.Int)
	if f.ExplicitInt {
		m.SetBit(m, f.FracBits, 1)
	}
	return f.assemble(neg, f.maxBiased(), m)
}

func (f Format) quietNaN(neg bool) []byte {
	m := new(big.Int).SetBit(new(big.Int), f.FracBits-1, 1)
	if f.ExplicitInt {
		m.SetBit(m, f.FracBits, 1)
	}
	return f.assemble(neg, f.maxBiased(), m)
}

func (f Format) maxFinite(neg bool) []byte {
	return f.assemble(neg, f.maxBiased()-1, lowMask(uint(f.mantBits())))
}

// MaxFinite returns the encoding of the largest finite value of f.
func (f Format) MaxFinite(neg bool) []byte { return f.maxFinite(neg) }

// SmallestNormal returns the encoding of the smallest positive normal value.
func (f Format) SmallestNormal() []byte {
	m := new(big.Int)
	if f.ExplicitInt {
		m.SetBit(m, f.FracBits, 1)
	}
	return f.assemble(false, 1, m)
}

func (f Format) assemble(neg bool, biased int, mant *big.Int) []byte {
	mb := uint(f.mantBits())
	raw := new(big.Int).Lsh(big.NewInt(int64(biased)), mb)
	raw.Or(raw, mant)
	if neg {
		raw.SetBit(raw, int(mb)+f.ExpBits, 1)
	}
	return intToLE(raw, f.Size)
}

// scaled returns ±m·2^exp exactly.
func scaled(m *big.Int, exp int, neg bool) *big.Float {
	x := new(big.Float).SetInt(m)
	x.SetMantExp(x, exp)
	if neg {
		x.Neg(x)
	}
	return x
}

// integral returns |z|·2^shift, which must be an integer.
func integral(z *big.Float, shift int) *big.Int {
	q := new(big.Float).SetMantExp(new(big.Float).Abs(z), shift)
	i, _ := q.Int(nil)
	return i
}

func lowMask(n uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), n)
	return m.Sub(m, big.NewInt(1))
}

func leToInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}

func intToLE(x *big.Int, size int) []byte {
	be := x.Bytes()
	out := make([]byte, size)
	for i := 0; i < len(be) && i < size; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}
