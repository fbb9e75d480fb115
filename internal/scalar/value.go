package scalar

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"hostfold/internal/fpenv"
	"hostfold/internal/kind"
)

// Value is a source scalar of a kind known only at run time. Bits holds the
// encoding: the fixed-size pattern for numeric and logical kinds, the code
// units (little-endian, Width bytes each) for CHARACTER.
type Value struct {
	Kind kind.SourceKind
	Bits []byte
}

var (
	// ErrKind reports an operation applied to a kind it does not support.
	ErrKind = errors.New("operation not defined for kind")
	// ErrRange reports an integer that does not fit its kind.
	ErrRange = errors.New("value out of range for kind")
)

// Check validates the encoding length against the kind.
func (v Value) Check() error {
	if !kind.Valid(v.Kind) {
		return fmt.Errorf("%w: %s", ErrKind, v.Kind)
	}
	size, fixed := v.Kind.ByteSize()
	if fixed && len(v.Bits) != size {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrSize, v.Kind, size, len(v.Bits))
	}
	if !fixed && len(v.Bits)%size != 0 {
		return fmt.Errorf("%w: %s code units are %d bytes, have %d", ErrSize, v.Kind, size, len(v.Bits))
	}
	return nil
}

// Equal reports bit-for-bit equality.
func (v Value) Equal(w Value) bool {
	return v.Kind == w.Kind && string(v.Bits) == string(w.Bits)
}

// Zero returns the all-zero scalar of a fixed-size kind.
func Zero(k kind.SourceKind) Value {
	size, _ := k.ByteSize()
	if k.Category == kind.Character {
		size = 0
	}
	return Value{Kind: k, Bits: make([]byte, size)}
}

// Of wraps a typed scalar into a Value.
func Of[S Fixed](k kind.SourceKind, s S) Value {
	return Value{Kind: k, Bits: Bytes(s)}
}

// As extracts a typed scalar from a Value.
func As[S Fixed](v Value) (S, error) {
	return Load[S](v.Bits)
}

// Parts splits a COMPLEX value into its REAL parts.
func (v Value) Parts() (re, im Value, err error) {
	if v.Kind.Category != kind.Complex {
		return Value{}, Value{}, fmt.Errorf("%w: %s has no parts", ErrKind, v.Kind)
	}
	if err := v.Check(); err != nil {
		return Value{}, Value{}, err
	}
	n := len(v.Bits) / 2
	part := v.Kind.Part()
	return Value{Kind: part, Bits: append([]byte(nil), v.Bits[:n]...)},
		Value{Kind: part, Bits: append([]byte(nil), v.Bits[n:]...)}, nil
}

// Compose builds a COMPLEX value from two REAL values of the matching kind.
func Compose(re, im Value) (Value, error) {
	if re.Kind != im.Kind || re.Kind.Category != kind.Real {
		return Value{}, fmt.Errorf("%w: cannot compose %s and %s", ErrKind, re.Kind, im.Kind)
	}
	bits := make([]byte, 0, len(re.Bits)+len(im.Bits))
	bits = append(bits, re.Bits...)
	bits = append(bits, im.Bits...)
	return Value{Kind: kind.Of(kind.Complex, re.Kind.Width), Bits: bits}, nil
}

// DecodeReal takes apart a REAL value.
func DecodeReal(v Value) (Decoded, error) {
	f, ok := FormatOf(v.Kind)
	if !ok || v.Kind.Category != kind.Real {
		return Decoded{}, fmt.Errorf("%w: %s is not REAL", ErrKind, v.Kind)
	}
	return f.Decode(v.Bits)
}

// EncodeReal rounds d into a REAL kind.
func EncodeReal(k kind.SourceKind, d Decoded, r fpenv.Rounding, flush bool) (Value, fpenv.Flags, error) {
	f, ok := FormatOf(k)
	if !ok || k.Category != kind.Real {
		return Value{}, 0, fmt.Errorf("%w: %s is not REAL", ErrKind, k)
	}
	bits, flags := f.Encode(d, r, flush)
	return Value{Kind: k, Bits: bits}, flags, nil
}

// Convert changes the kind of a REAL or COMPLEX value, rounding with r.
// REAL converts to COMPLEX with a zero imaginary part; COMPLEX converts to
// REAL by dropping the imaginary part.
func Convert(v Value, to kind.SourceKind, r fpenv.Rounding, flush bool) (Value, fpenv.Flags, error) {
	if v.Kind == to {
		return Value{Kind: to, Bits: append([]byte(nil), v.Bits...)}, 0, nil
	}
	from := v.Kind.Category
	if (from != kind.Real && from != kind.Complex) || (to.Category != kind.Real && to.Category != kind.Complex) {
		return Value{}, 0, fmt.Errorf("%w: conversion %s to %s", ErrKind, v.Kind, to)
	}
	if err := v.Check(); err != nil {
		return Value{}, 0, err
	}
	re, im := v, Zero(v.Kind.Part())
	if from == kind.Complex {
		var err error
		if re, im, err = v.Parts(); err != nil {
			return Value{}, 0, err
		}
	}
	part := to.Part()
	reOut, reFlags, err := convertReal(re, part, r, flush)
	if err != nil {
		return Value{}, 0, err
	}
	if to.Category == kind.Real {
		return reOut, reFlags, nil
	}
	imOut, imFlags, err := convertReal(im, part, r, flush)
	if err != nil {
		return Value{}, 0, err
	}
	out, err := Compose(reOut, imOut)
	return out, reFlags | imFlags, err
}

func convertReal(v Value, to kind.SourceKind, r fpenv.Rounding, flush bool) (Value, fpenv.Flags, error) {
	d, err := DecodeReal(v)
	if err != nil {
		return Value{}, 0, err
	}
	return EncodeReal(to, d, r, flush)
}

// IntegerValue returns the two's-complement value of an INTEGER scalar.
func IntegerValue(v Value) (*big.Int, error) {
	if v.Kind.Category != kind.Integer {
		return nil, fmt.Errorf("%w: %s is not INTEGER", ErrKind, v.Kind)
	}
	if err := v.Check(); err != nil {
		return nil, err
	}
	x := leToInt(v.Bits)
	bits := 8 * len(v.Bits)
	if x.Bit(bits-1) == 1 {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	return x, nil
}

// IntegerOf encodes x into an INTEGER kind, failing with ErrRange when it
// does not fit.
func IntegerOf(k kind.SourceKind, x *big.Int) (Value, error) {
	if k.Category != kind.Integer || !kind.Valid(k) {
		return Value{}, fmt.Errorf("%w: %s is not INTEGER", ErrKind, k)
	}
	size, _ := k.ByteSize()
	bits := uint(8 * size)
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if x.Cmp(limit) >= 0 || x.Cmp(new(big.Int).Neg(limit)) < 0 {
		return Value{}, fmt.Errorf("%w: %s does not fit %s", ErrRange, x, k)
	}
	u := new(big.Int).Set(x)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	return Value{Kind: k, Bits: intToLE(u, size)}, nil
}

// LogicalOf encodes a truth value; true is 1 in the lowest byte.
func LogicalOf(k kind.SourceKind, b bool) Value {
	v := Zero(k)
	if b && len(v.Bits) > 0 {
		v.Bits[0] = 1
	}
	return v
}

// Truth reads a LOGICAL scalar: any nonzero bit is true.
func Truth(v Value) bool {
	for _, b := range v.Bits {
		if b != 0 {
			return true
		}
	}
	return false
}

// CharacterOf encodes text in a CHARACTER kind. CHARACTER(1) keeps the
// UTF-8 bytes, CHARACTER(2) uses UTF-16 code units, CHARACTER(4) code points.
func CharacterOf(k kind.SourceKind, s string) (Value, error) {
	var units []uint32
	switch k.Width {
	case 1:
		return Value{Kind: k, Bits: []byte(s)}, nil
	case 2:
		for _, u := range utf16.Encode([]rune(s)) {
			units = append(units, uint32(u))
		}
	case 4:
		for _, r := range s {
			u, err := safecast.Conv[uint32](r)
			if err != nil {
				return Value{}, err
			}
			units = append(units, u)
		}
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrKind, k)
	}
	width := int(k.Width)
	bits := make([]byte, 0, len(units)*width)
	for _, u := range units {
		for i := 0; i < width; i++ {
			bits = append(bits, byte(u>>(8*i)))
		}
	}
	return Value{Kind: k, Bits: bits}, nil
}

// CharacterString decodes a CHARACTER scalar to text.
func CharacterString(v Value) (string, error) {
	if v.Kind.Category != kind.Character {
		return "", fmt.Errorf("%w: %s is not CHARACTER", ErrKind, v.Kind)
	}
	if err := v.Check(); err != nil {
		return "", err
	}
	return characterText(v), nil
}

// Parse reads the source text of a literal of kind k. REAL and COMPLEX
// literals are rounded with r; the returned flags are those the rounding
// raised. CHARACTER literals are stored in NFC.
func Parse(k kind.SourceKind, text string, r fpenv.Rounding) (Value, fpenv.Flags, error) {
	text = strings.TrimSpace(text)
	switch k.Category {
	case kind.Integer:
		x, ok := new(big.Int).SetString(text, 0)
		if !ok {
			return Value{}, 0, fmt.Errorf("invalid %s literal %q", k, text)
		}
		v, err := IntegerOf(k, x)
		return v, 0, err
	case kind.Real:
		d, err := parseDecoded(text)
		if err != nil {
			return Value{}, 0, fmt.Errorf("invalid %s literal %q: %w", k, text, err)
		}
		return EncodeReal(k, d, r, false)
	case kind.Complex:
		inner := strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
		reText, imText, ok := strings.Cut(inner, ",")
		if !ok {
			return Value{}, 0, fmt.Errorf("invalid %s literal %q (expected (re,im))", k, text)
		}
		re, reFlags, err := Parse(k.Part(), reText, r)
		if err != nil {
			return Value{}, 0, err
		}
		im, imFlags, err := Parse(k.Part(), imText, r)
		if err != nil {
			return Value{}, 0, err
		}
		v, err := Compose(re, im)
		return v, reFlags | imFlags, err
	case kind.Logical:
		switch strings.ToLower(strings.Trim(text, ".")) {
		case "true", "t":
			return LogicalOf(k, true), 0, nil
		case "false", "f":
			return LogicalOf(k, false), 0, nil
		}
		return Value{}, 0, fmt.Errorf("invalid %s literal %q", k, text)
	case kind.Character:
		v, err := CharacterOf(k, norm.NFC.String(strings.Trim(text, `"'`)))
		return v, 0, err
	}
	return Value{}, 0, fmt.Errorf("%w: %s", ErrKind, k)
}

// literalPrec leaves two spare bits over the widest REAL significand, so a
// literal held at this precision with round-to-odd is rounded once to the kind.
const literalPrec = 512

// literalExpLimit bounds decimal exponents parsed exactly. Literals beyond it
// lie far outside every REAL range.
const literalExpLimit = 100000

func parseDecoded(text string) (Decoded, error) {
	lower := strings.ToLower(text)
	neg := strings.HasPrefix(lower, "-")
	switch strings.TrimLeft(lower, "+-") {
	case "inf", "infinity":
		return Inf(neg), nil
	case "nan":
		return NaN(), nil
	}
	x, err := parseLiteral(lower)
	if err != nil {
		return Decoded{}, err
	}
	if x.Sign() == 0 && neg {
		x.Neg(x)
	}
	if x.Acc() != big.Exact {
		x = roundToOdd(x)
	}
	return Finite(x), nil
}

// parseLiteral truncates the decimal literal to literalPrec bits; Acc reports
// whether anything was dropped.
func parseLiteral(lower string) (*big.Float, error) {
	if strings.ContainsFunc(lower, func(c rune) bool { return !strings.ContainsRune("0123456789.e+-", c) }) {
		return nil, fmt.Errorf("malformed decimal literal %q", lower)
	}
	if i := strings.IndexByte(lower, 'e'); i >= 0 {
		if e, err := strconv.Atoi(lower[i+1:]); err == nil && (e > literalExpLimit || e < -literalExpLimit) {
			x, _, err := big.ParseFloat(lower, 10, literalPrec, big.ToZero)
			if err != nil {
				return nil, err
			}
			return roundToOdd(x), nil
		}
	}
	r, ok := new(big.Rat).SetString(lower)
	if !ok {
		return nil, fmt.Errorf("malformed decimal literal %q", lower)
	}
	return new(big.Float).SetPrec(literalPrec).SetMode(big.ToZero).SetRat(r), nil
}

// roundToOdd forces the last bit of a value truncated toward zero to 1.
func roundToOdd(x *big.Float) *big.Float {
	if x.Sign() == 0 {
		return x
	}
	neg := x.Signbit()
	abs := new(big.Float).Abs(x)
	exp := abs.MantExp(nil)
	m, _ := new(big.Float).SetMantExp(abs, literalPrec-exp).Int(nil)
	m.SetBit(m, 0, 1)
	out := new(big.Float).SetPrec(literalPrec).SetInt(m)
	out.SetMantExp(out, exp-literalPrec)
	if neg {
		out.Neg(out)
	}
	return out
}

// Text renders v as source-like text. REAL and COMPLEX parts print their
// exact binary value: the shortest round-trip form when that is exact,
// otherwise every significant decimal digit.
func Text(v Value) string {
	switch v.Kind.Category {
	case kind.Integer:
		x, err := IntegerValue(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return x.String()
	case kind.Real:
		d, err := DecodeReal(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		f, _ := FormatOf(v.Kind)
		return decodedText(d, f)
	case kind.Complex:
		re, im, err := v.Parts()
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return "(" + Text(re) + "," + Text(im) + ")"
	case kind.Logical:
		if Truth(v) {
			return ".TRUE."
		}
		return ".FALSE."
	case kind.Character:
		return fmt.Sprintf("%q", characterText(v))
	}
	return fmt.Sprintf("<%s>", v.Kind)
}

func decodedText(d Decoded, f Format) string {
	switch d.Class {
	case ClassNaN:
		return "NaN"
	case ClassInf:
		if d.Neg {
			return "-Inf"
		}
		return "+Inf"
	}
	x := new(big.Float).SetPrec(uint(f.Digits())).Set(d.Value)
	if s := x.Text('g', -1); textIsExact(s, x) {
		return s
	}
	// x = m × 2**(exp-prec) with m odd, so frac fraction digits are exact.
	frac := int(x.MinPrec()) - x.MantExp(nil)
	if frac <= 0 {
		return x.Text('f', 0)
	}
	digits := strings.TrimLeft(strings.Replace(strings.TrimPrefix(x.Text('f', frac), "-"), ".", "", 1), "0")
	return x.Text('g', len(digits))
}

func textIsExact(s string, x *big.Float) bool {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return false
	}
	xr, _ := x.Rat(nil)
	return xr != nil && r.Cmp(xr) == 0
}

func characterText(v Value) string {
	width := int(v.Kind.Width)
	switch width {
	case 1:
		return string(v.Bits)
	case 2:
		units := make([]uint16, 0, len(v.Bits)/2)
		for i := 0; i+1 < len(v.Bits); i += 2 {
			units = append(units, uint16(v.Bits[i])|uint16(v.Bits[i+1])<<8)
		}
		return string(utf16.Decode(units))
	default:
		runes := make([]rune, 0, len(v.Bits)/4)
		for i := 0; i+3 < len(v.Bits); i += 4 {
			u := uint32(v.Bits[i]) | uint32(v.Bits[i+1])<<8 | uint32(v.Bits[i+2])<<16 | uint32(v.Bits[i+3])<<24
			r, err := safecast.Conv[rune](u)
			if err != nil {
				r = utf8.RuneError
			}
			runes = append(runes, r)
		}
		return string(runes)
	}
}
