package fpenv

import (
	"fmt"
	"math/big"
	"strings"
)

// Flags is a set of IEEE-754 exception conditions.
type Flags uint8

const (
	Invalid Flags = 1 << iota
	DivByZero
	Overflow
	Underflow
	Inexact
)

// AllFlags holds every condition.
const AllFlags = Invalid | DivByZero | Overflow | Underflow | Inexact

var flagNames = []struct {
	flag Flags
	name string
}{
	{Invalid, "invalid"},
	{DivByZero, "divide-by-zero"},
	{Overflow, "overflow"},
	{Underflow, "underflow"},
	{Inexact, "inexact"},
}

// Has reports whether every condition in g is raised in f.
func (f Flags) Has(g Flags) bool {
	return f&g == g && g != 0
}

// Each returns the single conditions in f, in declaration order.
func (f Flags) Each() []Flags {
	var out []Flags
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.flag)
		}
	}
	return out
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	parts := make([]string, 0, 5)
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFlags reads a list of condition names separated by commas or '|'.
// "none" and "all" are accepted.
func ParseFlags(s string) (Flags, error) {
	var out Flags
	for _, field := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	}) {
		switch field {
		case "none":
		case "all":
			out |= AllFlags
		case "divbyzero", "div-by-zero", "divide-by-zero", "zero":
			out |= DivByZero
		default:
			found := false
			for _, fn := range flagNames {
				if fn.name == field {
					out |= fn.flag
					found = true
					break
				}
			}
			if !found {
				return 0, fmt.Errorf("unknown floating-point condition %q", field)
			}
		}
	}
	return out, nil
}

// Rounding is an IEEE-754 rounding-direction attribute.
type Rounding uint8

const (
	NearestEven Rounding = iota
	TowardZero
	Upward
	Downward
)

func (r Rounding) String() string {
	switch r {
	case NearestEven:
		return "nearest"
	case TowardZero:
		return "zero"
	case Upward:
		return "up"
	case Downward:
		return "down"
	default:
		return fmt.Sprintf("Rounding(%d)", r)
	}
}

// ParseRounding converts a rounding name to a Rounding.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(s) {
	case "nearest", "even", "nearest-even":
		return NearestEven, nil
	case "zero", "toward-zero", "truncate":
		return TowardZero, nil
	case "up", "upward", "+inf":
		return Upward, nil
	case "down", "downward", "-inf":
		return Downward, nil
	default:
		return NearestEven, fmt.Errorf("invalid rounding mode: %q (expected: nearest|zero|up|down)", s)
	}
}

// BigMode returns the math/big rounding mode with the same direction.
func (r Rounding) BigMode() big.RoundingMode {
	switch r {
	case TowardZero:
		return big.ToZero
	case Upward:
		return big.ToPositiveInf
	case Downward:
		return big.ToNegativeInf
	default:
		return big.ToNearestEven
	}
}
