package scalar

import (
	"hostfold/internal/kind"
)

// Format describes a binary floating-point interchange layout.
type Format struct {
	Name        string
	ExpBits     int
	FracBits    int  // stored fraction bits, excluding any integer bit
	ExplicitInt bool // the integer bit is stored (x87 extended)
	Size        int  // bytes
}

var (
	Binary16  = Format{Name: "binary16", ExpBits: 5, FracBits: 10, Size: 2}
	BFloat16  = Format{Name: "bfloat16", ExpBits: 8, FracBits: 7, Size: 2}
	Binary32  = Format{Name: "binary32", ExpBits: 8, FracBits: 23, Size: 4}
	Binary64  = Format{Name: "binary64", ExpBits: 11, FracBits: 52, Size: 8}
	X87       = Format{Name: "x87-extended", ExpBits: 15, FracBits: 63, ExplicitInt: true, Size: 10}
	Binary128 = Format{Name: "binary128", ExpBits: 15, FracBits: 112, Size: 16}
)

var realFormats = map[kind.Width]Format{
	2:  Binary16,
	3:  BFloat16,
	4:  Binary32,
	8:  Binary64,
	10: X87,
	16: Binary128,
}

// FormatOf returns the layout of a REAL kind or of one part of a COMPLEX kind.
func FormatOf(k kind.SourceKind) (Format, bool) {
	if k.Category != kind.Real && k.Category != kind.Complex {
		return Format{}, false
	}
	f, ok := realFormats[k.Width]
	return f, ok
}

// Digits is the number of significand bits, integer bit included.
func (f Format) Digits() int { return f.FracBits + 1 }

// Bias is the exponent bias.
func (f Format) Bias() int { return 1<<(f.ExpBits-1) - 1 }

// Emax is the exponent of the largest finite value.
func (f Format) Emax() int { return f.Bias() }

// Emin is the exponent of the smallest normal value.
func (f Format) Emin() int { return 1 - f.Bias() }

// MaxExponent follows the C convention: one more than Emax.
func (f Format) MaxExponent() int { return f.Emax() + 1 }

func (f Format) mantBits() int {
	if f.ExplicitInt {
		return f.FracBits + 1
	}
	return f.FracBits
}

func (f Format) maxBiased() int { return 1<<f.ExpBits - 1 }
