package kind

import (
	"fmt"
	"slices"
)

// Category enumerates the intrinsic type categories of the source language.
type Category uint8

const (
	CategoryInvalid Category = iota
	Integer
	Real
	Complex
	Logical
	Character
)

func (c Category) String() string {
	switch c {
	case CategoryInvalid:
		return "invalid"
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Complex:
		return "COMPLEX"
	case Logical:
		return "LOGICAL"
	case Character:
		return "CHARACTER"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Width is the kind parameter of a source type. For numeric and logical
// categories it is the storage size in bytes of one scalar (for COMPLEX, of
// one part); for CHARACTER it is the size of one code unit.
type Width uint8

// SourceKind is a source-language intrinsic type descriptor.
type SourceKind struct {
	Category Category
	Width    Width
}

// Of builds a SourceKind without validating it against the kind set.
func Of(c Category, w Width) SourceKind {
	return SourceKind{Category: c, Width: w}
}

func (k SourceKind) String() string {
	return fmt.Sprintf("%s(%d)", k.Category, k.Width)
}

// IsZero reports whether k is the zero descriptor.
func (k SourceKind) IsZero() bool {
	return k == SourceKind{}
}

// Part returns the REAL kind of one COMPLEX component. Other kinds are
// returned unchanged.
func (k SourceKind) Part() SourceKind {
	if k.Category == Complex {
		return SourceKind{Category: Real, Width: k.Width}
	}
	return k
}

// Frequently used kinds.
var (
	Int1  = Of(Integer, 1)
	Int2  = Of(Integer, 2)
	Int4  = Of(Integer, 4)
	Int8  = Of(Integer, 8)
	Int16 = Of(Integer, 16)

	Real2  = Of(Real, 2)
	Real3  = Of(Real, 3)
	Real4  = Of(Real, 4)
	Real8  = Of(Real, 8)
	Real10 = Of(Real, 10)
	Real16 = Of(Real, 16)

	Complex2  = Of(Complex, 2)
	Complex3  = Of(Complex, 3)
	Complex4  = Of(Complex, 4)
	Complex8  = Of(Complex, 8)
	Complex10 = Of(Complex, 10)
	Complex16 = Of(Complex, 16)

	Logical1 = Of(Logical, 1)
	Logical2 = Of(Logical, 2)
	Logical4 = Of(Logical, 4)
	Logical8 = Of(Logical, 8)

	Char1 = Of(Character, 1)
	Char2 = Of(Character, 2)
	Char4 = Of(Character, 4)
)

var widths = map[Category][]Width{
	Integer:   {1, 2, 4, 8, 16},
	Real:      {2, 3, 4, 8, 10, 16},
	Complex:   {2, 3, 4, 8, 10, 16},
	Logical:   {1, 2, 4, 8},
	Character: {1, 2, 4},
}

var categories = []Category{Integer, Real, Complex, Logical, Character}

// All returns every kind of the language in canonical order: by category,
// then by increasing width.
func All() []SourceKind {
	out := make([]SourceKind, 0, 24)
	for _, c := range categories {
		for _, w := range widths[c] {
			out = append(out, Of(c, w))
		}
	}
	return out
}

// Widths returns the declared widths of a category in increasing order.
func Widths(c Category) []Width {
	return slices.Clone(widths[c])
}

// Valid reports whether k is a kind the language declares.
func Valid(k SourceKind) bool {
	return slices.Contains(widths[k.Category], k.Width)
}

// ByteSize returns the size in bytes of one scalar of a fixed-size kind.
// CHARACTER scalars have no fixed size; ByteSize reports the code unit size
// and false.
func (k SourceKind) ByteSize() (int, bool) {
	switch k.Category {
	case Integer, Logical:
		return int(k.Width), true
	case Real:
		if k.Width == 3 {
			return 2, true
		}
		return int(k.Width), true
	case Complex:
		part, _ := k.Part().ByteSize()
		return 2 * part, true
	case Character:
		return int(k.Width), false
	default:
		return 0, false
	}
}
