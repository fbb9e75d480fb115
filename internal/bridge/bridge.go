// Package bridge converts scalars between their source encoding and the Go
// host type of the same kind. A Mapping exists only for kinds the Go host
// supports, so a cast of an unsupported kind does not compile.
package bridge

import (
	"encoding/binary"
	"math"
	"slices"
	"unsafe"

	"hostfold/internal/kind"
	"hostfold/internal/scalar"
)

// Mapping pairs the source encoding S of one kind with its host type H.
type Mapping[S, H any] struct {
	kind     kind.SourceKind
	toHost   func(S) H
	toSource func(H) S
	viaParts bool
}

// Kind returns the source kind the mapping serves.
func (m Mapping[S, H]) Kind() kind.SourceKind {
	return m.kind
}

// ToHost converts a source scalar to its host value.
func ToHost[S, H any](m Mapping[S, H], x S) H {
	if m.toHost == nil {
		panic("bridge: use of zero Mapping")
	}
	return m.toHost(x)
}

// ToSource converts a host value back to its source encoding.
func ToSource[S, H any](m Mapping[S, H], h H) S {
	if m.toSource == nil {
		panic("bridge: use of zero Mapping")
	}
	return m.toSource(h)
}

// Host types must be exactly as large as the encodings they are copied from.
var (
	_ [0]struct{} = [unsafe.Sizeof(int8(0)) - unsafe.Sizeof(scalar.Int1{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(int16(0)) - unsafe.Sizeof(scalar.Int2{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(int32(0)) - unsafe.Sizeof(scalar.Int4{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(int64(0)) - unsafe.Sizeof(scalar.Int8{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(float32(0)) - unsafe.Sizeof(scalar.Real4{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(float64(0)) - unsafe.Sizeof(scalar.Real8{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(complex64(0)) - unsafe.Sizeof(scalar.Complex4{})]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(complex128(0)) - unsafe.Sizeof(scalar.Complex8{})]struct{}{}
)

var (
	Int1 = Mapping[scalar.Int1, int8]{
		kind:     kind.Int1,
		toHost:   func(x scalar.Int1) int8 { return int8(x[0]) },
		toSource: func(h int8) scalar.Int1 { return scalar.Int1{byte(h)} },
	}
	Int2 = Mapping[scalar.Int2, int16]{
		kind:   kind.Int2,
		toHost: func(x scalar.Int2) int16 { return int16(binary.LittleEndian.Uint16(x[:])) },
		toSource: func(h int16) (x scalar.Int2) {
			binary.LittleEndian.PutUint16(x[:], uint16(h))
			return x
		},
	}
	Int4 = Mapping[scalar.Int4, int32]{
		kind:   kind.Int4,
		toHost: func(x scalar.Int4) int32 { return int32(binary.LittleEndian.Uint32(x[:])) },
		toSource: func(h int32) (x scalar.Int4) {
			binary.LittleEndian.PutUint32(x[:], uint32(h))
			return x
		},
	}
	Int8 = Mapping[scalar.Int8, int64]{
		kind:   kind.Int8,
		toHost: func(x scalar.Int8) int64 { return int64(binary.LittleEndian.Uint64(x[:])) },
		toSource: func(h int64) (x scalar.Int8) {
			binary.LittleEndian.PutUint64(x[:], uint64(h))
			return x
		},
	}

	Real4 = Mapping[scalar.Real4, float32]{
		kind:   kind.Real4,
		toHost: func(x scalar.Real4) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(x[:])) },
		toSource: func(h float32) (x scalar.Real4) {
			binary.LittleEndian.PutUint32(x[:], math.Float32bits(h))
			return x
		},
	}
	Real8 = Mapping[scalar.Real8, float64]{
		kind:   kind.Real8,
		toHost: func(x scalar.Real8) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(x[:])) },
		toSource: func(h float64) (x scalar.Real8) {
			binary.LittleEndian.PutUint64(x[:], math.Float64bits(h))
			return x
		},
	}

	Complex4 = complexMapping(kind.Complex4, Real4, complex64Copy,
		func(re, im float32) complex64 { return complex(re, im) },
		func(h complex64) (float32, float32) { return real(h), imag(h) })
	Complex8 = complexMapping(kind.Complex8, Real8, complex128Copy,
		func(re, im float64) complex128 { return complex(re, im) },
		func(h complex128) (float64, float64) { return real(h), imag(h) })

	Logical1 = logical[scalar.Logical1](kind.Logical1)
	Logical2 = logical[scalar.Logical2](kind.Logical2)
	Logical4 = logical[scalar.Logical4](kind.Logical4)
	Logical8 = logical[scalar.Logical8](kind.Logical8)

	Char1 = character[scalar.Char1](kind.Char1)
	Char2 = character[scalar.Char2](kind.Char2)
	Char4 = character[scalar.Char4](kind.Char4)
)

var complex64Copy = Mapping[scalar.Complex4, complex64]{
	kind: kind.Complex4,
	toHost: func(x scalar.Complex4) complex64 {
		return complex(
			math.Float32frombits(binary.LittleEndian.Uint32(x[0:4])),
			math.Float32frombits(binary.LittleEndian.Uint32(x[4:8])))
	},
	toSource: func(h complex64) (x scalar.Complex4) {
		binary.LittleEndian.PutUint32(x[0:4], math.Float32bits(real(h)))
		binary.LittleEndian.PutUint32(x[4:8], math.Float32bits(imag(h)))
		return x
	},
}

var complex128Copy = Mapping[scalar.Complex8, complex128]{
	kind: kind.Complex8,
	toHost: func(x scalar.Complex8) complex128 {
		return complex(
			math.Float64frombits(binary.LittleEndian.Uint64(x[0:8])),
			math.Float64frombits(binary.LittleEndian.Uint64(x[8:16])))
	},
	toSource: func(h complex128) (x scalar.Complex8) {
		binary.LittleEndian.PutUint64(x[0:8], math.Float64bits(real(h)))
		binary.LittleEndian.PutUint64(x[8:16], math.Float64bits(imag(h)))
		return x
	},
}

// complexMapping uses the byte copy when the host complex type is exactly as
// large as the source encoding, and otherwise casts each part through the
// part's REAL mapping.
func complexMapping[C, R scalar.Fixed, F, H any](
	k kind.SourceKind,
	part Mapping[R, F],
	copyMapping Mapping[C, H],
	join func(re, im F) H,
	split func(H) (F, F),
) Mapping[C, H] {
	var c C
	var h H
	if uintptr(len(c)) == unsafe.Sizeof(h) {
		return copyMapping
	}
	return Mapping[C, H]{
		kind: k,
		toHost: func(x C) H {
			re, im := scalar.Split[C, R](x)
			return join(ToHost(part, re), ToHost(part, im))
		},
		toSource: func(h H) C {
			re, im := split(h)
			return scalar.Join[C, R](ToSource(part, re), ToSource(part, im))
		},
		viaParts: true,
	}
}

type logicalEncoding interface {
	~[1]byte | ~[2]byte | ~[4]byte | ~[8]byte
}

// logical maps a LOGICAL kind to bool. Any nonzero byte reads as true; true
// is written as 1 in the lowest byte.
func logical[S logicalEncoding](k kind.SourceKind) Mapping[S, bool] {
	return Mapping[S, bool]{
		kind: k,
		toHost: func(x S) bool {
			for i := 0; i < len(x); i++ {
				if x[i] != 0 {
					return true
				}
			}
			return false
		},
		toSource: func(h bool) S {
			var x S
			if h {
				x[0] = 1
			}
			return x
		},
	}
}

// character maps a CHARACTER kind to its own encoding; the cast only copies.
func character[S ~[]E, E byte | uint16 | uint32](k kind.SourceKind) Mapping[S, S] {
	return Mapping[S, S]{
		kind:     k,
		toHost:   func(x S) S { return slices.Clone(x) },
		toSource: func(h S) S { return slices.Clone(h) },
	}
}

// Kinds lists the kinds that have a Mapping, in canonical order.
func Kinds() []kind.SourceKind {
	return []kind.SourceKind{
		Int1.Kind(), Int2.Kind(), Int4.Kind(), Int8.Kind(),
		Real4.Kind(), Real8.Kind(),
		Complex4.Kind(), Complex8.Kind(),
		Logical1.Kind(), Logical2.Kind(), Logical4.Kind(), Logical8.Kind(),
		Char1.Kind(), Char2.Kind(), Char4.Kind(),
	}
}
