package scalar

import (
	"errors"
	"fmt"
)

// Source scalar encodings. Every fixed-size scalar is the little-endian bit
// pattern of the value; a COMPLEX scalar is its real part followed by its
// imaginary part.
type (
	Int1  [1]byte
	Int2  [2]byte
	Int4  [4]byte
	Int8  [8]byte
	Int16 [16]byte

	Real2  [2]byte // IEEE binary16
	Real3  [2]byte // bfloat16
	Real4  [4]byte
	Real8  [8]byte
	Real10 [10]byte // x87 extended, explicit integer bit
	Real16 [16]byte

	Complex2  [4]byte
	Complex3  [4]byte
	Complex4  [8]byte
	Complex8  [16]byte
	Complex10 [20]byte
	Complex16 [32]byte

	Logical1 [1]byte
	Logical2 [2]byte
	Logical4 [4]byte
	Logical8 [8]byte
)

// CHARACTER scalars are sequences of code units of the kind's width.
type (
	Char1 []byte
	Char2 []uint16
	Char4 []uint32
)

// Fixed is the set of fixed-size source scalar encodings.
type Fixed interface {
	~[1]byte | ~[2]byte | ~[4]byte | ~[8]byte | ~[10]byte | ~[16]byte | ~[20]byte | ~[32]byte
}

// ErrSize reports a byte slice whose length does not match the encoding.
var ErrSize = errors.New("scalar size mismatch")

// Load copies b into a fixed-size scalar.
func Load[S Fixed](b []byte) (S, error) {
	var s S
	if len(b) != len(s) {
		return s, fmt.Errorf("%w: have %d bytes, want %d", ErrSize, len(b), len(s))
	}
	for i := 0; i < len(s); i++ {
		s[i] = b[i]
	}
	return s, nil
}

// Bytes returns a fresh copy of the encoding of s.
func Bytes[S Fixed](s S) []byte {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[i]
	}
	return out
}

// Split decomposes a complex scalar into its real and imaginary parts.
// C must be exactly twice as large as R.
func Split[C, R Fixed](c C) (re, im R) {
	n := len(re)
	if len(c) != 2*n {
		panic(fmt.Sprintf("scalar: cannot split %d bytes into two parts of %d", len(c), n))
	}
	for i := 0; i < n; i++ {
		re[i] = c[i]
		im[i] = c[n+i]
	}
	return re, im
}

// Join builds a complex scalar from its real and imaginary parts.
func Join[C, R Fixed](re, im R) C {
	var c C
	n := len(re)
	if len(c) != 2*n {
		panic(fmt.Sprintf("scalar: cannot join two parts of %d into %d bytes", n, len(c)))
	}
	for i := 0; i < n; i++ {
		c[i] = re[i]
		c[n+i] = im[i]
	}
	return c
}
