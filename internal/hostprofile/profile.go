package hostprofile

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// FloatType describes one native floating-point type of a host, in the
// terms of C's std::numeric_limits.
type FloatType struct {
	Name        string `toml:"name" msgpack:"name"`
	Size        int    `toml:"size" msgpack:"size"`                 // sizeof, padding included
	Digits      int    `toml:"digits" msgpack:"digits"`             // significand bits
	MaxExponent int    `toml:"max_exponent" msgpack:"max_exponent"` // one more than the largest binary exponent
	IEC559      bool   `toml:"iec559" msgpack:"iec559"`
}

// Profile is the set of hardware and ABI facts the correspondence registry
// is decided from.
type Profile struct {
	Name   string      `toml:"name" msgpack:"name"`
	Int128 bool        `toml:"int128" msgpack:"int128"`
	Floats []FloatType `toml:"float" msgpack:"floats"`
}

// Float returns the first native float type matching pred.
func (p Profile) Float(pred func(FloatType) bool) (FloatType, bool) {
	for _, f := range p.Floats {
		if pred(f) {
			return f, true
		}
	}
	return FloatType{}, false
}

// Validate reports facts that cannot describe a real type.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile has no name")
	}
	seen := make(map[string]bool, len(p.Floats))
	for i, f := range p.Floats {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%s: float #%d has no name", p.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate float type %q", p.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Size <= 0 || f.Digits <= 0 || f.MaxExponent <= 0 {
			return fmt.Errorf("%s: float %q needs positive size, digits and max_exponent", p.Name, f.Name)
		}
		if f.Digits > 8*f.Size {
			return fmt.Errorf("%s: float %q has %d digits in %d bytes", p.Name, f.Name, f.Digits, f.Size)
		}
	}
	return nil
}

// Digest fingerprints the facts; two profiles with the same digest yield the
// same registry.
func (p Profile) Digest() [32]byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name=%s;int128=%t;", p.Name, p.Int128)
	for _, f := range p.Floats {
		fmt.Fprintf(&sb, "float=%s/%d/%d/%d/%t;", f.Name, f.Size, f.Digits, f.MaxExponent, f.IEC559)
	}
	return sha256.Sum256([]byte(sb.String()))
}
