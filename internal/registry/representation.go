package registry

import "fmt"

// Class is the broad encoding family of a host representation.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassInteger
	ClassFlag
	ClassFloat
	ClassComplex
	ClassSourceEncoding
)

func (c Class) String() string {
	switch c {
	case ClassInvalid:
		return "invalid"
	case ClassInteger:
		return "integer"
	case ClassFlag:
		return "flag"
	case ClassFloat:
		return "float"
	case ClassComplex:
		return "complex"
	case ClassSourceEncoding:
		return "source"
	default:
		return fmt.Sprintf("Class(%d)", c)
	}
}

// HostRepresentation is a concrete host encoding of a numeric value. Two
// representations are the same host type exactly when they compare equal.
type HostRepresentation struct {
	Name        string `msgpack:"name"`
	Class       Class  `msgpack:"class"`
	Size        int    `msgpack:"size"` // bytes, padding included
	Signed      bool   `msgpack:"signed,omitempty"`
	Digits      int    `msgpack:"digits,omitempty"`       // float and complex parts
	MaxExponent int    `msgpack:"max_exponent,omitempty"` // float and complex parts
}

func (r HostRepresentation) String() string {
	switch r.Class {
	case ClassFloat, ClassComplex:
		return fmt.Sprintf("%s (%d bytes, %d digits, max exponent %d)", r.Name, r.Size, r.Digits, r.MaxExponent)
	default:
		return fmt.Sprintf("%s (%d bytes)", r.Name, r.Size)
	}
}
