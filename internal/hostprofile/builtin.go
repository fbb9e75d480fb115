package hostprofile

import (
	"fmt"
	"sort"
)

var (
	cFloat  = FloatType{Name: "float", Size: 4, Digits: 24, MaxExponent: 128, IEC559: true}
	cDouble = FloatType{Name: "double", Size: 8, Digits: 53, MaxExponent: 1024, IEC559: true}
)

var builtins = map[string]Profile{
	"go": Native(),
	"x86_64-linux-gnu": {
		Name:   "x86_64-linux-gnu",
		Int128: true,
		Floats: []FloatType{
			cFloat,
			cDouble,
			{Name: "long double", Size: 16, Digits: 64, MaxExponent: 16384, IEC559: true},
		},
	},
	"i686-linux-gnu": {
		Name:   "i686-linux-gnu",
		Int128: false,
		Floats: []FloatType{
			cFloat,
			cDouble,
			{Name: "long double", Size: 12, Digits: 64, MaxExponent: 16384, IEC559: true},
		},
	},
	"aarch64-linux-gnu": {
		Name:   "aarch64-linux-gnu",
		Int128: true,
		Floats: []FloatType{
			cFloat,
			cDouble,
			{Name: "long double", Size: 16, Digits: 113, MaxExponent: 16384, IEC559: true},
		},
	},
	"x86_64-windows-msvc": {
		Name:   "x86_64-windows-msvc",
		Int128: false,
		Floats: []FloatType{
			cFloat,
			cDouble,
			{Name: "long double", Size: 8, Digits: 53, MaxExponent: 1024, IEC559: true},
		},
	},
	"ppc64le-linux-gnu": {
		Name:   "ppc64le-linux-gnu",
		Int128: true,
		Floats: []FloatType{
			cFloat,
			cDouble,
			// IBM double-double: 16 bytes but neither binary128 nor IEEE.
			{Name: "long double", Size: 16, Digits: 106, MaxExponent: 1024, IEC559: false},
		},
	},
}

// Lookup returns a builtin profile by name.
func Lookup(name string) (Profile, error) {
	p, ok := builtins[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown host profile %q (known: %v)", name, Names())
	}
	return clone(p), nil
}

// Names lists the builtin profiles in lexical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtins returns every builtin profile in the order of Names.
func Builtins() []Profile {
	names := Names()
	out := make([]Profile, 0, len(names))
	for _, n := range names {
		out = append(out, clone(builtins[n]))
	}
	return out
}

func clone(p Profile) Profile {
	p.Floats = append([]FloatType(nil), p.Floats...)
	return p
}
