package registry

import (
	"fmt"
	"sync"

	"hostfold/internal/hostprofile"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
)

// Registry is the correspondence between source kinds and the host
// representations of one profile. It is immutable once built and safe for
// concurrent use.
type Registry struct {
	profile hostprofile.Profile
	forward map[kind.SourceKind]HostRepresentation
	inverse map[HostRepresentation]kind.SourceKind
}

// New decides the correspondence for every declared kind from the facts of p.
func New(p hostprofile.Profile) *Registry {
	r := &Registry{
		profile: p,
		forward: make(map[kind.SourceKind]HostRepresentation, 24),
		inverse: make(map[HostRepresentation]kind.SourceKind, 24),
	}
	for _, k := range kind.All() {
		rep, ok := decide(p, k)
		if !ok {
			continue
		}
		r.forward[k] = rep
	}
	r.invert()
	return r
}

// invert builds the host-to-source table. When several kinds share one
// representation the first kind in canonical order keeps it.
func (r *Registry) invert() {
	for _, k := range kind.All() {
		rep, ok := r.forward[k]
		if !ok {
			continue
		}
		if _, taken := r.inverse[rep]; !taken {
			r.inverse[rep] = k
		}
	}
}

var host = sync.OnceValue(func() *Registry {
	return New(hostprofile.Native())
})

// Host returns the registry of the Go runtime, built on first use.
func Host() *Registry {
	return host()
}

// Profile returns the facts the registry was built from.
func (r *Registry) Profile() hostprofile.Profile {
	p := r.profile
	p.Floats = append([]hostprofile.FloatType(nil), p.Floats...)
	return p
}

// Exists reports whether k has a host representation.
func (r *Registry) Exists(k kind.SourceKind) bool {
	_, ok := r.forward[k]
	return ok
}

// RepresentationOf returns the host representation of k, or false when k is
// unsupported on this host.
func (r *Registry) RepresentationOf(k kind.SourceKind) (HostRepresentation, bool) {
	rep, ok := r.forward[k]
	return rep, ok
}

// KindOf returns the source kind a host representation stands for, or false
// when no kind maps to exactly rep.
func (r *Registry) KindOf(rep HostRepresentation) (kind.SourceKind, bool) {
	k, ok := r.inverse[rep]
	return k, ok
}

// Supported returns the supported kinds in canonical order.
func (r *Registry) Supported() []kind.SourceKind {
	out := make([]kind.SourceKind, 0, len(r.forward))
	for _, k := range kind.All() {
		if r.Exists(k) {
			out = append(out, k)
		}
	}
	return out
}

func decide(p hostprofile.Profile, k kind.SourceKind) (HostRepresentation, bool) {
	switch k.Category {
	case kind.Integer:
		if k.Width == 16 && !p.Int128 {
			return HostRepresentation{}, false
		}
		return HostRepresentation{
			Name:   fmt.Sprintf("int%d", 8*int(k.Width)),
			Class:  ClassInteger,
			Size:   int(k.Width),
			Signed: true,
		}, true
	case kind.Real:
		return realRepresentation(p, k)
	case kind.Complex:
		part, ok := realRepresentation(p, k.Part())
		if !ok {
			return HostRepresentation{}, false
		}
		return HostRepresentation{
			Name:        "complex(" + part.Name + ")",
			Class:       ClassComplex,
			Size:        2 * part.Size,
			Digits:      part.Digits,
			MaxExponent: part.MaxExponent,
		}, true
	case kind.Logical:
		if k.Width > 8 {
			return HostRepresentation{}, false
		}
		return HostRepresentation{Name: "flag", Class: ClassFlag, Size: 1}, true
	case kind.Character:
		return HostRepresentation{
			Name:  fmt.Sprintf("character(%d)", k.Width),
			Class: ClassSourceEncoding,
			Size:  int(k.Width),
		}, true
	}
	return HostRepresentation{}, false
}

// realRepresentation picks the first native float whose IEEE profile is
// exactly the one the REAL kind needs. The x87 extended format is usually
// padded, so REAL(10) accepts any size of at least ten bytes; every other
// width wants an unpadded type.
func realRepresentation(p hostprofile.Profile, k kind.SourceKind) (HostRepresentation, bool) {
	want, ok := scalar.FormatOf(k)
	if !ok {
		return HostRepresentation{}, false
	}
	ft, ok := p.Float(func(f hostprofile.FloatType) bool {
		if !f.IEC559 || f.Digits != want.Digits() || f.MaxExponent != want.MaxExponent() {
			return false
		}
		if want.ExplicitInt {
			return f.Size >= want.Size
		}
		return f.Size == want.Size
	})
	if !ok {
		return HostRepresentation{}, false
	}
	return HostRepresentation{
		Name:        ft.Name,
		Class:       ClassFloat,
		Size:        ft.Size,
		Digits:      ft.Digits,
		MaxExponent: ft.MaxExponent,
	}, true
}
