package registry

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"hostfold/internal/hostprofile"
	"hostfold/internal/kind"
)

// SnapshotSchema is bumped whenever the Snapshot layout changes.
const SnapshotSchema uint16 = 1

// ErrSnapshot marks a snapshot that cannot be turned back into a registry.
var ErrSnapshot = errors.New("bad registry snapshot")

// Snapshot is the serialisable form of a registry: the profile it was
// decided from and its forward table.
type Snapshot struct {
	Schema  uint16              `msgpack:"schema"`
	Digest  [32]byte            `msgpack:"digest"`
	Profile hostprofile.Profile `msgpack:"profile"`
	Kinds   []SnapshotKind      `msgpack:"kinds"`
}

// SnapshotKind is one forward-table row.
type SnapshotKind struct {
	Category kind.Category      `msgpack:"category"`
	Width    kind.Width         `msgpack:"width"`
	Rep      HostRepresentation `msgpack:"rep"`
}

// Snapshot captures r in canonical kind order.
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Schema:  SnapshotSchema,
		Digest:  r.profile.Digest(),
		Profile: r.Profile(),
	}
	for _, k := range r.Supported() {
		s.Kinds = append(s.Kinds, SnapshotKind{Category: k.Category, Width: k.Width, Rep: r.forward[k]})
	}
	return s
}

// FromSnapshot rebuilds the registry a snapshot was taken from.
func FromSnapshot(s Snapshot) (*Registry, error) {
	if s.Schema != SnapshotSchema {
		return nil, fmt.Errorf("%w: schema %d, want %d", ErrSnapshot, s.Schema, SnapshotSchema)
	}
	if s.Digest != s.Profile.Digest() {
		return nil, fmt.Errorf("%w: digest does not match profile %q", ErrSnapshot, s.Profile.Name)
	}
	r := &Registry{
		profile: s.Profile,
		forward: make(map[kind.SourceKind]HostRepresentation, len(s.Kinds)),
		inverse: make(map[HostRepresentation]kind.SourceKind, len(s.Kinds)),
	}
	for _, row := range s.Kinds {
		k := kind.Of(row.Category, row.Width)
		if !kind.Valid(k) {
			return nil, fmt.Errorf("%w: undeclared kind %s", ErrSnapshot, k)
		}
		if _, dup := r.forward[k]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", ErrSnapshot, k)
		}
		r.forward[k] = row.Rep
	}
	r.invert()
	return r, nil
}

// Encode writes the msgpack form of r's snapshot.
func (r *Registry) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(r.Snapshot())
}

// Decode reads a registry written by Encode.
func Decode(rd io.Reader) (*Registry, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(rd).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	return FromSnapshot(s)
}
