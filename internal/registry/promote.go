package registry

import "hostfold/internal/kind"

// WidestUsable returns the host representation to fold k with, and the kind
// it belongs to. A supported k is returned as is. An unsupported REAL or
// COMPLEX kind walks its promotion chain to the first supported kind; every
// other category is exact or unsupported, since widening an integer would
// change its overflow behaviour.
func (r *Registry) WidestUsable(k kind.SourceKind) (HostRepresentation, kind.SourceKind, bool) {
	for cur := k; ; {
		if rep, ok := r.forward[cur]; ok {
			return rep, cur, true
		}
		next, ok := kind.Wider(cur)
		if !ok {
			return HostRepresentation{}, kind.SourceKind{}, false
		}
		cur = next
	}
}

// Entry describes how one kind is served by the host.
type Entry struct {
	Kind      kind.SourceKind
	Supported bool
	Rep       HostRepresentation // of Via when promoted; zero when unusable
	Via       kind.SourceKind    // kind chosen by WidestUsable; zero when none
}

// Promoted reports whether folding the kind needs a wider kind.
func (e Entry) Promoted() bool {
	return !e.Supported && !e.Via.IsZero()
}

// Entries describes every declared kind in canonical order.
func (r *Registry) Entries() []Entry {
	all := kind.All()
	out := make([]Entry, 0, len(all))
	for _, k := range all {
		e := Entry{Kind: k}
		e.Rep, e.Supported = r.RepresentationOf(k)
		if _, via, ok := r.WidestUsable(k); ok {
			e.Via = via
			if !e.Supported {
				e.Rep, _ = r.RepresentationOf(via)
			}
		}
		out = append(out, e)
	}
	return out
}
