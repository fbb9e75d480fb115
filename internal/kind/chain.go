package kind

// successor is the promotion ladder shared by REAL and COMPLEX: each width
// maps to the next declared width able to hold all of its values.
var successor = map[Width]Width{
	2:  4,
	3:  4,
	4:  8,
	8:  10,
	10: 16,
}

// Promotes reports whether the category has a promotion chain.
func Promotes(c Category) bool {
	return c == Real || c == Complex
}

// Wider returns the next kind on k's promotion chain. It reports false for
// categories without a chain and at the end of the chain.
func Wider(k SourceKind) (SourceKind, bool) {
	if !Promotes(k.Category) {
		return SourceKind{}, false
	}
	next, ok := successor[k.Width]
	if !ok {
		return SourceKind{}, false
	}
	return Of(k.Category, next), true
}

// Chain returns k followed by every kind reachable through Wider.
func Chain(k SourceKind) []SourceKind {
	out := []SourceKind{k}
	for {
		next, ok := Wider(k)
		if !ok {
			return out
		}
		out = append(out, next)
		k = next
	}
}
