package kind

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

var categoryNames = map[string]Category{
	"integer":   Integer,
	"int":       Integer,
	"real":      Real,
	"complex":   Complex,
	"logical":   Logical,
	"character": Character,
	"char":      Character,
}

// Parse reads a kind written as CATEGORY(W), CATEGORY*W or CATEGORY:W,
// case-insensitively. The kind must be one the language declares.
func Parse(s string) (SourceKind, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	name, width, ok := splitKind(text)
	if !ok {
		return SourceKind{}, fmt.Errorf("malformed kind %q (expected e.g. REAL(8))", s)
	}
	c, ok := categoryNames[name]
	if !ok {
		return SourceKind{}, fmt.Errorf("unknown type category %q", name)
	}
	n, err := strconv.Atoi(width)
	if err != nil {
		return SourceKind{}, fmt.Errorf("bad kind parameter in %q: %w", s, err)
	}
	w, err := safecast.Conv[Width](n)
	if err != nil {
		return SourceKind{}, fmt.Errorf("kind parameter out of range in %q: %w", s, err)
	}
	k := Of(c, w)
	if !Valid(k) {
		return SourceKind{}, fmt.Errorf("%s is not a declared kind", k)
	}
	return k, nil
}

func splitKind(text string) (name, width string, ok bool) {
	if open := strings.IndexByte(text, '('); open > 0 && strings.HasSuffix(text, ")") {
		return text[:open], strings.TrimSpace(text[open+1 : len(text)-1]), true
	}
	for _, sep := range []string{"*", ":"} {
		if before, after, found := strings.Cut(text, sep); found && before != "" {
			return before, after, true
		}
	}
	return "", "", false
}
