package hostprofile

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads a profile from a TOML file:
//
//	name = "riscv64-linux-gnu"
//	int128 = true
//
//	[[float]]
//	name = "long double"
//	size = 16
//	digits = 113
//	max_exponent = 16384
//	iec559 = true
func Load(path string) (Profile, error) {
	var p Profile
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return finish(path, p, meta)
}

// Decode reads a profile from TOML text. source names it in errors.
func Decode(source, text string) (Profile, error) {
	var p Profile
	meta, err := toml.Decode(text, &p)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: failed to parse TOML: %w", source, err)
	}
	return finish(source, p, meta)
}

func finish(source string, p Profile, meta toml.MetaData) (Profile, error) {
	if !meta.IsDefined("name") || strings.TrimSpace(p.Name) == "" {
		return Profile{}, fmt.Errorf("%s: missing name", source)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Profile{}, fmt.Errorf("%s: unknown keys: %s", source, strings.Join(keys, ", "))
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("%s: %w", source, err)
	}
	return p, nil
}
