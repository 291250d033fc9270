package config

import (
	"fmt"
	"os"
	"path/filepath"

	jsonparser "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// profileDocument is the on-disk shape of a profile JSON file: a flat
// map of script name to a map of param name to raw value, decoded
// through koanf the way the teacher's config service decodes its
// settings document.
type profileDocument struct {
	Scripts map[string]map[string]any `koanf:"scripts"`
}

// Loader reads profile JSON documents from disk via koanf, the
// daemon's ambient config stack (SPEC_FULL.md A1).
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir, the profiles directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load parses "<name>.json" under the loader's directory into a
// StaticProfile.
func (l *Loader) Load(name string) (*StaticProfile, error) {
	path := filepath.Join(l.dir, name+".json")
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), jsonparser.Parser()); err != nil {
		return nil, fmt.Errorf("config: load profile %q: %w", name, err)
	}

	var doc profileDocument
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: decode profile %q: %w", name, err)
	}

	profile := NewStaticProfile(name)
	for scriptName, params := range doc.Scripts {
		for paramName, raw := range params {
			p, err := decodeParam(paramName, raw)
			if err != nil {
				return nil, fmt.Errorf("config: profile %q script %q param %q: %w", name, scriptName, paramName, err)
			}
			profile.SetOverride(scriptName, p)
		}
	}
	return profile, nil
}

func decodeParam(name string, raw any) (Param, error) {
	switch v := raw.(type) {
	case bool:
		return Param{Name: name, Kind: ParamBool, Bool: v}, nil
	case float64:
		if v == float64(int64(v)) {
			return Param{Name: name, Kind: ParamInt, Int: int64(v)}, nil
		}
		return Param{Name: name, Kind: ParamFloat, Float: v}, nil
	case string:
		return Param{Name: name, Kind: ParamString, String: v}, nil
	case map[string]any:
		packed, err := decodeColorMap(v)
		if err != nil {
			return Param{}, err
		}
		return Param{Name: name, Kind: ParamColor, Color: packed}, nil
	default:
		return Param{}, fmt.Errorf("unsupported param value type %T", raw)
	}
}

func decodeColorMap(m map[string]any) (uint32, error) {
	get := func(key string) (uint8, error) {
		v, ok := m[key]
		if !ok {
			return 255, nil
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("color field %q is not a number", key)
		}
		return uint8(f), nil
	}
	r, err := get("r")
	if err != nil {
		return 0, err
	}
	g, err := get("g")
	if err != nil {
		return 0, err
	}
	b, err := get("b")
	if err != nil {
		return 0, err
	}
	a, err := get("a")
	if err != nil {
		return 0, err
	}
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a), nil
}

// EnsureDir creates the profiles directory if it does not already exist.
func (l *Loader) EnsureDir() error {
	return os.MkdirAll(l.dir, 0o755)
}

// Dir returns the directory this loader reads profiles from.
func (l *Loader) Dir() string { return l.dir }
