// Package serialize dispatches between the pluggable human-editable text
// formats (JSON5, TOML, YAML) used for the directory-projection form.
package serialize

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json5 "github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/haldec/halleypack/internal/herrors"
)

// Format is one of the three supported on-disk serializations.
type Format int

const (
	FormatJSON5 Format = iota
	FormatTOML
	FormatYAML
)

// DefaultFormat is JSON5, matching the game tooling's own default.
const DefaultFormat = FormatJSON5

// Ext returns the file extension (without leading dot) for f.
func (f Format) Ext() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "json5"
	}
}

// FromExt resolves a Format from a file extension, defaulting to JSON5 for
// anything unrecognized.
func FromExt(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		return FormatTOML
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatJSON5
	}
}

// FromPath resolves the Format implied by a file's extension.
func FromPath(path string) Format {
	return FromExt(filepath.Ext(path))
}

// Marshal encodes v using the given format.
func Marshal(f Format, v interface{}) ([]byte, error) {
	switch f {
	case FormatTOML:
		var sb strings.Builder
		enc := toml.NewEncoder(&sb)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("%w: %v", herrors.ErrSerialization, err)
		}
		return []byte(sb.String()), nil
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", herrors.ErrSerialization, err)
		}
		return b, nil
	default:
		b, err := json5.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", herrors.ErrSerialization, err)
		}
		return b, nil
	}
}

// Unmarshal decodes data (in format f) into v.
func Unmarshal(f Format, data []byte, v interface{}) error {
	var err error
	switch f {
	case FormatTOML:
		_, err = toml.Decode(string(data), v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	default:
		err = json5.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrSerialization, err)
	}
	return nil
}
