package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a config file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

var formatNames = [...]string{"unknown", "yaml", "toml", "json"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

var extFormats = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
}

// decoders unmarshal content for each known format.
var decoders = map[Format]func([]byte, any) error{
	FormatYAML: yaml.Unmarshal,
	FormatTOML: toml.Unmarshal,
	FormatJSON: json.Unmarshal,
}

// detectFormat trusts the file extension and falls back to looking at the
// content.
func detectFormat(path string, content []byte) Format {
	if f, ok := extFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return sniffFormat(content)
}

// sniffFormat decides from the first meaningful line: a leading brace is JSON,
// a table header or "key = value" is TOML, and "key: value" is YAML.
func sniffFormat(content []byte) Format {
	body := bytes.TrimSpace(content)
	if bytes.HasPrefix(body, []byte("{")) {
		return FormatJSON
	}

	for _, raw := range bytes.Split(body, []byte("\n")) {
		line := string(bytes.TrimSpace(raw))
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["), strings.Contains(line, " = "):
			return FormatTOML
		case strings.Contains(line, ":"):
			return FormatYAML
		}
	}
	return FormatUnknown
}

// envRef matches ${VAR} and ${VAR:-fallback}.
var envRef = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// ExpandEnv substitutes environment references in content. An unset or
// empty variable takes its fallback, or expands to nothing without one.
func ExpandEnv(content []byte) []byte {
	return envRef.ReplaceAllFunc(content, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[2]
	})
}

// parse expands environment references and decodes content as format.
func parse(content []byte, format Format) (*Config, error) {
	decode, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("unknown file format")
	}

	var cfg Config
	if err := decode(ExpandEnv(content), &cfg); err != nil {
		return nil, fmt.Errorf("%s parse error: %w", strings.ToUpper(format.String()), err)
	}
	return &cfg, nil
}
