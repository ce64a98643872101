package encoder

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/rcli/internal/types"
)

// Format is the target encoding of a conversion.
type Format int

const (
	JSON Format = iota + 1
	YAML
	TOML
)

// Formats lists every supported format in display order.
var Formats = []Format{JSON, YAML, TOML}

// ParseFormat parses a format token case-insensitively.
func ParseFormat(token string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return 0, types.NewConfigError("format", fmt.Errorf("unsupported format %q (want json, yaml or toml)", token))
}

// String returns the lower-case format token.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return f.String()
}

// ContentType returns the media type served by the HTTP API.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case YAML:
		return "application/yaml"
	case TOML:
		return "application/toml"
	default:
		return "text/plain"
	}
}

// Set implements pflag.Value so the format can be bound as a flag.
func (f *Format) Set(token string) error {
	parsed, err := ParseFormat(token)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}
