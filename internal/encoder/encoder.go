// =============================================================================
// rcli - Encoder Module
// =============================================================================
//
// This module turns a RecordSet into one of three textual encodings.
//
// OUTPUT SHAPES:
//
//   JSON                         YAML                  TOML
//   [                            - Name: Alice         [[data]]
//     {                            Position: Forward   Name = 'Alice'
//       "Name": "Alice",                               Position = 'Forward'
//       "Position": "Forward"
//     }
//   ]
//
// TOML cannot hold a bare top-level array, so records are wrapped under a
// single "data" key. JSON and YAML keep the header's column order; TOML keys
// are written in the encoder's sorted order.
//
// =============================================================================

package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// TOMLRootKey is the table key wrapping records in TOML output.
const TOMLRootKey = "data"

// Encoder writes a RecordSet in one format.
type Encoder interface {
	Encode(w io.Writer, rs *types.RecordSet) error
}

// For returns the encoder for a format.
func For(format Format) (Encoder, error) {
	switch format {
	case JSON:
		return jsonEncoder{indent: "  "}, nil
	case YAML:
		return yamlEncoder{indent: 2}, nil
	case TOML:
		return tomlEncoder{}, nil
	default:
		return nil, types.NewConfigError("format", fmt.Errorf("unsupported format %s", format))
	}
}

// Encode encodes rs in the given format and returns the bytes. Nothing is
// returned unless the whole document encoded successfully.
func Encode(format Format, rs *types.RecordSet) ([]byte, error) {
	enc, err := For(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, rs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// records returns a non-nil slice so empty input encodes as an empty
// collection rather than null.
func records(rs *types.RecordSet) []types.Record {
	if rs == nil || rs.Records == nil {
		return []types.Record{}
	}
	return rs.Records
}

// =============================================================================
// JSON
// =============================================================================

type jsonEncoder struct {
	indent string
}

func (e jsonEncoder) Encode(w io.Writer, rs *types.RecordSet) error {
	out, err := json.MarshalIndent(records(rs), "", e.indent)
	if err != nil {
		return types.NewEncodingError("encode json", err)
	}
	out = append(out, '\n')

	if _, err := w.Write(out); err != nil {
		return types.NewIOError("write json", err)
	}
	return nil
}

// =============================================================================
// YAML
// =============================================================================

type yamlEncoder struct {
	indent int
}

func (e yamlEncoder) Encode(w io.Writer, rs *types.RecordSet) error {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(e.indent)
	if err := enc.Encode(records(rs)); err != nil {
		return types.NewEncodingError("encode yaml", err)
	}
	if err := enc.Close(); err != nil {
		return types.NewEncodingError("encode yaml", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return types.NewIOError("write yaml", err)
	}
	return nil
}

// =============================================================================
// TOML
// =============================================================================

// tomlDocument is the named container TOML needs around the record array.
type tomlDocument struct {
	Data []map[string]string `toml:"data"`
}

type tomlEncoder struct{}

func (tomlEncoder) Encode(w io.Writer, rs *types.RecordSet) error {
	doc := tomlDocument{Data: []map[string]string{}}
	if rs != nil {
		doc.Data = rs.Maps()
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return types.NewEncodingError("encode toml", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return types.NewIOError("write toml", err)
	}
	return nil
}
