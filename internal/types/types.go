// =============================================================================
// rcli - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (producers of a RecordSet)
//   - encoder                (consumer of a RecordSet)
//   - converter              (orchestration)
//
// =============================================================================

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Field is a single column/value pair of a Record.
type Field struct {
	Key   string
	Value string
}

// Record represents one data row: a mapping from column name to cell text.
// Fields keep the order of the header they were built from.
type Record struct {
	fields []Field
}

// NewRecord zips header names with row values. The caller guarantees that
// both slices have the same length and that header names are unique.
func NewRecord(header, row []string) Record {
	fields := make([]Field, len(header))
	for i, key := range header {
		fields[i] = Field{Key: key, Value: row[i]}
	}
	return Record{fields: fields}
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}

// Fields returns the record's fields in header order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value for a column and whether the column exists.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Map returns the record as a plain map. Ordering is lost.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Key] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as a JSON object with keys in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// plainYAMLKey matches header names that are safe as plain YAML keys.
// Anything else, including the merge key "<<", is written double-quoted.
var plainYAMLKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ -]*$`)

// MarshalYAML encodes the record as a block mapping with keys in header
// order. Every scalar is tagged !!str so "42" is not re-read as an integer.
func (r Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: make([]*yaml.Node, 0, 2*len(r.fields)),
	}
	for _, f := range r.fields {
		node.Content = append(node.Content,
			yamlKey(f.Key),
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

// yamlKey returns the key node for a header name.
func yamlKey(name string) *yaml.Node {
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
	if !plainYAMLKey.MatchString(name) || name[len(name)-1] == ' ' {
		key.Style = yaml.DoubleQuotedStyle
	}
	return key
}

// =============================================================================
// RECORD SET
// =============================================================================

// RecordSet is the ordered collection of all Records read from one input.
type RecordSet struct {
	// Header contains the column names, in input order.
	Header []string

	// Records contains one Record per data row, in input order.
	Records []Record

	// SourceFile is the path the records were read from ("" for streams).
	SourceFile string
}

// CheckHeader rejects headers that cannot form a mapping: a column name
// may appear only once.
func CheckHeader(header []string) error {
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if prev, ok := seen[name]; ok {
			return NewParseError("read header",
				fmt.Errorf("duplicate column name %q (columns %d and %d)", name, prev+1, i+1))
		}
		seen[name] = i
	}
	return nil
}

// NewRecordSet creates an empty RecordSet for the given header.
func NewRecordSet(header []string, source string) *RecordSet {
	return &RecordSet{
		Header:     header,
		Records:    make([]Record, 0),
		SourceFile: source,
	}
}

// Append zips a row with the header and adds it to the set.
func (rs *RecordSet) Append(row []string) {
	rs.Records = append(rs.Records, NewRecord(rs.Header, row))
}

// RowCount returns the number of data rows.
func (rs *RecordSet) RowCount() int {
	return len(rs.Records)
}

// ColumnCount returns the header width.
func (rs *RecordSet) ColumnCount() int {
	return len(rs.Header)
}

// Maps returns every record as a plain map, used by encoders that cannot
// preserve key order anyway.
func (rs *RecordSet) Maps() []map[string]string {
	out := make([]map[string]string, len(rs.Records))
	for i, r := range rs.Records {
		out[i] = r.Map()
	}
	return out
}
