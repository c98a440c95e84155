// Package records defines the Record type that flows through the tablemerge
// pipeline. A Record is an insertion-ordered mapping from field name to
// string value. A name that is not in the record is absent, which is
// distinct from a present field holding the empty string.
package records

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
)

// Record is a single row read from a source.
type Record struct {
	// Source is the identifier of the source the row was read from.
	Source string
	// Line is the 1-based line of the row within Source (0 when unknown).
	Line int

	names  []string
	values map[string]string
}

// Field is a single name/value pair of a Record.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// New creates an empty record.
func New() *Record {
	return &Record{values: make(map[string]string)}
}

// FromPairs builds a record from alternating name, value arguments.
// A trailing name without a value is ignored.
func FromPairs(pairs ...string) *Record {
	r := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// FromMap builds a record from m with names in sorted order.
func FromMap(m map[string]string) *Record {
	r := New()
	for _, name := range slices.Sorted(maps.Keys(m)) {
		r.Set(name, m[name])
	}
	return r
}

// Get returns the value of name and whether the field is present.
func (r *Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value of name, or "" when absent.
func (r *Record) Value(name string) string {
	return r.values[name]
}

// Has reports whether name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Set stores value under name. An existing field keeps its position.
func (r *Record) Set(name, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Delete removes name. Deleting an absent field is a no-op.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	if i := slices.Index(r.names, name); i >= 0 {
		r.names = slices.Delete(r.names, i, i+1)
	}
}

// Len returns the number of present fields.
func (r *Record) Len() int {
	return len(r.names)
}

// Names returns the field names in insertion order.
func (r *Record) Names() []string {
	return slices.Clone(r.names)
}

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field {
	fields := make([]Field, len(r.names))
	for i, name := range r.names {
		fields[i] = Field{Name: name, Value: r.values[name]}
	}
	return fields
}

// Map returns a copy of the record as a plain map.
func (r *Record) Map() map[string]string {
	return maps.Clone(r.values)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		Source: r.Source,
		Line:   r.Line,
		names:  slices.Clone(r.names),
		values: maps.Clone(r.values),
	}
	if c.values == nil {
		c.values = make(map[string]string)
	}
	return c
}

// Equal reports whether both records hold the same fields and values.
// Field order and source metadata are not compared.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return maps.Equal(r.values, other.values)
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the record as a YAML mapping in field order.
func (r *Record) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, yaml.MapItem{Key: name, Value: r.values[name]})
	}
	return out, nil
}
