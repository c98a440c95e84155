// Package normalize repairs raw rows before they are merged. A Normalizer
// folds field names (and the identifying field's value) to lowercase so
// rows from differently cased headers compare equal; a Sanitizer folds
// unlabeled overflow values into a designated multi-value field.
package normalize

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/tablemerge/pkg/records"
)

// Normalizer lowercases field names and the identifying field's value.
// A Normalizer is not safe for concurrent use.
type Normalizer struct {
	key   string
	lower cases.Caser
}

// NewNormalizer returns a Normalizer for the given identifying field.
func NewNormalizer(keyField string) *Normalizer {
	n := &Normalizer{lower: cases.Lower(language.Und)}
	n.key = n.lower.String(keyField)
	return n
}

// KeyField returns the lowercased identifying field name.
func (n *Normalizer) KeyField() string {
	return n.key
}

// Normalize returns a new record with every field name lowercased. Names
// that collide after lowercasing resolve last-write-wins in r's field order.
// The identifying field's value is lowercased when non-empty. r is not
// modified.
func (n *Normalizer) Normalize(r *records.Record) *records.Record {
	out := records.New()
	out.Source = r.Source
	out.Line = r.Line

	for _, f := range r.Fields() {
		out.Set(n.lower.String(f.Name), f.Value)
	}

	if v, ok := out.Get(n.key); ok && v != "" {
		out.Set(n.key, n.lower.String(v))
	}
	return out
}

// FieldName folds name the way Normalize folds field names. Configured
// names must go through it to match normalized records.
func FieldName(name string) string {
	return cases.Lower(language.Und).String(name)
}

// Normalize is a convenience wrapper around NewNormalizer(keyField).Normalize(r).
func Normalize(r *records.Record, keyField string) *records.Record {
	return NewNormalizer(keyField).Normalize(r)
}
