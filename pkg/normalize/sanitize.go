package normalize

import (
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/records"
)

// Sanitizer moves values from anonymous overflow slots into a multi-value
// field. Slot names follow the reader's convention for values past the last
// header column, e.g. "_5".
type Sanitizer struct {
	field     string
	slots     []string
	delimiter string
}

// SanitizerOption configures a Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithDelimiter sets the separator used to join folded values.
func WithDelimiter(delimiter string) SanitizerOption {
	return func(s *Sanitizer) {
		s.delimiter = delimiter
	}
}

// NewSanitizer returns a Sanitizer folding slots into field. With no slots
// the default overflow slots are used.
func NewSanitizer(field string, slots []string, opts ...SanitizerOption) *Sanitizer {
	if len(slots) == 0 {
		slots = constants.DefaultOverflowSlots()
	}
	s := &Sanitizer{
		field:     field,
		slots:     append([]string(nil), slots...),
		delimiter: constants.DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Field returns the multi-value field overflow values are folded into.
func (s *Sanitizer) Field() string {
	return s.field
}

// Slots returns the overflow slot names in fold order.
func (s *Sanitizer) Slots() []string {
	return append([]string(nil), s.slots...)
}

// Malformed reports whether r carries overflow values. Only the first slot
// is inspected; an empty value counts as no value.
func (s *Sanitizer) Malformed(r *records.Record) bool {
	return r.Value(s.slots[0]) != ""
}

// Sanitize repairs r in place and reports whether it was malformed. The
// multi-value field becomes its existing value (when present) followed by
// every non-empty slot value, joined by the delimiter. All slot fields are
// then removed.
func (s *Sanitizer) Sanitize(r *records.Record) bool {
	if !s.Malformed(r) {
		return false
	}

	parts := make([]string, 0, len(s.slots)+1)
	if v, ok := r.Get(s.field); ok {
		parts = append(parts, v)
	}
	for _, slot := range s.slots {
		if v := r.Value(slot); v != "" {
			parts = append(parts, v)
		}
	}
	r.Set(s.field, strings.Join(parts, s.delimiter))

	for _, slot := range s.slots {
		r.Delete(slot)
	}
	return true
}
