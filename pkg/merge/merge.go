// Package merge deduplicates normalized records by an identifying field.
//
// Records that share a key value are combined field by field: a field
// present in the earlier record keeps its value, fields the earlier record
// lacks are filled from later ones. Output keeps the order in which each
// key value was first seen. Records whose key is absent or empty all share
// one group.
package merge

import (
	"context"
	"time"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/provenance"
	"github.com/agentstation/tablemerge/pkg/records"
)

// cancelCheckInterval is how many records are merged between context checks.
const cancelCheckInterval = 1024

// Merger combines records sharing the same identifying value.
type Merger interface {
	// Merge consumes in and returns the merged records. Stored records are
	// modified in place; callers must not reuse in afterwards.
	Merge(ctx context.Context, in []*records.Record) (*Result, error)

	// KeyField returns the identifying field records are grouped by.
	KeyField() string
}

type merger struct {
	key        string
	tracking   bool
	collisions []CollisionHook
}

// New creates a Merger grouping records by keyField.
func New(keyField string, opts ...Option) (Merger, error) {
	if keyField == "" {
		return nil, &errors.ValidationError{
			Field:   "key_field",
			Message: "cannot be empty",
		}
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &merger{
		key:        keyField,
		tracking:   options.tracking,
		collisions: options.collisions,
	}, nil
}

// Records merges in by keyField without tracking. It is the plain form of
// the algorithm and never fails.
func Records(in []*records.Record, keyField string) []*records.Record {
	m := &merger{key: keyField}
	out, _ := m.merge(context.Background(), in, provenance.NewTracker(false), &Statistics{})
	return out
}

// KeyField returns the identifying field.
func (m *merger) KeyField() string {
	return m.key
}

// Merge implements Merger.
func (m *merger) Merge(ctx context.Context, in []*records.Record) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	tracker := provenance.NewTracker(m.tracking)
	stats := &Statistics{InputRecords: len(in)}

	out, err := m.merge(ctx, in, tracker, stats)
	if err != nil {
		return nil, err
	}
	stats.OutputRecords = len(out)

	end := time.Now()
	result := &Result{
		Records:    out,
		Provenance: tracker.Map(),
		Metadata: Metadata{
			KeyField:  m.key,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
			Stats:     *stats,
		},
	}

	logger.Debug().
		Int("input", stats.InputRecords).
		Int("output", stats.OutputRecords).
		Int("collisions", stats.Collisions).
		Int("conflicts", stats.ConflictingFields).
		Msg("Merged records")

	if stats.BlankKeys > 1 {
		logger.Warn().
			Int("records", stats.BlankKeys).
			Msg("Records without a key value were merged into one")
	}

	return result, nil
}

func (m *merger) merge(ctx context.Context, in []*records.Record, tracker provenance.Tracker, stats *Statistics) ([]*records.Record, error) {
	index := make(map[string]int, len(in))
	out := make([]*records.Record, 0, len(in))

	for i, r := range in {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapCanceled("merge", err)
			}
		}

		key := r.Value(m.key)
		if key == "" {
			stats.BlankKeys++
		}

		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			m.trackFirst(tracker, key, r)
			continue
		}

		stored := out[pos]
		for _, hook := range m.collisions {
			hook(key, stored, r)
		}
		m.absorb(tracker, key, stored, r, stats)
		stats.Collisions++
	}

	return out, nil
}

// absorb copies fields of incoming that stored lacks. Fields stored already
// has keep their value.
func (m *merger) absorb(tracker provenance.Tracker, key string, stored, incoming *records.Record, stats *Statistics) {
	for _, f := range incoming.Fields() {
		current, ok := stored.Get(f.Name)
		if !ok {
			stored.Set(f.Name, f.Value)
			stats.FilledFields++
			tracker.Track(key, f.Name, provenance.Provenance{
				Source:   incoming.Source,
				Line:     incoming.Line,
				Value:    f.Value,
				Selected: true,
				Reason:   provenance.ReasonFilled,
			})
			continue
		}
		if current != f.Value {
			stats.ConflictingFields++
		}
		tracker.Track(key, f.Name, provenance.Provenance{
			Source: incoming.Source,
			Line:   incoming.Line,
			Value:  f.Value,
			Reason: provenance.ReasonConflict,
		})
	}
}

func (m *merger) trackFirst(tracker provenance.Tracker, key string, r *records.Record) {
	for _, f := range r.Fields() {
		tracker.Track(key, f.Name, provenance.Provenance{
			Source:   r.Source,
			Line:     r.Line,
			Value:    f.Value,
			Selected: true,
			Reason:   provenance.ReasonFirstSeen,
		})
	}
}
