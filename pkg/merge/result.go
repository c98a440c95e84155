package merge

import (
	"fmt"
	"time"

	"github.com/agentstation/tablemerge/pkg/provenance"
	"github.com/agentstation/tablemerge/pkg/records"
)

// Result represents the outcome of a merge.
type Result struct {
	// Records holds one merged record per distinct key value, in the order
	// each key was first seen.
	Records []*records.Record

	// Provenance is nil unless tracking was enabled.
	Provenance provenance.Map

	Metadata Metadata
}

// Metadata contains metadata about the merge.
type Metadata struct {
	KeyField  string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stats     Statistics
}

// Statistics counts what the merge did.
type Statistics struct {
	// InputRecords is the number of records given to the merge
	InputRecords int
	// OutputRecords is the number of merged records
	OutputRecords int
	// Collisions is the number of records folded into an earlier one
	Collisions int
	// FilledFields counts fields copied from a later record
	FilledFields int
	// ConflictingFields counts later values that differed from the kept value
	ConflictingFields int
	// BlankKeys counts input records whose key was absent or empty
	BlankKeys int
}

// Summary returns a one-line description of the merge.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	return fmt.Sprintf("%d records merged into %d by %q (%d collisions, %d fields filled, %d conflicts) in %v",
		s.InputRecords, s.OutputRecords, r.Metadata.KeyField,
		s.Collisions, s.FilledFields, s.ConflictingFields, r.Metadata.Duration)
}
