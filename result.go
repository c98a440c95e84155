package tablemerge

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/merge"
)

// Result is the outcome of a run.
type Result struct {
	*merge.Result

	// Sources holds per-source counts in the order sources were given.
	Sources []SourceStats

	// Repaired is the number of records whose overflow values were folded.
	Repaired int
}

// SourceStats counts what one source contributed.
type SourceStats struct {
	ID       string `json:"source" yaml:"source"`
	Records  int    `json:"records" yaml:"records"`
	Repaired int    `json:"repaired" yaml:"repaired"`
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d sources, %d repaired; %s", len(r.Sources), r.Repaired, r.Result.Summary())
}

func countRepaired(stats []SourceStats) int {
	n := 0
	for _, s := range stats {
		n += s.Repaired
	}
	return n
}
