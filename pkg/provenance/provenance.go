// Package provenance provides field-level tracking of which source row
// supplied each value of a merged record.
package provenance

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Reasons recorded for field values.
const (
	ReasonFirstSeen = "first seen"
	ReasonFilled    = "filled from later record"
	ReasonConflict  = "discarded, first-seen value kept"
)

// Provenance tracks the origin of one field value.
type Provenance struct {
	Source    string    `yaml:"source" json:"source"`
	Line      int       `yaml:"line,omitempty" json:"line,omitempty"`
	Value     string    `yaml:"value" json:"value"`
	Selected  bool      `yaml:"selected" json:"selected"`
	Reason    string    `yaml:"reason" json:"reason"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// Map is provenance keyed by merge key value, then field name.
type Map map[string]map[string][]Provenance

// Tracker records provenance while records are merged.
type Tracker interface {
	// Track records provenance for a field of the merged record with key.
	Track(key, field string, p Provenance)

	// FindByField retrieves provenance for a specific field.
	FindByField(key, field string) []Provenance

	// FindByKey retrieves all provenance for one merged record.
	FindByKey(key string) map[string][]Provenance

	// Map returns a copy of the complete provenance map.
	Map() Map

	// Clear removes all provenance data.
	Clear()
}

type tracker struct {
	mu         sync.RWMutex
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker records
// nothing and returns nil from every lookup.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(key, field string, history Provenance) {
	if !p.enabled {
		return
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fields, ok := p.provenance[key]
	if !ok {
		fields = make(map[string][]Provenance)
		p.provenance[key] = fields
	}
	fields[field] = append(fields[field], history)
}

// FindByField retrieves provenance for a specific field.
func (p *tracker) FindByField(key, field string) []Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.provenance[key][field])
}

// FindByKey retrieves all provenance for a merged record.
func (p *tracker) FindByKey(key string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyFields(p.provenance[key])
}

// Map returns the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = copyFields(v)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provenance = make(Map)
}

func copyFields(fields map[string][]Provenance) map[string][]Provenance {
	if fields == nil {
		return nil
	}
	out := make(map[string][]Provenance, len(fields))
	for f, h := range fields {
		out[f] = slices.Clone(h)
	}
	return out
}

// Report summarizes provenance per merged record.
type Report struct {
	Records map[string]RecordProvenance
}

// RecordProvenance contains provenance for a single merged record.
type RecordProvenance struct {
	Key    string
	Fields map[string]Field
}

// Field contains the selected value and the values that lost to it.
type Field struct {
	Current   Provenance
	Conflicts []Provenance
}

// GenerateReport creates a provenance report from a Map.
func GenerateReport(m Map) *Report {
	report := &Report{Records: make(map[string]RecordProvenance, len(m))}

	for key, fields := range m {
		rec := RecordProvenance{Key: key, Fields: make(map[string]Field, len(fields))}
		for field, history := range fields {
			var f Field
			for _, h := range history {
				if h.Selected {
					f.Current = h
				}
			}
			// Repeats of the selected value are not conflicts.
			for _, h := range history {
				if !h.Selected && h.Value != f.Current.Value {
					f.Conflicts = append(f.Conflicts, h)
				}
			}
			rec.Fields[field] = f
		}
		report.Records[key] = rec
	}

	return report
}

// Conflicts returns the number of discarded values across the report.
func (r *Report) Conflicts() int {
	n := 0
	for _, rec := range r.Records {
		for _, f := range rec.Fields {
			n += len(f.Conflicts)
		}
	}
	return n
}

// String generates a string representation of the provenance report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	keys := make([]string, 0, len(r.Records))
	for key := range r.Records {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		rec := r.Records[key]
		label := key
		if label == "" {
			label = "(blank)"
		}
		sb.WriteString(label + "\n")
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		fields := make([]string, 0, len(rec.Fields))
		for field := range rec.Fields {
			fields = append(fields, field)
		}
		slices.Sort(fields)

		for _, field := range fields {
			f := rec.Fields[field]
			fmt.Fprintf(&sb, "  %s: %q (from %s)\n", field, f.Current.Value, location(f.Current))
			for _, c := range f.Conflicts {
				fmt.Fprintf(&sb, "    - discarded %q from %s\n", c.Value, location(c))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func location(p Provenance) string {
	if p.Line > 0 {
		return fmt.Sprintf("%s:%d", p.Source, p.Line)
	}
	return p.Source
}

// File represents a provenance file stored on disk.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes the provenance map to a YAML file.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &pf, nil
}
