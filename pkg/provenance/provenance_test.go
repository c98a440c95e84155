package provenance

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	tr := NewTracker(true)
	tr.Track("a@x.com", "name", Provenance{Source: "file1.csv", Line: 1, Value: "Bob", Selected: true, Reason: ReasonFirstSeen})
	tr.Track("a@x.com", "name", Provenance{Source: "file2.csv", Line: 3, Value: "Robert", Reason: ReasonConflict})
	tr.Track("a@x.com", "profile_id", Provenance{Source: "file2.csv", Line: 3, Value: "9", Selected: true, Reason: ReasonFilled})

	name := tr.FindByField("a@x.com", "name")
	require.Len(t, name, 2)
	assert.Equal(t, "Bob", name[0].Value)
	assert.False(t, name[0].Timestamp.IsZero())

	fields := tr.FindByKey("a@x.com")
	assert.Len(t, fields, 2)
	assert.Nil(t, tr.FindByKey("missing"))

	m := tr.Map()
	m["a@x.com"]["name"] = nil
	assert.Len(t, tr.FindByField("a@x.com", "name"), 2, "Map must return a copy")

	tr.Clear()
	assert.Empty(t, tr.Map())
}

func TestDisabledTracker(t *testing.T) {
	tr := NewTracker(false)
	tr.Track("k", "f", Provenance{Value: "v"})

	assert.Nil(t, tr.FindByField("k", "f"))
	assert.Nil(t, tr.FindByKey("k"))
	assert.Nil(t, tr.Map())
}

func TestGenerateReport(t *testing.T) {
	tr := NewTracker(true)
	tr.Track("a@x.com", "name", Provenance{Source: "file1.csv", Line: 1, Value: "Bob", Selected: true, Reason: ReasonFirstSeen})
	tr.Track("a@x.com", "name", Provenance{Source: "file2.csv", Line: 3, Value: "Robert", Reason: ReasonConflict})
	tr.Track("a@x.com", "name", Provenance{Source: "file3.csv", Line: 2, Value: "Bob", Reason: ReasonConflict})
	tr.Track("", "name", Provenance{Source: "file1.csv", Line: 5, Value: "Nobody", Selected: true, Reason: ReasonFirstSeen})

	report := GenerateReport(tr.Map())
	require.Contains(t, report.Records, "a@x.com")

	name := report.Records["a@x.com"].Fields["name"]
	assert.Equal(t, "Bob", name.Current.Value)
	require.Len(t, name.Conflicts, 1)
	assert.Equal(t, "Robert", name.Conflicts[0].Value)
	assert.Equal(t, 1, report.Conflicts())

	out := report.String()
	assert.Contains(t, out, `name: "Bob" (from file1.csv:1)`)
	assert.Contains(t, out, `discarded "Robert" from file2.csv:3`)
	assert.Contains(t, out, "(blank)")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.yaml")

	tr := NewTracker(true)
	tr.Track("a@x.com", "skills", Provenance{Source: "file2.csv", Line: 2, Value: "go,react", Selected: true, Reason: ReasonFilled})
	require.NoError(t, Save(path, tr.Map()))

	pf, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, pf)
	got := pf.Provenance["a@x.com"]["skills"]
	require.Len(t, got, 1)
	assert.Equal(t, "go,react", got[0].Value)
	assert.Equal(t, "file2.csv", got[0].Source)
	assert.True(t, got[0].Selected)

	missing, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
