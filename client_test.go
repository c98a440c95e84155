package tablemerge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/internal/sinks/csvfile"
	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/records"
	"github.com/agentstation/tablemerge/pkg/sinks"
	"github.com/agentstation/tablemerge/pkg/sources"
)

// memoryLoader serves fixed records per source id.
func memoryLoader(data map[string][]*records.Record) sources.Loader {
	return sources.LoaderFunc(func(_ context.Context, id string) ([]*records.Record, error) {
		recs, ok := data[id]
		if !ok {
			return nil, errors.WrapIO("open", id, os.ErrNotExist)
		}
		out := make([]*records.Record, len(recs))
		for i, r := range recs {
			out[i] = r.Clone()
			out[i].Source = id
			out[i].Line = i + 2
		}
		return out, nil
	})
}

func TestRunAndWriteFixture(t *testing.T) {
	m, err := New(WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.csv")
	res, err := m.RunAndWrite(context.Background(), csvfile.New(out),
		filepath.Join("testdata", "file1.csv"),
		filepath.Join("testdata", "file2.csv"),
	)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	assert.Equal(t, 1, res.Repaired)
	assert.Equal(t, 6, res.Metadata.Stats.InputRecords)
	assert.Equal(t, 4, res.Metadata.Stats.OutputRecords)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, SourceStats{ID: filepath.Join("testdata", "file2.csv"), Records: 3, Repaired: 1}, res.Sources[1])
}

func TestRunRoundTrip(t *testing.T) {
	m, err := New(WithLoader(memoryLoader(map[string][]*records.Record{
		"a": {records.FromPairs("email", "A@x.com", "name", "Bob")},
		"b": {records.FromPairs("email", "a@x.com", "skills", "go", "profile_id", "9")},
	})))
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, map[string]string{
		"email":      "a@x.com",
		"name":       "Bob",
		"skills":     "go",
		"profile_id": "9",
	}, res.Records[0].Map())
}

func TestRunLoadFailureWritesNothing(t *testing.T) {
	m, err := New(WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	called := false
	w := sinks.WriterFunc(func(context.Context, []*records.Record, []columns.Column) error {
		called = true
		return nil
	})

	res, err := m.RunAndWrite(context.Background(), w,
		filepath.Join("testdata", "file1.csv"),
		filepath.Join(t.TempDir(), "missing.csv"),
	)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.False(t, called)

	var ioErr *errors.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Operation)
	assert.True(t, errors.IsNotFound(err))
}

func TestRunReturnsLoadErrorUnchanged(t *testing.T) {
	boom := errors.New("boom")
	m, err := New(WithLoader(sources.LoaderFunc(func(_ context.Context, id string) ([]*records.Record, error) {
		if id == "bad" {
			return nil, boom
		}
		return []*records.Record{records.FromPairs("email", id)}, nil
	})))
	require.NoError(t, err)

	merged := false
	m.OnRecordsMerged(func(*Result) { merged = true })

	_, err = m.Run(context.Background(), "good", "bad", "other")
	assert.Same(t, boom, err)
	assert.False(t, merged)
}

func TestRunFailsWithoutWaitingForSiblings(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	boom := errors.New("boom")
	m, err := New(WithLoader(sources.LoaderFunc(func(_ context.Context, id string) ([]*records.Record, error) {
		if id == "bad" {
			return nil, boom
		}
		<-release
		return []*records.Record{records.FromPairs("email", id)}, nil
	})))
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := m.Run(context.Background(), "slow", "bad")
		errc <- err
	}()

	select {
	case err := <-errc:
		assert.Same(t, boom, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run waited for a blocked sibling after a load failed")
	}
}

func TestRunStopsLaunchingAfterFailure(t *testing.T) {
	var started atomic.Int32
	boom := errors.New("boom")
	m, err := New(
		WithConcurrency(1),
		WithLoader(sources.LoaderFunc(func(_ context.Context, id string) ([]*records.Record, error) {
			if id == "bad" {
				return nil, boom
			}
			started.Add(1)
			return []*records.Record{records.FromPairs("email", id)}, nil
		})),
	)
	require.NoError(t, err)

	_, err = m.Run(context.Background(), "bad", "a", "b", "c")
	assert.Same(t, boom, err)
	assert.Never(t, func() bool { return started.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestRunKeepsSourceOrder(t *testing.T) {
	// Earlier sources finish last; precedence must still follow argument order.
	delays := map[string]time.Duration{"first": 30 * time.Millisecond, "second": 10 * time.Millisecond, "third": 0}
	m, err := New(WithLoader(sources.LoaderFunc(func(ctx context.Context, id string) ([]*records.Record, error) {
		time.Sleep(delays[id])
		return []*records.Record{
			records.FromPairs("email", "shared@x.com", "name", id),
			records.FromPairs("email", id+"@x.com"),
		}, nil
	})))
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "first", "second", "third")
	require.NoError(t, err)

	emails := make([]string, len(res.Records))
	for i, r := range res.Records {
		emails[i] = r.Value("email")
	}
	assert.Equal(t, []string{"shared@x.com", "first@x.com", "second@x.com", "third@x.com"}, emails)
	assert.Equal(t, "first", res.Records[0].Value("name"))
}

func TestRunConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	m, err := New(
		WithConcurrency(2),
		WithLoader(sources.LoaderFunc(func(_ context.Context, id string) ([]*records.Record, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return []*records.Record{records.FromPairs("email", id)}, nil
		})),
	)
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "a", "b", "c", "d", "e", "f")
	require.NoError(t, err)
	assert.Len(t, res.Records, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunHooks(t *testing.T) {
	m, err := New(
		WithOverflow("skills"),
		WithOverflowDelimiter("|"),
		WithLoader(memoryLoader(map[string][]*records.Record{
			"a": {
				records.FromPairs("Email", "a@x.com", "skills", "go", "_5", "rust", "_6", "zig"),
				records.FromPairs("Email", "b@x.com"),
			},
			"b": {records.FromPairs("email", "A@X.COM", "name", "Ann")},
		})),
	)
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		loaded   = map[string]int{}
		repaired []*records.Record
		merged   *Result
	)
	m.OnSourceLoaded(func(source string, count int) {
		mu.Lock()
		defer mu.Unlock()
		loaded[source] = count
	})
	m.OnRecordRepaired(func(r *records.Record) { repaired = append(repaired, r.Clone()) })
	m.OnRecordsMerged(func(r *Result) { merged = r })

	res, err := m.Run(context.Background(), "a", "b")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a": 2, "b": 1}, loaded)
	require.Len(t, repaired, 1)
	assert.Equal(t, "go|rust|zig", repaired[0].Value("skills"))
	assert.Equal(t, "a", repaired[0].Source)
	assert.Same(t, res, merged)
	assert.Equal(t, "Ann", res.Records[0].Value("name"))
	assert.False(t, res.Records[0].Has("_5"))
}

func TestRunProvenance(t *testing.T) {
	m, err := New(
		WithProvenance(true),
		WithLoader(memoryLoader(map[string][]*records.Record{
			"a": {records.FromPairs("email", "a@x.com", "name", "Bob")},
			"b": {records.FromPairs("email", "a@x.com", "name", "Robert")},
		})),
	)
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "a", "b")
	require.NoError(t, err)
	require.NotNil(t, res.Provenance)
	assert.Len(t, res.Provenance["a@x.com"]["name"], 2)
	assert.Equal(t, 1, res.Metadata.Stats.ConflictingFields)
}

func TestRunAndWriteSurfacesWriteError(t *testing.T) {
	writeErr := errors.WrapIO("write", "out.csv", os.ErrPermission)
	m, err := New(WithLoader(memoryLoader(map[string][]*records.Record{
		"a": {records.FromPairs("email", "a@x.com")},
	})))
	require.NoError(t, err)

	var gotCols []columns.Column
	res, err := m.RunAndWrite(context.Background(), sinks.WriterFunc(func(_ context.Context, _ []*records.Record, cols []columns.Column) error {
		gotCols = cols
		return writeErr
	}), "a")
	assert.Same(t, writeErr, err)
	require.NotNil(t, res)
	assert.Equal(t, columns.Default(), gotCols)
}

func TestRunLogs(t *testing.T) {
	tl := logging.NewTestLogger(t)
	m, err := New(
		WithLogger(tl.Logger),
		WithLoader(memoryLoader(map[string][]*records.Record{"a": {records.FromPairs("email", "a@x.com")}})),
	)
	require.NoError(t, err)

	_, err = m.Run(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, tl.ContainsAll(`"message":"Loaded"`, `"message":"Merge completed"`, `"key_field":"email"`))
	for _, line := range tl.Lines() {
		assert.LessOrEqual(t, strings.Count(line, `"key_field"`), 1, line)
	}
}

func TestRunMixedCaseKeyField(t *testing.T) {
	m, err := New(
		WithKeyField("Email"),
		WithLoader(memoryLoader(map[string][]*records.Record{
			"a": {
				records.FromPairs("Email", "A@x.com", "name", "Bob"),
				records.FromPairs("Email", "c@x.com", "name", "Cy"),
			},
			"b": {records.FromPairs("email", "a@x.com", "skills", "go")},
		})),
	)
	require.NoError(t, err)
	assert.Equal(t, "email", m.KeyField())

	res, err := m.Run(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, map[string]string{"email": "a@x.com", "name": "Bob", "skills": "go"}, res.Records[0].Map())
	assert.Equal(t, map[string]string{"email": "c@x.com", "name": "Cy"}, res.Records[1].Map())
	assert.Equal(t, "email", res.Metadata.KeyField)
	assert.Zero(t, res.Metadata.Stats.BlankKeys)
}

func TestRunMixedCaseOverflowField(t *testing.T) {
	m, err := New(
		WithOverflow("Skills", "_2", "_3"),
		WithLoader(memoryLoader(map[string][]*records.Record{
			"a": {records.FromPairs("email", "a@x.com", "Skills", "go", "_2", "sql", "_3", "rust")},
		})),
	)
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{"email", "skills"}, res.Records[0].Names())
	assert.Equal(t, "go,sql,rust", res.Records[0].Value("skills"))
	assert.Equal(t, 1, res.Repaired)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty key", WithKeyField("")},
		{"empty overflow field", WithOverflow("")},
		{"nil loader", WithLoader(nil)},
		{"negative concurrency", WithConcurrency(-1)},
		{"no columns", WithColumns()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}

	m, err := New(WithKeyField("profile_id"))
	require.NoError(t, err)
	assert.Equal(t, "profile_id", m.KeyField())

	_, err = m.RunAndWrite(context.Background(), nil)
	assert.True(t, errors.IsValidationError(err))
}
