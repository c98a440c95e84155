package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "file2.csv", strings.Join([]string{
		"Email,Name,profile_id,skills,created_at",
		"A@x.com,Bob,9,go,2020-01-01",
		"",
		"c@x.com,Cat,10,\"go\",2020-01-02,\"react\",\"node.js\"",
		"d@x.com,Dan",
	}, "\n")+"\n")

	recs, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, []string{"Email", "Name", "profile_id", "skills", "created_at"}, recs[0].Names())
	assert.Equal(t, "A@x.com", recs[0].Value("Email"))
	assert.Equal(t, path, recs[0].Source)
	assert.Equal(t, 2, recs[0].Line)

	overflow := recs[1]
	assert.Equal(t, 4, overflow.Line)
	assert.Equal(t, "react", overflow.Value("_5"))
	assert.Equal(t, "node.js", overflow.Value("_6"))
	assert.False(t, overflow.Has("_7"))

	short := recs[2]
	assert.Equal(t, "Dan", short.Value("Name"))
	assert.False(t, short.Has("skills"))
	assert.False(t, short.Has("created_at"))
}

func TestReadOptions(t *testing.T) {
	input := "\ufeffemail;name\n a@x.com; Bob\n"

	recs, err := New(WithComma(';'), WithTrimLeadingSpace(true)).
		Read(context.Background(), "inline", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a@x.com", recs[0].Value("email"))
	assert.Equal(t, "Bob", recs[0].Value("name"))
	assert.Equal(t, "inline", recs[0].Source)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)

		var ioErr *errors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "open", ioErr.Operation)
		assert.True(t, errors.IsNotFound(err))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := New().Load(context.Background(), writeFile(t, "empty.csv", ""))
		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "missing header", pe.Message)
		assert.ErrorIs(t, err, errors.ErrMissingHeader)
	})

	t.Run("bare quote with strict quoting", func(t *testing.T) {
		path := writeFile(t, "bad.csv", "a,b\nx\"y,z\n")
		_, err := New(WithLazyQuotes(false)).Load(context.Background(), path)
		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "csv", pe.Format)
		assert.Equal(t, 2, pe.Line)
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := New().Read(context.Background(), "broken", iotest.ErrReader(os.ErrClosed))
		var ioErr *errors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "read", ioErr.Operation)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().Read(ctx, "inline", strings.NewReader("a\n1\n"))
		assert.True(t, errors.IsCanceled(err))
	})
}

func TestReadLogs(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := New().Read(ctx, "inline", strings.NewReader("a\n1,2\n"))
	require.NoError(t, err)
	assert.True(t, tl.ContainsAll("Read CSV source", `"overflow_rows":1`, `"source":"inline"`))
}
