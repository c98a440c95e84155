package errors_test

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "key_field",
			Message: "cannot be empty",
		}
		assert.Equal(t, "invalid key_field: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "invalid input: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewValidationError("concurrency", -1, "must not be negative")
		assert.Contains(t, err.Error(), "concurrency")
		assert.Contains(t, err.Error(), "must not be negative")
	})
}

func TestConfigError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		base := errors.New("bad yaml")
		err := pkgerrors.NewConfigError("columns", "cannot decode", base)
		assert.Equal(t, "config columns: cannot decode", err.Error())
		assert.ErrorIs(t, err, base)
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "missing"}
		assert.Equal(t, "config: missing", err.Error())
	})
}

func TestParseError(t *testing.T) {
	t.Run("with file and position", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "csv",
			File:    "file1.csv",
			Line:    3,
			Column:  7,
			Message: "bare quote",
		}
		assert.Equal(t, "file1.csv:3:7: csv: bare quote", err.Error())
	})

	t.Run("with file only", func(t *testing.T) {
		err := pkgerrors.MissingHeader("csv", "file1.csv")
		assert.Equal(t, "file1.csv: csv: missing header", err.Error())
		assert.ErrorIs(t, err, pkgerrors.ErrMissingHeader)
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "yaml", Message: "bad indent"}
		assert.Equal(t, "yaml: bad indent", err.Error())
	})

	t.Run("wrap", func(t *testing.T) {
		base := errors.New("boom")
		err := pkgerrors.WrapParse("csv", "a.csv", base)
		assert.ErrorIs(t, err, base)
		assert.Nil(t, pkgerrors.WrapParse("csv", "a.csv", nil))
	})
}

func TestIOError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewIOError("write", "out.csv", errors.New("disk full"))
		assert.Equal(t, "write out.csv: disk full", err.Error())
	})

	t.Run("without path", func(t *testing.T) {
		err := &pkgerrors.IOError{Operation: "read", Message: "closed"}
		assert.Equal(t, "read: closed", err.Error())
	})

	t.Run("missing file is not found", func(t *testing.T) {
		_, openErr := os.Open("/definitely/not/here.csv")
		require.Error(t, openErr)

		err := pkgerrors.WrapIO("open", "/definitely/not/here.csv", openErr)
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("other failures are not not-found", func(t *testing.T) {
		err := pkgerrors.WrapIO("write", "out.csv", errors.New("disk full"))
		assert.False(t, pkgerrors.IsNotFound(err))
		assert.Nil(t, pkgerrors.WrapIO("write", "out.csv", nil))
	})
}

func TestWrapCanceled(t *testing.T) {
	err := pkgerrors.WrapCanceled("load", context.Canceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pkgerrors.WrapCanceled("load", nil))
}

func TestWrapRead(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapRead("csv", "a.csv", nil))
	})

	t.Run("csv syntax error keeps position", func(t *testing.T) {
		_, csvErr := csv.NewReader(strings.NewReader("a,b\nx\"y,z\n")).ReadAll()
		require.Error(t, csvErr)

		err := pkgerrors.WrapRead("csv", "file2.csv", csvErr)
		var pe *pkgerrors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "file2.csv", pe.File)
		assert.Equal(t, 2, pe.Line)
		assert.Positive(t, pe.Column)
		assert.Equal(t, csv.ErrBareQuote.Error(), pe.Message)
		assert.ErrorIs(t, err, csv.ErrBareQuote)
		assert.False(t, pkgerrors.IsNotFound(err))
	})

	t.Run("context error is canceled", func(t *testing.T) {
		err := pkgerrors.WrapRead("csv", "file1.csv", context.DeadlineExceeded)
		assert.True(t, pkgerrors.IsCanceled(err))
		assert.Contains(t, err.Error(), "read file1.csv")
	})

	t.Run("other failures are io errors", func(t *testing.T) {
		err := pkgerrors.WrapRead("csv", "file3.csv", os.ErrClosed)
		var ioErr *pkgerrors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "read", ioErr.Operation)
		assert.Equal(t, "file3.csv", ioErr.Path)
	})
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", pkgerrors.NewIOError("open", "a.csv", os.ErrNotExist))

	var ioErr *pkgerrors.IOError
	require.True(t, pkgerrors.As(wrapped, &ioErr))
	assert.Equal(t, "a.csv", ioErr.Path)
}
