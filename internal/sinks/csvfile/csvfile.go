// Package csvfile writes merged records as a CSV file with a fixed header.
package csvfile

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/agentstation/tablemerge/internal/sinks/atomicfile"
	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/records"
	"github.com/agentstation/tablemerge/pkg/sinks"
)

var _ sinks.Writer = (*Writer)(nil)

// Writer writes records to a CSV file at a fixed path. The file is
// replaced atomically.
type Writer struct {
	path  string
	comma rune
}

// Option configures a Writer.
type Option func(*Writer)

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(w *Writer) {
		w.comma = r
	}
}

// New creates a Writer for path.
func New(path string, opts ...Option) *Writer {
	w := &Writer{path: path, comma: ','}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the destination file.
func (w *Writer) Path() string {
	return w.path
}

// Write implements sinks.Writer.
func (w *Writer) Write(ctx context.Context, recs []*records.Record, cols []columns.Column) error {
	if err := columns.Validate(cols); err != nil {
		return err
	}

	err := atomicfile.Write(w.path, func(out io.Writer) error {
		return Encode(ctx, out, recs, cols, w.comma)
	})
	if err != nil {
		return err
	}

	logging.FromContext(logging.WithOutput(ctx, w.path)).Info().
		Int("records", len(recs)).
		Int("columns", len(cols)).
		Msg("Wrote CSV output")
	return nil
}

// Encode writes the header row of column titles followed by one row per
// record.
func Encode(ctx context.Context, out io.Writer, recs []*records.Record, cols []columns.Column, comma rune) error {
	cw := csv.NewWriter(out)
	cw.Comma = comma

	if err := cw.Write(columns.Headers(cols)); err != nil {
		return err
	}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return errors.WrapCanceled("write csv", err)
		}
		if err := cw.Write(sinks.Row(r, cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
