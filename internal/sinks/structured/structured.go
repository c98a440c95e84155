// Package structured writes merged records as JSON or YAML documents.
// Each record becomes an object whose keys are the column titles in column
// order.
package structured

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tablemerge/internal/sinks/atomicfile"
	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/records"
	"github.com/agentstation/tablemerge/pkg/sinks"
)

// Format is a structured output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", &errors.ValidationError{
		Field:   "format",
		Value:   s,
		Message: "must be json or yaml",
	}
}

var _ sinks.Writer = (*Writer)(nil)

// Writer writes records to a file in a structured format.
type Writer struct {
	path   string
	format Format
}

// New creates a Writer for path.
func New(path string, format Format) *Writer {
	return &Writer{path: path, format: format}
}

// Write implements sinks.Writer.
func (w *Writer) Write(ctx context.Context, recs []*records.Record, cols []columns.Column) error {
	if err := columns.Validate(cols); err != nil {
		return err
	}

	err := atomicfile.Write(w.path, func(out io.Writer) error {
		return Encode(ctx, out, w.format, recs, cols)
	})
	if err != nil {
		return err
	}

	logging.FromContext(logging.WithOutput(ctx, w.path)).Info().
		Str("format", string(w.format)).
		Int("records", len(recs)).
		Msg("Wrote structured output")
	return nil
}

// Project returns one record per input holding only the columns, keyed by
// column title in column order.
func Project(recs []*records.Record, cols []columns.Column) []*records.Record {
	out := make([]*records.Record, len(recs))
	for i, r := range recs {
		p := records.New()
		for _, c := range cols {
			p.Set(c.Header(), r.Value(c.ID))
		}
		out[i] = p
	}
	return out
}

// Encode writes recs to out as a single array document.
func Encode(ctx context.Context, out io.Writer, format Format, recs []*records.Record, cols []columns.Column) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapCanceled("encode "+string(format), err)
	}
	rows := Project(recs, cols)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		data, err := yaml.Marshal(rows)
		if err != nil {
			return errors.WrapParse("yaml", "", err)
		}
		_, err = out.Write(data)
		return err
	default:
		_, err := ParseFormat(string(format))
		return err
	}
}
