// Package csvfile loads records from delimited text files.
//
// The first row names the fields. A data row shorter than the header leaves
// its trailing fields absent. Values past the last header column become
// overflow fields named "_<index>", where index is the zero-based column
// position, so the sixth value of a five-column file is "_5".
package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/records"
	"github.com/agentstation/tablemerge/pkg/sources"
)

const bom = "\ufeff"

var _ sources.Loader = (*Reader)(nil)

// Reader loads CSV files.
type Reader struct {
	comma      rune
	trimSpace  bool
	lazyQuotes bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(rd *Reader) {
		rd.comma = r
	}
}

// WithTrimLeadingSpace drops leading white space in each value.
func WithTrimLeadingSpace(enabled bool) Option {
	return func(rd *Reader) {
		rd.trimSpace = enabled
	}
}

// WithLazyQuotes controls whether stray quotes are accepted inside fields.
// It is enabled by default.
func WithLazyQuotes(enabled bool) Option {
	return func(rd *Reader) {
		rd.lazyQuotes = enabled
	}
}

// New creates a Reader.
func New(opts ...Option) *Reader {
	rd := &Reader{comma: ',', lazyQuotes: true}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Load reads the file at path.
func (rd *Reader) Load(ctx context.Context, path string) ([]*records.Record, error) {
	f, err := os.Open(path) //nolint:gosec // path is a user supplied source
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	return rd.Read(ctx, path, f)
}

// Read parses CSV from r, tagging each record with source.
func (rd *Reader) Read(ctx context.Context, source string, r io.Reader) ([]*records.Record, error) {
	logger := logging.FromContext(logging.WithSource(ctx, source))

	cr := csv.NewReader(r)
	cr.Comma = rd.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = rd.lazyQuotes
	cr.TrimLeadingSpace = rd.trimSpace

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.MissingHeader("csv", source)
	}
	if err != nil {
		return nil, errors.WrapRead("csv", source, err)
	}
	header = append([]string(nil), header...)
	header[0] = strings.TrimPrefix(header[0], bom)

	var (
		out      []*records.Record
		overflow int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapRead("csv", source, err)
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapRead("csv", source, err)
		}

		line, _ := cr.FieldPos(0)
		rec := records.New()
		rec.Source = source
		rec.Line = line
		for i, v := range row {
			if i < len(header) {
				rec.Set(header[i], v)
				continue
			}
			rec.Set("_"+strconv.Itoa(i), v)
		}
		if len(row) > len(header) {
			overflow++
		}
		out = append(out, rec)
	}

	logger.Debug().
		Int("records", len(out)).
		Int("columns", len(header)).
		Int("overflow_rows", overflow).
		Msg("Read CSV source")

	return out, nil
}
