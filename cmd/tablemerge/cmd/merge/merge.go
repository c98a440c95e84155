package merge

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/sinks/csvfile"
	"github.com/agentstation/tablemerge/internal/sinks/structured"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/provenance"
	"github.com/agentstation/tablemerge/pkg/sinks"
)

// Execute runs the pipeline over srcs and writes the result.
func Execute(ctx context.Context, app appcontext.Interface, flags *Flags, out io.Writer, srcs []string) error {
	logger := app.Logger()

	path := flags.Out
	if path == "" {
		path = app.OutputPath()
	}
	if path == "" {
		path = constants.DefaultOutputPath
	}

	w, err := NewWriter(path, flags.OutFormat)
	if err != nil {
		return err
	}

	var opts []tablemerge.Option
	if flags.Provenance != "" {
		opts = append(opts, tablemerge.WithProvenance(true))
	}
	m, err := app.Merger(opts...)
	if err != nil {
		return err
	}

	result, err := m.RunAndWrite(ctx, w, srcs...)
	if err != nil {
		return err
	}

	if flags.Provenance != "" {
		if err := provenance.Save(flags.Provenance, result.Provenance); err != nil {
			return err
		}
		logger.Info().Str("path", flags.Provenance).Msg("Wrote provenance")
	}

	logger.Info().Str("path", path).Msg(result.Summary())
	_, err = fmt.Fprintln(out, constants.SuccessMessage)
	return err
}

// NewWriter returns the writer for path. An empty format is derived from
// the file extension: .json and .yaml/.yml select structured output,
// anything else CSV.
func NewWriter(path, format string) (sinks.Writer, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		case ".yaml", ".yml":
			format = "yaml"
		case ".tsv":
			return csvfile.New(path, csvfile.WithComma('\t')), nil
		default:
			format = "csv"
		}
	}

	if strings.EqualFold(format, "csv") {
		return csvfile.New(path), nil
	}
	f, err := structured.ParseFormat(format)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:   "out-format",
			Value:   format,
			Message: "must be one of: csv, json, yaml",
		}
	}
	return structured.New(path, f), nil
}
