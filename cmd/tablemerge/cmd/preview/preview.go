package preview

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/internal/sinks/structured"
	"github.com/agentstation/tablemerge/pkg/provenance"
)

// Execute runs the pipeline over srcs and renders the result to out.
func Execute(ctx context.Context, app appcontext.Interface, flags *Flags, out io.Writer, srcs []string) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	file, _ := out.(*os.File)
	format = output.DetectFormat(string(format), file)

	var opts []tablemerge.Option
	if flags.Provenance {
		opts = append(opts, tablemerge.WithProvenance(true))
	}
	m, err := app.Merger(opts...)
	if err != nil {
		return err
	}

	result, err := m.Run(ctx, srcs...)
	if err != nil {
		return err
	}
	app.Logger().Debug().Msg(result.Summary())

	formatter := output.NewFormatter(format)
	switch {
	case flags.Stats:
		return formatter.Format(out, result.Sources)
	case flags.Provenance:
		if format == output.FormatTable {
			_, err := fmt.Fprint(out, provenance.GenerateReport(result.Provenance).String())
			return err
		}
		return formatter.Format(out, result.Provenance)
	case format == output.FormatTable:
		return formatter.Format(out, output.RecordsToData(result.Records, app.Columns()))
	default:
		return formatter.Format(out, structured.Project(result.Records, app.Columns()))
	}
}
