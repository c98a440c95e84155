// Package preview provides the preview command, which runs the merge
// and renders the result to the terminal without writing a file.
package preview

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
)

// Flags holds the preview command flags.
type Flags struct {
	Provenance bool
	Stats      bool
}

// NewCommand creates the preview command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "preview [flags] SOURCE...",
		GroupID: "core",
		Short:   "Show the merged table without writing it",
		Args:    cobra.MinimumNArgs(1),
		Long: `Preview runs the same pipeline as merge and renders the merged rows
to stdout. Output is a table on a terminal and JSON otherwise; use
--format to choose explicitly.`,
		Example: `  tablemerge preview file1.csv file2.csv             # Render a table
  tablemerge preview -o yaml file1.csv file2.csv     # Render YAML
  tablemerge preview --stats file1.csv file2.csv     # Per-source counts
  tablemerge preview --provenance a.csv b.csv        # Where each value came from`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().BoolVar(&flags.Provenance, "provenance", false, "show which source row supplied each field")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "show per-source counts instead of records")
	cmd.MarkFlagsMutuallyExclusive("provenance", "stats")

	return cmd
}
