// Package merge provides the merge command, which runs the pipeline and
// writes the merged table to a file.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
)

// Flags holds the merge command flags.
type Flags struct {
	Out        string
	OutFormat  string
	Provenance string
}

// NewCommand creates the merge command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge [flags] SOURCE...",
		GroupID: "core",
		Short:   "Merge sources and write the result",
		Args:    cobra.MinimumNArgs(1),
		Long: `Merge loads every SOURCE, merges rows that share the identifying field
and writes one row per identity to the output file.

Sources are loaded concurrently. If any source cannot be read, nothing is
written. For fields present in several rows of the same identity, the
value from the earliest SOURCE on the command line wins.

On success "success!" is printed.`,
		Example: `  tablemerge merge file1.csv file2.csv                  # Write out.csv
  tablemerge merge --out people.json a.csv b.csv        # Write JSON
  tablemerge merge --key profile_id a.csv b.csv         # Merge by another field
  tablemerge merge --provenance prov.yaml a.csv b.csv   # Record where values came from`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().StringVar(&flags.Out, "out", "", "destination file (default from config, else out.csv)")
	cmd.Flags().StringVar(&flags.OutFormat, "out-format", "", "output file format: csv, json, yaml (default from the --out extension)")
	cmd.Flags().StringVar(&flags.Provenance, "provenance", "", "also write field provenance to this YAML file")

	return cmd
}
