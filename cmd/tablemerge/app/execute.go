package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/pkg/constants"
)

// Execute runs the tablemerge CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tablemerge",
		Short:   "Merge CSV sources into one deduplicated table",
		Version: a.version,
		Long: `tablemerge merges several CSV files that describe the same people with
differently shaped headers into one table with a single row per person.

Field names are compared case-insensitively, the identifying field (email by
default) is compared case-insensitively, and values that spilled past the
last header column are folded back into the skills field. When two rows
share an identity, the row from the earlier file wins for every field both
rows have; fields only the later row has are added.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is ./"+constants.DefaultConfigName+".yaml or $HOME/"+constants.DefaultConfigName+".yaml)")
	pf.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.Bool("no-color", false, "disable colored output")
	pf.StringP("format", "o", "", "display format: table, json, yaml")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Pipeline flags
	pf.StringP("key", "k", constants.DefaultKeyField, "identifying field rows are merged by")
	pf.StringSlice("columns", nil, "output columns as id[:title], in order (default: the contact table layout)")
	pf.String("overflow-field", constants.DefaultOverflowField, "field that absorbs values past the last header column")
	pf.StringSlice("overflow-slots", constants.DefaultOverflowSlots(), "overflow column names folded into the overflow field")
	pf.String("overflow-delimiter", constants.DefaultDelimiter, "separator used when folding overflow values")
	pf.StringP("delimiter", "d", ",", "CSV field delimiter of the sources")
	pf.Bool("trim-space", false, "trim leading white space from source values")
	pf.Int("concurrency", constants.DefaultConcurrency, "maximum sources loaded at once (0 for no limit)")

	rootCmd.SetVersionTemplate("tablemerge {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if configFile := mustGetString(cmd, "config"); configFile != "" {
		config, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	if err := a.config.UpdateFromFlags(cmd); err != nil {
		return err
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	a.logger.Debug().
		Str("config_file", a.config.ConfigFile).
		Str("key_field", a.config.KeyField).
		Msg("Configuration loaded")
	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
