package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/merge"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/preview"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddCommand(merge.NewCommand(a))
	rootCmd.AddCommand(preview.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}
