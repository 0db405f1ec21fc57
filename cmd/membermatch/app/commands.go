package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/membermatch/cmd/duplicates"
	"github.com/agentstation/membermatch/cmd/membermatch/cmd/history"
	"github.com/agentstation/membermatch/cmd/membermatch/cmd/mapping"
	"github.com/agentstation/membermatch/cmd/membermatch/cmd/preview"
	"github.com/agentstation/membermatch/cmd/membermatch/cmd/report"
	"github.com/agentstation/membermatch/cmd/membermatch/cmd/rules"
	"github.com/agentstation/membermatch/cmd/membermatch/cmd/run"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(preview.NewCommand(a))
	rootCmd.AddCommand(duplicates.NewCommand(a))
	rootCmd.AddCommand(report.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(mapping.NewCommand(a))
	rootCmd.AddCommand(rules.NewCommand(a))
	rootCmd.AddCommand(history.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("membermatch %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:     %s\n", a.commit)
				cmd.Printf("  built:      %s\n", a.date)
				cmd.Printf("  built by:   %s\n", a.builtBy)
				cmd.Printf("  go version: %s\n", runtime.Version())
				cmd.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
