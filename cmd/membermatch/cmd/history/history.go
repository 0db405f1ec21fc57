// Package history provides the history command for browsing recorded runs.
package history

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
)

// NewCommand creates the history command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		GroupID: "management",
		Short:   "Browse recorded reconciliation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newDeleteCommand(app))

	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded runs, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := cmdutil.Audit(cmd.Context(), app)
			if err != nil {
				return err
			}
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			var data any = output.RunsData(runs)
			if format.IsStructured() {
				data = runs
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum runs to show (0 for all)")

	return cmd
}

func newDeleteCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <run-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a recorded run and its decision log",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdutil.Audit(cmd.Context(), app)
			if err != nil {
				return err
			}
			if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("run_id", args[0]).Msg("Deleted run")
			return nil
		},
	}
}
