// Package mapping provides the mapping command and its subcommands for
// managing saved column mapping templates.
package mapping

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/internal/mapping"
)

// NewCommand creates the mapping command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mapping",
		Aliases: []string{"mappings"},
		GroupID: "management",
		Short:   "Manage column mapping templates",
		Long: `A mapping names the roster and ledger sheets of a workbook and the headers
that hold the name, context (CHN) and membercode columns. Runs refer to a
mapping by name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newSaveCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	cmd.AddCommand(newImportCommand(app))

	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved mappings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.Mappings()
			if err != nil {
				return err
			}
			mappings, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, app, mappings)
		},
	}
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Mappings()
			if err != nil {
				return err
			}
			m, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, app, []mapping.Mapping{*m})
		},
	}
}

func newDeleteCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a mapping",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Mappings()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("mapping", args[0]).Msg("Deleted mapping")
			return nil
		},
	}
}

// render renders mappings as a table, or as the full templates for
// structured formats.
func render(cmd *cobra.Command, app application.Application, mappings []mapping.Mapping) error {
	format, err := cmdutil.Format(app)
	if err != nil {
		return err
	}
	var data any = output.MappingsData(mappings)
	if format.IsStructured() {
		data = mappings
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}
