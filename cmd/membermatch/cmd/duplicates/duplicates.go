// Package duplicates provides the duplicates command.
package duplicates

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/pkg/duplicates"
	"github.com/agentstation/membermatch/pkg/logging"
)

// NewCommand creates the duplicates command.
func NewCommand(app application.Application) *cobra.Command {
	var mappingName string

	cmd := &cobra.Command{
		Use:     "duplicates <workbook>",
		Aliases: []string{"dups"},
		GroupID: "core",
		Short:   "List roster records that share a name and context",
		Long: `Duplicates reads the roster sheet and lists every record whose normalized
name and context key are shared with another record. Every member of such a
group is listed, whatever its membercode. These are the records a run writes
to the SOURCE_DUPLICATES sheet.`,
		Example: `  membermatch duplicates march.xlsx --mapping branch-ledger`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in, err := cmdutil.OpenInput(ctx, app, args[0], mappingName)
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			roster, err := in.Workbook.ReadRoster(in.Mapping)
			if err != nil {
				return err
			}

			dups := duplicates.Find(roster)
			logging.FromContext(ctx).Info().
				Int("roster", len(roster)).
				Int("groups", len(duplicates.Groups(roster))).
				Msgf("Found %d duplicate records", len(dups))

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			var data any = output.DuplicatesData(dups)
			if format.IsStructured() {
				data = dups
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}

	cmdutil.AddMappingFlag(cmd, &mappingName)

	return cmd
}
