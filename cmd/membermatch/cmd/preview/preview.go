// Package preview provides the preview command.
package preview

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
)

// NewCommand creates the preview command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		mappingName string
		rows        int
	)

	cmd := &cobra.Command{
		Use:     "preview <workbook>",
		GroupID: "core",
		Short:   "Show the first ledger rows as the matcher will see them",
		Long: `Preview reads the ledger sheet through a mapping and prints the first rows
with the normalized name and the two-token fallback key, so a mapping can be
checked before a run.`,
		Example: `  membermatch preview march.xlsx --mapping branch-ledger
  membermatch preview march.xlsx -m branch-ledger --rows 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows < 1 {
				return &errors.ValidationError{Field: "rows", Value: rows, Message: "must be at least 1"}
			}

			in, err := cmdutil.OpenInput(cmd.Context(), app, args[0], mappingName)
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			targets, err := in.Workbook.ReadTargets(in.Mapping)
			if err != nil {
				return err
			}
			if len(targets) > rows {
				targets = targets[:rows]
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			var data any = output.PreviewData(targets)
			if format.IsStructured() {
				data = targets
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}

	cmdutil.AddMappingFlag(cmd, &mappingName)
	cmd.Flags().IntVarP(&rows, "rows", "n", constants.DefaultPreviewRows, "number of ledger rows to show")

	return cmd
}
