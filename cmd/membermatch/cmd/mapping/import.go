package mapping

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/errors"
)

func newImportCommand(app application.Application) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <mappings.json>",
		Short: "Import mappings saved by the desktop tool",
		Long: `Import reads a mappings.json file written by the older desktop tool and
saves each template it holds. Existing mappings are kept unless --force is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.WrapIO("read", args[0], err)
			}
			mappings, err := mapping.ImportLegacy(data, args[0])
			if err != nil {
				return err
			}

			store, err := app.Mappings()
			if err != nil {
				return err
			}
			logger := app.Logger()
			for i := range mappings {
				if err := store.Save(cmd.Context(), &mappings[i], force); err != nil {
					return err
				}
				logger.Debug().Str("mapping", mappings[i].Name).Msg("Imported mapping")
			}
			logger.Info().Int("count", len(mappings)).Str("file", args[0]).Msg("Imported mappings")
			return render(cmd, app, mappings)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace existing mappings with the same names")

	return cmd
}
