package mapping

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/internal/workbook"
	"github.com/agentstation/membermatch/pkg/errors"
)

// saveFlags holds the mapping save flags.
type saveFlags struct {
	File    string
	Check   string
	Force   bool
	Mapping mapping.Mapping
}

func newSaveCommand(app application.Application) *cobra.Command {
	flags := &saveFlags{}

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Create or replace a mapping",
		Long: `Save stores a mapping built from flags, or read from a YAML file with
--file. Flags given alongside --file override the file's values. Roster
headers default to NAME, CHN and MEMBERCODE.

With --check the mapping is first tested against a workbook: both sheets
must exist and carry every mapped column.`,
		Example: `  membermatch mapping save branch-ledger \
    --roster-sheet CSCS --ledger-sheet IXTRAC \
    --ledger-name "Client Name" --ledger-context CHN \
    --identifier-out MEMBERCODE --status-out STATUS
  membermatch mapping save branch-ledger --file branch.yaml --force
  membermatch mapping save branch-ledger --file branch.yaml --check march.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := build(cmd, args[0], flags)
			if err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return err
			}

			if flags.Check != "" {
				wb, err := workbook.Open(flags.Check)
				if err != nil {
					return err
				}
				defer func() { _ = wb.Close() }()
				if err := cmdutil.Check(wb, m); err != nil {
					return err
				}
			}

			store, err := app.Mappings()
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), m, flags.Force); err != nil {
				return err
			}
			app.Logger().Info().Str("mapping", m.Name).Msg("Saved mapping")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.File, "file", "f", "", "read the mapping from a YAML file")
	f.StringVar(&flags.Check, "check", "", "verify the mapping against this workbook before saving")
	f.BoolVar(&flags.Force, "force", false, "replace an existing mapping with the same name")
	f.StringVar(&flags.Mapping.Description, "description", "", "free-form description")
	f.StringVar(&flags.Mapping.SourceSheet, "roster-sheet", "", "sheet holding the roster")
	f.StringVar(&flags.Mapping.TargetSheet, "ledger-sheet", "", "sheet holding the ledger")
	f.StringVar(&flags.Mapping.SourceName, "roster-name", "", "roster name header (default NAME)")
	f.StringVar(&flags.Mapping.SourceContext, "roster-context", "", "roster context header (default CHN)")
	f.StringVar(&flags.Mapping.SourceIdentifier, "roster-identifier", "", "roster membercode header (default MEMBERCODE)")
	f.StringVar(&flags.Mapping.TargetName, "ledger-name", "", "ledger name header")
	f.StringVar(&flags.Mapping.TargetContext, "ledger-context", "", "ledger context header")
	f.StringVar(&flags.Mapping.IdentifierOut, "identifier-out", "", "ledger header the membercode is written to")
	f.StringVar(&flags.Mapping.StatusOut, "status-out", "", "ledger header the status is written to")

	return cmd
}

// build assembles the mapping from --file and the field flags that were set.
func build(cmd *cobra.Command, name string, flags *saveFlags) (*mapping.Mapping, error) {
	var m mapping.Mapping
	if flags.File != "" {
		data, err := os.ReadFile(flags.File)
		if err != nil {
			return nil, errors.WrapIO("read", flags.File, err)
		}
		if err := yaml.UnmarshalWithOptions(data, &m, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.WrapParse("yaml", flags.File, err)
		}
	}
	m.Name = name

	overrides := []struct {
		flag  string
		dst   *string
		value string
	}{
		{"description", &m.Description, flags.Mapping.Description},
		{"roster-sheet", &m.SourceSheet, flags.Mapping.SourceSheet},
		{"ledger-sheet", &m.TargetSheet, flags.Mapping.TargetSheet},
		{"roster-name", &m.SourceName, flags.Mapping.SourceName},
		{"roster-context", &m.SourceContext, flags.Mapping.SourceContext},
		{"roster-identifier", &m.SourceIdentifier, flags.Mapping.SourceIdentifier},
		{"ledger-name", &m.TargetName, flags.Mapping.TargetName},
		{"ledger-context", &m.TargetContext, flags.Mapping.TargetContext},
		{"identifier-out", &m.IdentifierOut, flags.Mapping.IdentifierOut},
		{"status-out", &m.StatusOut, flags.Mapping.StatusOut},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = o.value
		}
	}
	return &m, nil
}
