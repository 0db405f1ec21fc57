// Package rules provides the rules command for inspecting rule sets.
package rules

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/pkg/rules"
)

// NewCommand creates the rules command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		GroupID: "management",
		Short:   "Inspect identifier validation rule sets",
		Long: `A rule set fixes the maximum membercode length, the prefixes that
disqualify a membercode, the review order of statuses and the labels written
to the status column. Rule sets come from the built-in default and the
rules_file named in the config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newExportCommand(app))

	return cmd
}

// summary is the structured form of one listed rule set.
type summary struct {
	Name                string   `json:"name" yaml:"name"`
	MaxIdentifierLength int      `json:"max_identifier_length" yaml:"max_identifier_length"`
	InvalidPrefixes     []string `json:"invalid_prefixes" yaml:"invalid_prefixes"`
	PrefixMode          string   `json:"prefix_mode" yaml:"prefix_mode"`
}

func newListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available rule sets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := app.RuleSets()
			if err != nil {
				return err
			}

			var summaries []summary
			for _, name := range set.Names() {
				r, err := set.Compile(name)
				if err != nil {
					return err
				}
				summaries = append(summaries, summary{
					Name:                r.Name(),
					MaxIdentifierLength: r.MaxIdentifierLength(),
					InvalidPrefixes:     r.InvalidPrefixes(),
					PrefixMode:          r.PrefixMode().String(),
				})
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			if format.IsStructured() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), summaries)
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{s.Name, strconv.Itoa(s.MaxIdentifierLength), strings.Join(s.InvalidPrefixes, ", "), s.PrefixMode})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.Data{
				Headers: []string{"Name", "Max Length", "Invalid Prefixes", "Prefix Mode"},
				Rows:    rows,
			})
		},
	}
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show one rule set (default: the configured rule set)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			r, err := app.Rules(name)
			if err != nil {
				return err
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			if format.IsStructured() {
				set, err := app.RuleSets()
				if err != nil {
					return err
				}
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), rules.Set{r.Name(): set[r.Name()]})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.RulesData(r))
		},
	}
}

func newExportCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print every rule set as a rules file",
		Long: `Export prints the available rule sets in the rules file format, as a
starting point for a custom rules_file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := app.RuleSets()
			if err != nil {
				return err
			}
			data, err := set.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
