// Package report provides the report command, which renders a recorded run.
package report

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/pkg/review"
	"github.com/agentstation/membermatch/pkg/status"
)

// stored is the structured form of a report.
type stored struct {
	Run       audit.Run      `json:"run" yaml:"run"`
	Decisions []review.Entry `json:"decisions" yaml:"decisions"`
}

// NewCommand creates the report command.
func NewCommand(app application.Application) *cobra.Command {
	var reviewOnly bool

	cmd := &cobra.Command{
		Use:     "report <run-id>",
		GroupID: "core",
		Short:   "Render a recorded run",
		Long: `Report prints a run from the audit history: its metadata, the status
summary and the decision log in review order. A unique prefix of the run ID
is enough. Use -o markdown for a document that can be attached to a ticket.`,
		Example: `  membermatch report 3f2a
  membermatch report 3f2a --review-only -o markdown > review.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := cmdutil.Audit(ctx, app)
			if err != nil {
				return err
			}
			run, err := store.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err := store.RunDecisions(ctx, run.ID)
			if err != nil {
				return err
			}
			if reviewOnly {
				entries = needsReview(entries)
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			if format.IsStructured() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), stored{Run: *run, Decisions: entries})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.RunReport(*run, entries, priority(app, run.RuleSet)))
		},
	}

	cmd.Flags().BoolVar(&reviewOnly, "review-only", false, "leave confirmed rows out of the decision log")

	return cmd
}

// priority returns the review order of the rule set the run used, or the
// default order when that rule set is no longer configured.
func priority(app application.Application, ruleSet string) status.Priority {
	r, err := app.Rules(ruleSet)
	if err != nil {
		app.Logger().Warn().Err(err).Str("rule_set", ruleSet).Msg("Rule set unavailable, using default review order")
		return status.DefaultPriority()
	}
	return r.Priority()
}

func needsReview(entries []review.Entry) []review.Entry {
	out := make([]review.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Status.IsConfirmed() {
			out = append(out, e)
		}
	}
	return out
}
