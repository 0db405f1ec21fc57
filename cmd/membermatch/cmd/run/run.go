// Package run provides the run command, which reconciles one workbook and
// writes the enriched copy.
package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/cmd/cmdutil"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/logging"
	"github.com/agentstation/membermatch/pkg/reconcile"
)

// Flags holds the run command flags.
type Flags struct {
	Mapping string
	RuleSet string
	Out     string
	Workers int
	NoAudit bool
}

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "run <workbook>",
		GroupID: "core",
		Short:   "Reconcile a workbook and write the result",
		Long: `Run fills the ledger's identifier and status columns from the roster
using a saved column mapping.

The input workbook is never modified. The result is written to
<output_dir>/<name>_RECONCILED.xlsx unless --out is given, and the run is
recorded in the audit history unless --no-audit is set.`,
		Example: `  membermatch run march.xlsx --mapping branch-ledger
  membermatch run march.xlsx -m branch-ledger --rule-set strict --workers 4
  membermatch run march.xlsx -m branch-ledger --out reviewed.xlsx --no-audit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				flags.Workers = app.Workers()
			}
			return Execute(cmd.Context(), cmd, app, args[0], flags)
		},
	}

	cmdutil.AddMappingFlag(cmd, &flags.Mapping)
	cmd.Flags().StringVarP(&flags.RuleSet, "rule-set", "r", "", "rule set to validate identifiers with (default from config)")
	cmd.Flags().StringVar(&flags.Out, "out", "", "path of the reconciled workbook")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 1, "rows decided in parallel")
	cmd.Flags().BoolVar(&flags.NoAudit, "no-audit", false, "do not record the run in the audit history")

	return cmd
}

// Execute reconciles path and prints the run summary.
func Execute(ctx context.Context, cmd *cobra.Command, app application.Application, path string, flags *Flags) error {
	r, err := app.Rules(flags.RuleSet)
	if err != nil {
		return err
	}

	out, err := OutputPath(path, flags.Out, app.OutputDir())
	if err != nil {
		return err
	}

	in, err := cmdutil.OpenInput(ctx, app, path, flags.Mapping)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	ctx = logging.WithMapping(ctx, in.Mapping.Name)
	logger := logging.FromContext(ctx)

	roster, err := in.Workbook.ReadRoster(in.Mapping)
	if err != nil {
		return err
	}
	targets, err := in.Workbook.ReadTargets(in.Mapping)
	if err != nil {
		return err
	}

	res, err := reconcile.Run(ctx, roster, targets,
		reconcile.WithRules(r),
		reconcile.WithWorkers(flags.Workers),
	)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(out), err)
	}
	if err := in.Workbook.WriteReports(in.Mapping, res); err != nil {
		return err
	}
	if err := in.Workbook.SaveAs(out); err != nil {
		return err
	}
	logger.Info().Str("file", out).Msg("Wrote reconciled workbook")

	run := audit.NewRun(res, path, out, in.Mapping.Name)
	if !flags.NoAudit {
		if err := record(ctx, app, run, res); err != nil {
			return err
		}
	}

	format, err := cmdutil.Format(app)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), summary(format, run, res))
}

// OutputPath chooses where the reconciled workbook goes. An explicit path
// wins; otherwise the input's base name gains the reconciled suffix inside
// dir. Writing over the input is refused.
func OutputPath(input, explicit, dir string) (string, error) {
	out := explicit
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		out = filepath.Join(dir, base+constants.DefaultOutputSuffix+".xlsx")
	}

	inAbs, err := filepath.Abs(input)
	if err != nil {
		return "", errors.WrapIO("resolve", input, err)
	}
	outAbs, err := filepath.Abs(out)
	if err != nil {
		return "", errors.WrapIO("resolve", out, err)
	}
	if inAbs == outAbs {
		return "", &errors.ValidationError{Field: "out", Value: out, Message: "must differ from the input workbook"}
	}
	return out, nil
}

func record(ctx context.Context, app application.Application, run audit.Run, res *reconcile.Result) error {
	store, err := app.Audit(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	if err := store.RecordRun(ctx, run, res.Log); err != nil {
		return errors.WrapResource("record", "run", run.ID, err)
	}
	logging.FromContext(ctx).Debug().Str("run_id", run.ID).Msg("Recorded run")
	return nil
}

// summary is what the command prints: the stored run for structured formats,
// a short report otherwise.
func summary(format output.Format, run audit.Run, res *reconcile.Result) any {
	if format.IsStructured() {
		return run
	}
	return output.Report{
		Title: res.String(),
		Lines: []string{
			fmt.Sprintf("Run %s", run.ID),
			fmt.Sprintf("Output %s", run.OutputFile),
			fmt.Sprintf("%d roster records, %d flagged as duplicates", res.Metadata.RosterSize, len(res.Duplicates)),
		},
		Sections: []output.Section{
			{Title: "Summary", Data: output.SummaryData(res.Summary)},
		},
	}
}
