// Package cmdutil provides shared flags and helpers for membermatch commands.
package cmdutil

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/cmd/output"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/internal/workbook"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/logging"
)

// AddMappingFlag adds the required --mapping flag to cmd.
func AddMappingFlag(cmd *cobra.Command, name *string) {
	cmd.Flags().StringVarP(name, "mapping", "m", "", "name of the saved column mapping to apply")
	_ = cmd.MarkFlagRequired("mapping")
}

// Input is a workbook paired with the mapping that describes its sheets.
type Input struct {
	Workbook *workbook.Workbook
	Mapping  *mapping.Mapping
}

// Close releases the workbook.
func (in *Input) Close() error {
	return in.Workbook.Close()
}

// OpenInput loads the named mapping and opens path, checking that both mapped
// sheets exist and carry every required column before any row is read.
func OpenInput(ctx context.Context, app application.Application, path, mappingName string) (*Input, error) {
	store, err := app.Mappings()
	if err != nil {
		return nil, err
	}
	m, err := store.Get(ctx, mappingName)
	if err != nil {
		return nil, err
	}

	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}

	if err := Check(wb, m); err != nil {
		_ = wb.Close()
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("file", path).
		Str("mapping", m.Name).
		Strs("sheets", wb.Sheets()).
		Msg("Opened workbook")

	return &Input{Workbook: wb, Mapping: m}, nil
}

// Check reports every mapped sheet or column the workbook lacks.
func Check(wb *workbook.Workbook, m *mapping.Mapping) error {
	var errs []error
	for _, sheet := range []string{m.SourceSheet, m.TargetSheet} {
		headers, err := wb.Headers(sheet)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.CheckHeaders(sheet, headers); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Audit returns the run history store. Commands that only read history
// cannot work without one.
func Audit(ctx context.Context, app application.Application) (*audit.Store, error) {
	store, err := app.Audit(ctx)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.NewConfigError("audit", "no audit database configured", nil)
	}
	return store, nil
}

// Format resolves the output format chosen by flags and config, falling back
// to table on a terminal and JSON otherwise.
func Format(app application.Application) (output.Format, error) {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return "", err
	}
	return output.DetectFormat(string(format)), nil
}

// Print renders data to w in the configured format.
func Print(w io.Writer, app application.Application, data any) error {
	format, err := Format(app)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(w, data)
}
