package workbook

import (
	"strconv"

	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/names"
	"github.com/agentstation/membermatch/pkg/reconcile"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/review"
)

// WriteDecisions writes each entry's identifier and display label into the
// ledger's output columns. Output columns missing from the header row are
// appended after the last header.
func (w *Workbook) WriteDecisions(m *mapping.Mapping, entries []review.Entry) error {
	sheet := m.TargetSheet
	headers, err := w.Headers(sheet)
	if err != nil {
		return err
	}
	cols, err := m.Resolve(sheet, headers)
	if err != nil {
		return err
	}

	next := len(headers)
	if cols.Identifier < 0 {
		cols.Identifier = next
		next++
		if err := w.SetCell(sheet, cols.Identifier+1, 1, m.IdentifierOut); err != nil {
			return err
		}
	}
	if cols.Status < 0 {
		cols.Status = next
		if err := w.SetCell(sheet, cols.Status+1, 1, m.StatusOut); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if e.Row < 2 {
			return &errors.ValidationError{Field: "row", Value: e.Row, Message: "decisions start at sheet row 2"}
		}
		if err := w.SetCell(sheet, cols.Identifier+1, e.Row, e.Identifier); err != nil {
			return err
		}
		if err := w.SetCell(sheet, cols.Status+1, e.Row, e.Label); err != nil {
			return err
		}
	}
	return nil
}

// WriteReview copies the ledger sheet into sheet with its data rows in the
// order of entries.
func (w *Workbook) WriteReview(m *mapping.Mapping, sheet string, entries []review.Entry) error {
	rows, err := w.Rows(m.TargetSheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return w.WriteTable(sheet, nil, nil)
	}

	ordered := make([][]string, 0, len(entries))
	for _, e := range entries {
		i := e.Row - 1
		if i < 1 || i >= len(rows) {
			ordered = append(ordered, nil)
			continue
		}
		ordered = append(ordered, rows[i])
	}
	return w.WriteTable(sheet, rows[0], ordered)
}

// DuplicateHeaders are the column headers of the duplicates sheet.
func DuplicateHeaders() []string {
	return []string{"ROW", "NAME", "CONTEXT", "IDENTIFIER", "NORMALIZED_NAME"}
}

// DuplicateRows renders flagged roster records for the duplicates sheet.
func DuplicateRows(dups []records.SourceRecord) [][]string {
	rows := make([][]string, 0, len(dups))
	for _, d := range dups {
		rows = append(rows, []string{strconv.Itoa(d.Row), d.RawName, d.ContextKey, d.Identifier, names.Normalize(d.RawName)})
	}
	return rows
}

// WriteReports writes the enriched ledger columns and the four report sheets
// for a finished run.
func (w *Workbook) WriteReports(m *mapping.Mapping, res *reconcile.Result) error {
	if err := w.WriteDecisions(m, res.Log); err != nil {
		return err
	}
	if err := w.WriteReview(m, constants.SheetReview, res.Review); err != nil {
		return err
	}
	if err := w.WriteTable(constants.SheetSummary, review.SummaryHeaders(), res.Summary.Table()); err != nil {
		return err
	}

	log := make([][]string, 0, len(res.Log))
	for _, e := range res.Log {
		log = append(log, e.Values())
	}
	if err := w.WriteTable(constants.SheetDecisions, review.LogHeaders(), log); err != nil {
		return err
	}
	return w.WriteTable(constants.SheetDuplicates, DuplicateHeaders(), DuplicateRows(res.Duplicates))
}
