// Package workbook reads roster and ledger rows from an xlsx file and writes
// decisions and report sheets back. Row numbers are sheet row numbers: the
// header is row 1 and data starts at row 2.
package workbook

import (
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/records"
)

// Workbook is an open spreadsheet file. It is not safe for concurrent use.
type Workbook struct {
	file *excelize.File
	path string
}

// Open reads the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// New returns an empty in-memory workbook.
func New() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// Path returns the file the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether the workbook has a sheet named name.
func (w *Workbook) HasSheet(name string) bool {
	return slices.Contains(w.Sheets(), name)
}

// Rows returns the stored cell values of sheet, header row included.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if !w.HasSheet(sheet) {
		return nil, &errors.NotFoundError{Resource: "sheet", ID: sheet}
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.WrapResource("read", "sheet", sheet, err)
	}
	return rows, nil
}

// Headers returns the header row of sheet.
func (w *Workbook) Headers(sheet string) ([]string, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0], nil
}

// ReadRoster loads the source roster named by m. Rows whose mapped cells are
// all blank are skipped.
func (w *Workbook) ReadRoster(m *mapping.Mapping) ([]records.SourceRecord, error) {
	rows, cols, err := w.resolve(m, m.SourceSheet)
	if err != nil {
		return nil, err
	}

	out := make([]records.SourceRecord, 0, len(rows))
	for i, row := range rows[1:] {
		rec := records.SourceRecord{
			Row:        i + 2,
			RawName:    cell(row, cols.Name),
			ContextKey: strings.TrimSpace(cell(row, cols.Context)),
			Identifier: cell(row, cols.Identifier),
		}
		if strings.TrimSpace(rec.RawName) == "" && rec.ContextKey == "" && strings.TrimSpace(rec.Identifier) == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadTargets loads every ledger row named by m, blank rows included, so
// each row receives a decision.
func (w *Workbook) ReadTargets(m *mapping.Mapping) ([]records.TargetRow, error) {
	rows, cols, err := w.resolve(m, m.TargetSheet)
	if err != nil {
		return nil, err
	}

	out := make([]records.TargetRow, 0, len(rows))
	for i, row := range rows[1:] {
		out = append(out, records.TargetRow{
			Row:        i + 2,
			RawName:    cell(row, cols.Name),
			ContextKey: strings.TrimSpace(cell(row, cols.Context)),
		})
	}
	return out, nil
}

func (w *Workbook) resolve(m *mapping.Mapping, sheet string) ([][]string, mapping.Columns, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, mapping.Columns{}, err
	}
	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
	}
	cols, err := m.Resolve(sheet, headers)
	if err != nil {
		return nil, mapping.Columns{}, err
	}
	return rows, cols, nil
}

// cell returns the value at col, or "" for short rows and unmapped columns.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// SetCell writes value at a one-based column and row.
func (w *Workbook) SetCell(sheet string, col, row int, value any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.WrapValidation("cell", err)
	}
	if err := w.file.SetCellValue(sheet, name, value); err != nil {
		return errors.WrapResource("write", "cell", sheet+"!"+name, err)
	}
	return nil
}

// WriteTable replaces sheet with a header row followed by rows.
func (w *Workbook) WriteTable(sheet string, headers []string, rows [][]string) error {
	if w.HasSheet(sheet) {
		if err := w.file.DeleteSheet(sheet); err != nil {
			return errors.WrapResource("delete", "sheet", sheet, err)
		}
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return errors.WrapResource("create", "sheet", sheet, err)
	}

	if err := w.setRow(sheet, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) setRow(sheet string, row int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.WrapValidation("row", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := w.file.SetSheetRow(sheet, start, &cells); err != nil {
		return errors.WrapResource("write", "row", sheet+"!"+start, err)
	}
	return nil
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return errors.WrapIO("save", path, err)
	}
	w.path = path
	return nil
}

// Close releases the workbook's temporary files.
func (w *Workbook) Close() error {
	return w.file.Close()
}
