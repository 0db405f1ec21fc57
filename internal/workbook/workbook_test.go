package workbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/reconcile"
)

func testMapping() *mapping.Mapping {
	return &mapping.Mapping{
		Name:          "test",
		SourceSheet:   "CSCS",
		TargetSheet:   "LEDGER",
		TargetName:    "HOLDER",
		TargetContext: "ACCOUNT",
		IdentifierOut: "MEMBERCODE",
		StatusOut:     "MATCH_STATUS",
	}
}

// fixture writes a roster and ledger and returns the saved path.
func fixture(t *testing.T) string {
	t.Helper()
	w := New()
	defer func() { _ = w.Close() }()

	require.NoError(t, w.WriteTable("CSCS", []string{"NAME", "CHN", "MEMBERCODE"}, [][]string{
		{"JOHN SMITH", "C1", "AB1"},
		{"MARY LEE", "C1", "ML1"},
		{"MARY LEE", "C1", "ML2"},
		{"", "", ""},
		{"ADA LOVELACE", " C2 ", "TOOLONG"},
	}))
	require.NoError(t, w.WriteTable("LEDGER", []string{"ID", "HOLDER", "ACCOUNT"}, [][]string{
		{"1", "John Smith", "C1"},
		{"2", "Mary Lee", "C1"},
		{"3", "Ada Lovelace", "C2"},
		{"4", "John Smith Okon", "C1"},
	}))

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, w.SaveAs(path))
	return path
}

func TestReadRosterAndTargets(t *testing.T) {
	w, err := Open(fixture(t))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Contains(t, w.Sheets(), "CSCS")
	assert.Contains(t, w.Sheets(), "LEDGER")

	headers, err := w.Headers("LEDGER")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "HOLDER", "ACCOUNT"}, headers)

	roster, err := w.ReadRoster(testMapping())
	require.NoError(t, err)
	require.Len(t, roster, 4, "blank roster row skipped")
	assert.Equal(t, 2, roster[0].Row)
	assert.Equal(t, "JOHN SMITH", roster[0].RawName)
	assert.Equal(t, "AB1", roster[0].Identifier)
	assert.Equal(t, 6, roster[3].Row)
	assert.Equal(t, "C2", roster[3].ContextKey, "context trimmed")

	targets, err := w.ReadTargets(testMapping())
	require.NoError(t, err)
	require.Len(t, targets, 4)
	assert.Equal(t, 2, targets[0].Row)
	assert.Equal(t, "John Smith", targets[0].RawName)
	assert.Equal(t, "C1", targets[0].ContextKey)
	assert.Equal(t, 5, targets[3].Row)
}

func TestReadMissingSheetAndColumns(t *testing.T) {
	w, err := Open(fixture(t))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	m := testMapping()
	m.TargetSheet = "NOPE"
	_, err = w.ReadTargets(m)
	assert.True(t, errors.IsNotFound(err))

	m = testMapping()
	m.TargetContext = "CHN"
	_, err = w.ReadTargets(m)
	var me *errors.MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "CHN", me.Column)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestWriteReports(t *testing.T) {
	w, err := Open(fixture(t))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	m := testMapping()
	roster, err := w.ReadRoster(m)
	require.NoError(t, err)
	targets, err := w.ReadTargets(m)
	require.NoError(t, err)

	res, err := reconcile.Run(context.Background(), roster, targets)
	require.NoError(t, err)
	require.NoError(t, w.WriteReports(m, res))

	out := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, w.SaveAs(out))

	saved, err := Open(out)
	require.NoError(t, err)
	defer func() { _ = saved.Close() }()

	ledger, err := saved.Rows("LEDGER")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "HOLDER", "ACCOUNT", "MEMBERCODE", "MATCH_STATUS"}, ledger[0])
	assert.Equal(t, []string{"1", "John Smith", "C1", "AB1", "CONFIRMED_EXACT"}, ledger[1])
	assert.Equal(t, "AMBIGUOUS", ledger[2][4])
	assert.Equal(t, "REJECTED_TOO_LONG", ledger[3][4])
	assert.Equal(t, []string{"4", "John Smith Okon", "C1", "AB1", "CONFIRMED_FALLBACK"}, ledger[4])

	reviewRows, err := saved.Rows(constants.SheetReview)
	require.NoError(t, err)
	require.Len(t, reviewRows, 5)
	assert.Equal(t, ledger[0], reviewRows[0])
	assert.Equal(t, "2", reviewRows[1][0], "ambiguous first")
	assert.Equal(t, "3", reviewRows[2][0])

	summary, err := saved.Rows(constants.SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"STATUS", "COUNT"}, summary[0])
	assert.Equal(t, []string{"TOTAL_ROWS", "4"}, summary[len(summary)-1])

	log, err := saved.Rows(constants.SheetDecisions)
	require.NoError(t, err)
	assert.Len(t, log, 5)
	assert.Equal(t, "INTERNAL_STATUS", log[0][4])
	assert.Equal(t, "NOT_FOUND", log[3][4])
	assert.Equal(t, "REJECTED_TOO_LONG", log[3][5])

	dups, err := saved.Rows(constants.SheetDuplicates)
	require.NoError(t, err)
	require.Len(t, dups, 3)
	assert.Equal(t, "3", dups[1][0])
	assert.Equal(t, "4", dups[2][0])
}

func TestWriteDecisionsUsesExistingColumns(t *testing.T) {
	w := New()
	defer func() { _ = w.Close() }()
	require.NoError(t, w.WriteTable("LEDGER", []string{"MATCH_STATUS", "HOLDER", "ACCOUNT", "MEMBERCODE"}, [][]string{
		{"old", "John Smith", "C1", "old"},
	}))
	require.NoError(t, w.WriteTable("CSCS", []string{"NAME", "CHN", "MEMBERCODE"}, nil))

	m := testMapping()
	targets, err := w.ReadTargets(m)
	require.NoError(t, err)
	res, err := reconcile.Run(context.Background(), nil, targets)
	require.NoError(t, err)
	require.NoError(t, w.WriteDecisions(m, res.Log))

	rows, err := w.Rows("LEDGER")
	require.NoError(t, err)
	require.Len(t, rows[0], 4)
	assert.Equal(t, "NOT_FOUND", rows[1][0])
	assert.Equal(t, "", cell(rows[1], 3), "identifier cleared for unconfirmed rows")
}

func TestWriteTableReplacesSheet(t *testing.T) {
	w := New()
	defer func() { _ = w.Close() }()

	require.NoError(t, w.WriteTable("R", []string{"A"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, w.WriteTable("R", []string{"B"}, [][]string{{"3"}}))

	rows, err := w.Rows("R")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B"}, {"3"}}, rows)
}
