package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/pkg/errors"
)

func testMapping() *Mapping {
	return &Mapping{
		Name:          "monthly",
		SourceSheet:   "CSCS",
		TargetSheet:   "LEDGER",
		TargetName:    "HOLDER NAME",
		TargetContext: "ACCOUNT",
		IdentifierOut: "MEMBERCODE",
		StatusOut:     "MATCH_STATUS",
	}
}

func TestWithDefaults(t *testing.T) {
	m := testMapping().WithDefaults()
	assert.Equal(t, "NAME", m.SourceName)
	assert.Equal(t, "CHN", m.SourceContext)
	assert.Equal(t, "MEMBERCODE", m.SourceIdentifier)

	custom := Mapping{Name: " x ", SourceName: "FULL NAME"}.WithDefaults()
	assert.Equal(t, "x", custom.Name)
	assert.Equal(t, "FULL NAME", custom.SourceName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mapping)
		wantErr string
	}{
		{name: "valid", mutate: func(*Mapping) {}},
		{name: "blank name", mutate: func(m *Mapping) { m.Name = " " }, wantErr: "name"},
		{name: "missing target sheet", mutate: func(m *Mapping) { m.TargetSheet = "" }, wantErr: "target_sheet cannot be empty"},
		{name: "missing status column", mutate: func(m *Mapping) { m.StatusOut = "" }, wantErr: "status_out cannot be empty"},
		{name: "same sheet", mutate: func(m *Mapping) { m.TargetSheet = "CSCS" }, wantErr: "source and target sheet"},
		{name: "duplicate ledger column", mutate: func(m *Mapping) { m.StatusOut = "ACCOUNT" }, wantErr: `ledger column "ACCOUNT"`},
		{name: "duplicate roster column", mutate: func(m *Mapping) { m.SourceContext = "NAME" }, wantErr: `roster column "NAME"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMapping()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCheckHeaders(t *testing.T) {
	m := testMapping()

	assert.NoError(t, m.CheckHeaders("CSCS", []string{"NAME", " CHN ", "MEMBERCODE"}))
	assert.NoError(t, m.CheckHeaders("LEDGER", []string{"HOLDER NAME", "ACCOUNT"}), "output columns are optional")

	err := m.CheckHeaders("CSCS", []string{"NAME"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "CHN"`)
	assert.Contains(t, err.Error(), `missing column "MEMBERCODE"`)

	var me *errors.MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "CSCS", me.Sheet)
	assert.True(t, errors.IsConfigError(err))

	assert.Error(t, m.CheckHeaders("OTHER", nil))
}

func TestResolve(t *testing.T) {
	m := testMapping()

	cols, err := m.Resolve("LEDGER", []string{"ID", "ACCOUNT", "HOLDER NAME", "MATCH_STATUS"})
	require.NoError(t, err)
	assert.Equal(t, Columns{Name: 2, Context: 1, Identifier: -1, Status: 3}, cols)
	assert.Equal(t, 4, cols.Width())

	cols, err = m.Resolve("CSCS", []string{"MEMBERCODE", "NAME", "CHN"})
	require.NoError(t, err)
	assert.Equal(t, Columns{Name: 1, Context: 2, Identifier: 0, Status: -1}, cols)

	_, err = m.Resolve("LEDGER", []string{"ACCOUNT"})
	assert.Error(t, err)
}

func TestImportLegacy(t *testing.T) {
	data := []byte(`{
  "monthly": {
    "cscs_sheet": "CSCS",
    "ixtrac_sheet": "IX TRAC",
    "name": "NAME",
    "chn": "CHN",
    "membercode_out": "MEMBERCODE",
    "status_out": "MATCH_STATUS"
  },
  "annual": {
    "cscs_sheet": "ROSTER",
    "ixtrac_sheet": "LEDGER",
    "cscs_name": "FULL NAME",
    "name": "HOLDER",
    "chn": "CHN",
    "membercode_out": "CODE",
    "status_out": "STATUS"
  }
}`)

	got, err := ImportLegacy(data, "mappings.json")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "annual", got[0].Name)
	assert.Equal(t, "FULL NAME", got[0].SourceName)
	assert.Equal(t, "monthly", got[1].Name)
	assert.Equal(t, "IX TRAC", got[1].TargetSheet)
	assert.Equal(t, "MATCH_STATUS", got[1].StatusOut)

	_, err = ImportLegacy([]byte(`{"bad": {"cscs_sheet": "A", "ixtrac_sheet": "A"}}`), "x.json")
	assert.Error(t, err)
}
