package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/internal/workbook"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
)

func newApp(t *testing.T) (*application.Mock, *mapping.FileStore) {
	t.Helper()
	store := mapping.NewFileStore(filepath.Join(t.TempDir(), "mappings.yaml"))
	return &application.Mock{
		MappingsFunc:     func() (mapping.Store, error) { return store, nil },
		OutputFormatFunc: func() string { return "json" },
	}, store
}

func execute(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var saveArgs = []string{
	"save", "branch",
	"--roster-sheet", "CSCS",
	"--ledger-sheet", "LEDGER",
	"--ledger-name", "HOLDER",
	"--ledger-context", "ACCOUNT",
	"--identifier-out", "MEMBERCODE",
	"--status-out", "MATCH_STATUS",
}

func TestMappingLifecycle(t *testing.T) {
	app, store := newApp(t)
	ctx := context.Background()

	_, err := execute(t, app, saveArgs...)
	require.NoError(t, err)

	saved, err := store.Get(ctx, "branch")
	require.NoError(t, err)
	assert.Equal(t, "CSCS", saved.SourceSheet)
	assert.Equal(t, "HOLDER", saved.TargetName)
	assert.Equal(t, constants.DefaultSourceNameColumn, saved.WithDefaults().SourceName)

	_, err = execute(t, app, saveArgs...)
	assert.True(t, errors.IsAlreadyExists(err), "save without --force keeps the existing mapping")

	_, err = execute(t, app, append(saveArgs, "--force", "--status-out", "RESULT")...)
	require.NoError(t, err)
	saved, err = store.Get(ctx, "branch")
	require.NoError(t, err)
	assert.Equal(t, "RESULT", saved.StatusOut)

	out, err := execute(t, app, "list")
	require.NoError(t, err)
	var listed []mapping.Mapping
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "branch", listed[0].Name)

	out, err = execute(t, app, "show", "branch")
	require.NoError(t, err)
	assert.Contains(t, out, `"status_out": "RESULT"`)

	_, err = execute(t, app, "delete", "branch")
	require.NoError(t, err)
	_, err = execute(t, app, "show", "branch")
	assert.True(t, errors.IsNotFound(err))
	_, err = execute(t, app, "delete", "branch")
	assert.True(t, errors.IsNotFound(err))
}

func TestMappingSaveFromFile(t *testing.T) {
	app, store := newApp(t)
	path := filepath.Join(t.TempDir(), "branch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: ignored
description: monthly branch ledger
source_sheet: CSCS
target_sheet: LEDGER
target_name: HOLDER
target_context: ACCOUNT
identifier_out: MEMBERCODE
status_out: MATCH_STATUS
`), constants.FilePermissions))

	_, err := execute(t, app, "save", "branch", "--file", path, "--ledger-context", "CHN")
	require.NoError(t, err)

	saved, err := store.Get(context.Background(), "branch")
	require.NoError(t, err)
	assert.Equal(t, "branch", saved.Name, "argument names the mapping")
	assert.Equal(t, "monthly branch ledger", saved.Description)
	assert.Equal(t, "CHN", saved.TargetContext, "flag overrides file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("source_sheet: CSCS\nsheet_typo: x\n"), constants.FilePermissions))
	_, err = execute(t, app, "save", "other", "--file", bad)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestMappingSaveValidation(t *testing.T) {
	app, _ := newApp(t)

	_, err := execute(t, app, "save", "partial", "--roster-sheet", "CSCS")
	var mappingErr *errors.MappingError
	assert.ErrorAs(t, err, &mappingErr)

	_, err = execute(t, app, "save", "same", "--roster-sheet", "S", "--ledger-sheet", "S",
		"--ledger-name", "N", "--ledger-context", "C", "--identifier-out", "I", "--status-out", "O")
	assert.ErrorAs(t, err, &mappingErr)
}

func TestMappingSaveCheck(t *testing.T) {
	app, store := newApp(t)

	w := workbook.New()
	require.NoError(t, w.WriteTable("CSCS", []string{"NAME", "CHN", "MEMBERCODE"}, nil))
	require.NoError(t, w.WriteTable("LEDGER", []string{"HOLDER"}, nil))
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	_, err := execute(t, app, append(saveArgs, "--check", path)...)
	var mappingErr *errors.MappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, "ACCOUNT", mappingErr.Column)

	_, err = store.Get(context.Background(), "branch")
	assert.True(t, errors.IsNotFound(err), "failed check saves nothing")
}

func TestMappingImport(t *testing.T) {
	app, store := newApp(t)
	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "branch": {
    "cscs_sheet": "CSCS", "ixtrac_sheet": "IXTRAC", "cscs_name": "NAME",
    "name": "Client Name", "chn": "CHN",
    "membercode_out": "MEMBERCODE", "status_out": "STATUS"
  }
}`), constants.FilePermissions))

	out, err := execute(t, app, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "branch"`)

	saved, err := store.Get(context.Background(), "branch")
	require.NoError(t, err)
	assert.Equal(t, "IXTRAC", saved.TargetSheet)
	assert.Equal(t, "Client Name", saved.TargetName)

	_, err = execute(t, app, "import", path)
	assert.True(t, errors.IsAlreadyExists(err))
	_, err = execute(t, app, "import", path, "--force")
	assert.NoError(t, err)
}
