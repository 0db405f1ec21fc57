package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
)

// isolate points HOME at an empty dir so a developer's config is not read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "MEMBERMATCH_CONFIG", "MEMBERMATCH_WORKERS", "MEMBERMATCH_RULE_SET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "membermatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePermissions))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	home := isolate(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultRuleSet, config.RuleSet)
	assert.Equal(t, 1, config.Workers)
	assert.Equal(t, constants.DefaultOutputDir, config.OutputDir)
	assert.Equal(t, filepath.Join(home, ".membermatch", constants.DefaultMappingsFile), config.MappingsFile)
	assert.Equal(t, filepath.Join(home, ".membermatch", constants.DefaultAuditDB), config.AuditDB)
	assert.Empty(t, config.RulesFile)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Empty(t, config.ConfigFile)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
rules_file: /etc/membermatch/rules.yaml
rule_set: strict
mappings_file: ~/templates.yaml
audit_db: /var/lib/membermatch/history.db
output_dir: reconciled
workers: 4
format: json
log_level: debug
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "/etc/membermatch/rules.yaml", config.RulesFile)
	assert.Equal(t, "strict", config.RuleSet)
	assert.Equal(t, filepath.Join(home, "templates.yaml"), config.MappingsFile)
	assert.Equal(t, "/var/lib/membermatch/history.db", config.AuditDB)
	assert.Equal(t, "reconciled", config.OutputDir)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "workers: 4\nrule_set: strict\n")
	t.Setenv("MEMBERMATCH_WORKERS", "8")
	t.Setenv("LOG_LEVEL", "warn")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, "strict", config.RuleSet)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	isolate(t)

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.IsConfigError(err), err)
	})

	t.Run("workers below one", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "workers: 0\n"))
		assert.True(t, errors.IsConfigError(err), err)
	})
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format, "empty flag keeps configured format")
	assert.Equal(t, "info", config.LogLevel)

	config.UpdateFromFlags(false, true, false, "json", "trace")
	assert.True(t, config.Quiet)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "trace", config.LogLevel)
}

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{name: "default", want: "info"},
		{name: "verbose", config: Config{Verbose: true}, want: "debug"},
		{name: "quiet", config: Config{Quiet: true}, want: "warn"},
		{name: "quiet beats verbose", config: Config{Verbose: true, Quiet: true}, want: "warn"},
		{name: "explicit level wins", config: Config{Verbose: true, LogLevel: "error"}, want: "error"},
		{name: "invalid level", config: Config{LogLevel: "loud"}, want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, filepath.Join(home, "a", "b"), expandHome("~/a/b"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}
