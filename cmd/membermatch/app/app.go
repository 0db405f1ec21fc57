// Package app provides the application context and dependency management
// for the membermatch CLI. It centralizes configuration, logging and the
// lazily opened stores that commands share.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/membermatch/cmd/application"
	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/rules"
)

// App represents the membermatch application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu       sync.Mutex
	mappings mapping.Store
	ruleSets rules.Set
	audit    *audit.Store
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment and the
// default config file; functional options override it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Workers returns the configured decide-phase parallelism.
func (a *App) Workers() int {
	return a.config.Workers
}

// OutputDir returns the directory reconciled workbooks are written to.
func (a *App) OutputDir() string {
	return a.config.OutputDir
}

// Mappings returns the mapping template store, creating it on first use.
func (a *App) Mappings() (mapping.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mappings == nil {
		a.mappings = mapping.NewFileStore(a.config.MappingsFile)
	}
	return a.mappings, nil
}

// RuleSets returns the built-in rule sets layered with the configured rules file.
func (a *App) RuleSets() (rules.Set, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ruleSets == nil {
		set, err := rules.LoadFile(a.config.RulesFile)
		if err != nil {
			return nil, err
		}
		a.ruleSets = set
	}
	return a.ruleSets, nil
}

// Rules compiles the named rule set, or the configured one when name is empty.
func (a *App) Rules(name string) (*rules.Rules, error) {
	set, err := a.RuleSets()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = a.config.RuleSet
	}
	return set.Compile(name)
}

// Audit opens the run history database on first use.
func (a *App) Audit(ctx context.Context) (*audit.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.audit != nil {
		return a.audit, nil
	}
	if a.config.AuditDB == "" {
		return nil, errors.NewConfigError("config", "audit_db cannot be empty", nil)
	}

	store, err := audit.Open(ctx, a.config.AuditDB)
	if err != nil {
		return nil, errors.WrapResource("open", "audit store", a.config.AuditDB, err)
	}
	a.logger.Debug().Str("path", a.config.AuditDB).Msg("Opened audit store")
	a.audit = store
	return store, nil
}

// Shutdown releases the resources the app opened.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.audit == nil {
		return nil
	}
	err := a.audit.Close()
	a.audit = nil
	if err != nil {
		return errors.WrapResource("close", "audit store", a.config.AuditDB, err)
	}
	return nil
}

// reload re-reads configuration from an explicitly named config file,
// discarding anything derived from the previous configuration.
func (a *App) reload(configFile string) error {
	config, err := LoadConfig(configFile)
	if err != nil {
		return errors.WrapResource("load", "config", configFile, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.config = config
	a.mappings = nil
	a.ruleSets = nil
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithMappingStore sets a custom mapping store (useful for testing).
func WithMappingStore(store mapping.Store) Option {
	return func(a *App) error {
		a.mappings = store
		return nil
	}
}
