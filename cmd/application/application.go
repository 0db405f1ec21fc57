// Package application provides the application interface for membermatch commands.
//
// Commands accept this interface rather than the concrete App type so they can
// be exercised with a Mock in tests.
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            store, err := app.Mappings()
//	            if err != nil {
//	                return err
//	            }
//	            m, err := store.Get(cmd.Context(), name)
//	            // ...
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/rules"
)

// Application provides the dependencies that commands need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Mappings returns the column mapping template store.
	Mappings() (mapping.Store, error)

	// RuleSets returns the built-in rule sets merged with the configured rules file.
	RuleSets() (rules.Set, error)

	// Rules compiles the named rule set. An empty name selects the configured default.
	Rules(name string) (*rules.Rules, error)

	// Audit opens the run history store, lazily and once per process.
	Audit(ctx context.Context) (*audit.Store, error)

	// Workers returns the configured decide-phase parallelism.
	Workers() int

	// OutputDir returns the directory reconciled workbooks are written to.
	OutputDir() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, markdown).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
