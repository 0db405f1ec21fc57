package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/pkg/rules"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
//	mock := &application.Mock{
//	    MappingsFunc: func() (mapping.Store, error) {
//	        return mapping.NewFileStore(filepath.Join(t.TempDir(), "mappings.yaml")), nil
//	    },
//	}
//	cmd := list.NewCommand(mock)
type Mock struct {
	MappingsFunc     func() (mapping.Store, error)
	RuleSetsFunc     func() (rules.Set, error)
	RulesFunc        func(name string) (*rules.Rules, error)
	AuditFunc        func(ctx context.Context) (*audit.Store, error)
	WorkersFunc      func() int
	OutputDirFunc    func() string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

// Mappings returns a store using the mock function or nil.
func (m *Mock) Mappings() (mapping.Store, error) {
	if m.MappingsFunc != nil {
		return m.MappingsFunc()
	}
	return nil, nil
}

// RuleSets returns rule sets using the mock function or the built-in set.
func (m *Mock) RuleSets() (rules.Set, error) {
	if m.RuleSetsFunc != nil {
		return m.RuleSetsFunc()
	}
	return rules.Builtin(), nil
}

// Rules returns compiled rules using the mock function or the default rules.
func (m *Mock) Rules(name string) (*rules.Rules, error) {
	if m.RulesFunc != nil {
		return m.RulesFunc(name)
	}
	sets, err := m.RuleSets()
	if err != nil {
		return nil, err
	}
	return sets.Compile(name)
}

// Audit returns a store using the mock function or nil.
func (m *Mock) Audit(ctx context.Context) (*audit.Store, error) {
	if m.AuditFunc != nil {
		return m.AuditFunc(ctx)
	}
	return nil, nil
}

// Workers returns the worker count using the mock function or 1.
func (m *Mock) Workers() int {
	if m.WorkersFunc != nil {
		return m.WorkersFunc()
	}
	return 1
}

// OutputDir returns the output directory using the mock function or ".".
func (m *Mock) OutputDir() string {
	if m.OutputDirFunc != nil {
		return m.OutputDirFunc()
	}
	return "."
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
