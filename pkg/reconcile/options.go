package reconcile

import (
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/rules"
)

type options struct {
	rules      *rules.Rules
	workers    int
	duplicates bool
}

func defaultOptions() *options {
	return &options{
		rules:      rules.MustDefault(),
		workers:    1,
		duplicates: true,
	}
}

// Option configures a run.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithRules sets the compiled rule set. The built-in default is used otherwise.
func WithRules(r *rules.Rules) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{
				Field:   "rules",
				Message: "cannot be nil",
			}
		}
		o.rules = r
		return nil
	}
}

// WithWorkers sets how many rows are decided in parallel. One decides rows
// sequentially.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: "must be at least 1",
			}
		}
		o.workers = n
		return nil
	}
}

// WithDuplicates toggles duplicate detection over the roster.
func WithDuplicates(enabled bool) Option {
	return func(o *options) error {
		o.duplicates = enabled
		return nil
	}
}
