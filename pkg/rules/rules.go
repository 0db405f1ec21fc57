// Package rules holds the reconciliation configuration: the maximum
// identifier length, the disqualifying prefixes, the review priority table and
// the status labels. Named rule sets are loaded from YAML and compiled into an
// immutable Rules value that is threaded into every engine component.
package rules

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/agentstation/membermatch/internal/matcher"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/identifier"
	"github.com/agentstation/membermatch/pkg/status"
)

// Spec is the on-disk form of one rule set.
type Spec struct {
	// MaxIdentifierLength is the longest valid membercode. Zero means the default.
	MaxIdentifierLength int `yaml:"max_identifier_length,omitempty" json:"max_identifier_length,omitempty"`
	// InvalidPrefixes disqualify any membercode that starts with them.
	InvalidPrefixes []string `yaml:"invalid_prefixes,omitempty" json:"invalid_prefixes,omitempty"`
	// PrefixMode is prefix (default), glob or regex. Regex patterns are
	// anchored at the start of the membercode; glob patterns match all of it,
	// so "9*" disqualifies codes starting with 9.
	PrefixMode string `yaml:"prefix_mode,omitempty" json:"prefix_mode,omitempty"`
	// CaseInsensitivePrefixes folds case before comparing prefixes.
	CaseInsensitivePrefixes bool `yaml:"case_insensitive_prefixes,omitempty" json:"case_insensitive_prefixes,omitempty"`
	// StatusPriority overrides review ranks per status kind.
	StatusPriority map[string]int `yaml:"status_priority,omitempty" json:"status_priority,omitempty"`
	// Labels overrides the text written to the status column per kind.
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Default returns the built-in rule set.
func Default() Spec {
	return Spec{MaxIdentifierLength: constants.DefaultMaxIdentifierLength}
}

// Rules is a compiled, validated rule set. It is immutable: accessors return copies.
type Rules struct {
	name       string
	maxLength  int
	prefixes   []string
	prefixMode matcher.PatternType
	priority   status.Priority
	labels     status.Labels
	validator  *identifier.Validator
}

// Compile validates spec and builds the engine collaborators it configures.
func (s Spec) Compile(name string) (*Rules, error) {
	component := "rules"
	if name != "" {
		component = fmt.Sprintf("rule set %q", name)
	}

	maxLength := s.MaxIdentifierLength
	if maxLength == 0 {
		maxLength = constants.DefaultMaxIdentifierLength
	}
	if maxLength < 0 {
		return nil, errors.NewConfigError(component, "max_identifier_length must be positive", nil)
	}

	mode, err := matcher.ParseType(s.PrefixMode)
	if err != nil {
		return nil, errors.NewConfigError(component, "prefix_mode", err)
	}

	prefixes := make([]string, 0, len(s.InvalidPrefixes))
	for i, p := range s.InvalidPrefixes {
		if strings.TrimSpace(p) == "" {
			return nil, errors.NewConfigError(component, fmt.Sprintf("invalid_prefixes[%d] is blank", i), nil)
		}
		prefixes = append(prefixes, p)
	}
	set, err := matcher.NewSet(mode, prefixes, &matcher.Options{
		CaseInsensitive: s.CaseInsensitivePrefixes,
		Anchored:        true,
	})
	if err != nil {
		return nil, errors.NewConfigError(component, "invalid_prefixes", err)
	}

	priority := status.DefaultPriority()
	for key, rank := range s.StatusPriority {
		kind, err := status.Parse(key)
		if err != nil {
			return nil, errors.NewConfigError(component, "status_priority", err)
		}
		priority[kind] = rank
	}
	if missing := priority.Missing(); len(missing) > 0 {
		return nil, errors.NewConfigError(component, fmt.Sprintf("status_priority missing %v", missing), nil)
	}

	labels := status.DefaultLabels()
	for key, label := range s.Labels {
		kind, err := status.Parse(key)
		if err != nil {
			return nil, errors.NewConfigError(component, "labels", err)
		}
		if strings.TrimSpace(label) == "" {
			return nil, errors.NewConfigError(component, fmt.Sprintf("label for %s is blank", kind), nil)
		}
		labels[kind] = label
	}
	if err := uniqueLabels(labels); err != nil {
		return nil, errors.NewConfigError(component, "labels", err)
	}

	return &Rules{
		name:       name,
		maxLength:  maxLength,
		prefixes:   prefixes,
		prefixMode: mode,
		priority:   priority,
		labels:     labels,
		validator:  identifier.New(maxLength, set),
	}, nil
}

// Labels must stay distinguishable or the summary would merge statuses.
func uniqueLabels(labels status.Labels) error {
	seen := make(map[string]status.Kind, len(labels))
	kinds := make([]string, 0, len(labels))
	for k := range labels {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		label := labels[status.Kind(k)]
		if other, ok := seen[label]; ok {
			return fmt.Errorf("%s and %s share label %q", other, k, label)
		}
		seen[label] = status.Kind(k)
	}
	return nil
}

// MustDefault compiles the built-in rule set. It panics only if the built-in is broken.
func MustDefault() *Rules {
	r, err := Default().Compile(constants.DefaultRuleSet)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the rule set name.
func (r *Rules) Name() string { return r.name }

// MaxIdentifierLength returns the longest valid identifier.
func (r *Rules) MaxIdentifierLength() int { return r.maxLength }

// InvalidPrefixes returns a copy of the disqualifying patterns.
func (r *Rules) InvalidPrefixes() []string { return slices.Clone(r.prefixes) }

// PrefixMode returns how invalid prefixes are interpreted.
func (r *Rules) PrefixMode() matcher.PatternType { return r.prefixMode }

// Priority returns a copy of the review rank table.
func (r *Rules) Priority() status.Priority { return r.priority.Clone() }

// Labels returns a copy of the status labels.
func (r *Rules) Labels() status.Labels { return r.labels.Clone() }

// Validator returns the identifier validator configured by these rules.
func (r *Rules) Validator() *identifier.Validator { return r.validator }

// Classifier returns the status classifier configured by these rules.
func (r *Rules) Classifier() status.Classifier { return status.NewClassifier(r.labels) }
