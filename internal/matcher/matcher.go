// Package matcher compiles the identifier disqualification patterns used by
// the validator. Patterns are literal prefixes by default; glob and regex
// patterns are available for rosters whose positional codes need more than a
// prefix to describe.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Prefix matches inputs that start with the pattern.
	Prefix PatternType = iota
	// Glob uses shell-style glob patterns (*, ?, []) against the whole input.
	Glob
	// Regex uses regular expressions.
	Regex
)

// Matcher is the interface for a single compiled pattern.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

// matcher is the concrete implementation of the Matcher interface.
type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	compare         string
	caseInsensitive bool
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored makes a regex pattern match only at the start of the input
	Anchored bool
}

// New creates a new Matcher with the specified pattern and type.
func New(patternType PatternType, pattern string, opts *Options) (Matcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	if pattern == "" {
		return nil, fmt.Errorf("empty %s pattern", patternType)
	}

	m := &matcher{
		pattern:         pattern,
		patternType:     patternType,
		caseInsensitive: opts.CaseInsensitive,
	}
	if err := m.compile(opts); err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	return m, nil
}

// compile prepares the pattern for matching.
func (m *matcher) compile(opts *Options) error {
	switch m.patternType {
	case Prefix:
		m.compare = m.fold(m.pattern)
	case Glob:
		m.compare = m.fold(m.pattern)
		if _, err := filepath.Match(m.compare, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
	case Regex:
		pattern := m.pattern
		if opts.Anchored && !strings.HasPrefix(pattern, "^") {
			pattern = "^(?:" + pattern + ")"
		}
		if opts.CaseInsensitive && !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return nil
}

func (m *matcher) fold(s string) string {
	if m.caseInsensitive {
		return strings.ToUpper(s)
	}
	return s
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	switch m.patternType {
	case Prefix:
		return strings.HasPrefix(m.fold(input), m.compare)
	case Glob:
		matched, _ := filepath.Match(m.compare, m.fold(input))
		return matched
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Prefix:
		return "prefix"
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

// ParseType converts a configuration string to a PatternType.
// The empty string selects Prefix.
func ParseType(s string) (PatternType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prefix":
		return Prefix, nil
	case "glob":
		return Glob, nil
	case "regex", "regexp":
		return Regex, nil
	default:
		return 0, fmt.Errorf("unknown pattern type %q", s)
	}
}

// Set is an ordered collection of matchers. It is immutable after construction
// and safe for concurrent use.
type Set struct {
	matchers []Matcher
}

// NewSet compiles every pattern with the same type and options.
func NewSet(patternType PatternType, patterns []string, opts *Options) (*Set, error) {
	s := &Set{matchers: make([]Matcher, 0, len(patterns))}
	for _, pattern := range patterns {
		m, err := New(patternType, pattern, opts)
		if err != nil {
			return nil, err
		}
		s.matchers = append(s.matchers, m)
	}
	return s, nil
}

// Match returns true if any pattern matches.
func (s *Set) Match(input string) bool {
	_, ok := s.First(input)
	return ok
}

// First returns the first pattern, in configuration order, that matches input.
func (s *Set) First(input string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, m := range s.matchers {
		if m.Match(input) {
			return m.Pattern(), true
		}
	}
	return "", false
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matchers)
}
