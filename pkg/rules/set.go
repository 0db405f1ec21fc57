package rules

import (
	"bytes"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
)

// File is the YAML document holding named rule sets.
//
//	rule_sets:
//	  strict:
//	    max_identifier_length: 4
//	    invalid_prefixes: ["XX", "99"]
type File struct {
	RuleSets map[string]Spec `yaml:"rule_sets"`
}

// Set is a collection of named rule sets.
type Set map[string]Spec

// Builtin returns the rule sets available without a rules file.
func Builtin() Set {
	return Set{constants.DefaultRuleSet: Default()}
}

// Parse decodes a rules document and layers it over the built-in sets.
// Unknown keys are rejected so a typo cannot silently disable a rule.
func Parse(data []byte, filename string) (Set, error) {
	var f File
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.NewConfigError("rules", "", errors.WrapParse("yaml", filename, err))
		}
	}

	set := Builtin()
	for name, spec := range f.RuleSets {
		if name == "" {
			return nil, errors.NewConfigError("rules", "rule set with empty name", nil)
		}
		set[name] = spec
	}
	return set, nil
}

// LoadFile reads named rule sets from path. An empty path returns the built-in sets.
func LoadFile(path string) (Set, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("rules", "", errors.WrapIO("read", path, err))
	}
	return Parse(data, path)
}

// Names returns the rule set names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile looks up and compiles a named rule set. An empty name selects the default.
func (s Set) Compile(name string) (*Rules, error) {
	if name == "" {
		name = constants.DefaultRuleSet
	}
	spec, ok := s[name]
	if !ok {
		return nil, errors.NewConfigError("rules", "", errors.NewNotFoundError("rule set", name))
	}
	return spec.Compile(name)
}

// Marshal renders the set as a rules document.
func (s Set) Marshal() ([]byte, error) {
	return yaml.Marshal(File{RuleSets: s})
}
