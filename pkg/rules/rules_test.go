package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/internal/matcher"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/status"
)

func TestMustDefault(t *testing.T) {
	r := MustDefault()
	assert.Equal(t, "default", r.Name())
	assert.Equal(t, 5, r.MaxIdentifierLength())
	assert.Empty(t, r.InvalidPrefixes())
	assert.Equal(t, matcher.Prefix, r.PrefixMode())
	assert.Equal(t, status.DefaultPriority(), r.Priority())
	assert.True(t, r.Validator().Validate("AB123").Valid)
	assert.Equal(t, status.RejectedTooLong, r.Validator().Validate("AB1234").Reason)
}

func TestCompile(t *testing.T) {
	r, err := Spec{
		MaxIdentifierLength: 4,
		InvalidPrefixes:     []string{"XX", "99"},
		StatusPriority:      map[string]int{"confirmed_exact": 0},
		Labels:              map[string]string{"CONFIRMED_FALLBACK": "CONFIRMED (2 NAMES)"},
	}.Compile("strict")
	require.NoError(t, err)

	assert.Equal(t, []string{"XX", "99"}, r.InvalidPrefixes())
	assert.Equal(t, 0, r.Priority().Rank(status.ConfirmedExact))
	assert.Equal(t, "CONFIRMED (2 NAMES)", r.Classifier().Label(status.ConfirmedFallback))
	assert.Equal(t, status.RejectedByPosition, r.Validator().Validate("99A").Reason)
}

func TestCompileRegexPrefixesAreAnchored(t *testing.T) {
	r, err := Spec{PrefixMode: "regex", InvalidPrefixes: []string{"12", `9\d`}}.Compile("regex")
	require.NoError(t, err)

	tests := []struct {
		id   string
		want status.Kind
	}{
		{"Z12", ""},
		{"A99", ""},
		{"12A", status.RejectedByPosition},
		{"95", status.RejectedByPosition},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res := r.Validator().Validate(tt.id)
			assert.Equal(t, tt.want == "", res.Valid)
			assert.Equal(t, tt.want, res.Reason)
		})
	}
}

func TestCompileIsImmutable(t *testing.T) {
	spec := Spec{InvalidPrefixes: []string{"XX"}}
	r, err := spec.Compile("x")
	require.NoError(t, err)

	spec.InvalidPrefixes[0] = "YY"
	prefixes := r.InvalidPrefixes()
	prefixes[0] = "ZZ"
	priority := r.Priority()
	priority[status.Ambiguous] = 100

	assert.Equal(t, []string{"XX"}, r.InvalidPrefixes())
	assert.Equal(t, 1, r.Priority().Rank(status.Ambiguous))
	assert.Equal(t, status.RejectedByPosition, r.Validator().Validate("XX1").Reason)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"negative length", Spec{MaxIdentifierLength: -1}},
		{"blank prefix", Spec{InvalidPrefixes: []string{"XX", " "}}},
		{"bad mode", Spec{PrefixMode: "fuzzy"}},
		{"bad regex", Spec{PrefixMode: "regex", InvalidPrefixes: []string{"("}}},
		{"unknown priority kind", Spec{StatusPriority: map[string]int{"MAYBE": 1}}},
		{"unknown label kind", Spec{Labels: map[string]string{"MAYBE": "x"}}},
		{"blank label", Spec{Labels: map[string]string{"AMBIGUOUS": " "}}},
		{"duplicate labels", Spec{Labels: map[string]string{"AMBIGUOUS": "CHECK", "NOT_FOUND": "CHECK"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Compile("bad")
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err), "got %v", err)
		})
	}
}

func TestParse(t *testing.T) {
	doc := []byte(`
rule_sets:
  strict:
    max_identifier_length: 4
    invalid_prefixes: ["XX"]
  loose:
    max_identifier_length: 8
`)
	set, err := Parse(doc, "rules.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "loose", "strict"}, set.Names())

	strict, err := set.Compile("strict")
	require.NoError(t, err)
	assert.Equal(t, 4, strict.MaxIdentifierLength())

	def, err := set.Compile("")
	require.NoError(t, err)
	assert.Equal(t, "default", def.Name())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("rule_sets:\n  x:\n    max_length: 3\n"), "rules.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestParseEmptyDocument(t *testing.T) {
	set, err := Parse([]byte("  \n"), "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, set.Names())
}

func TestUnknownRuleSet(t *testing.T) {
	_, err := Builtin().Compile("missing")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.True(t, errors.IsNotFound(err))
}

func TestLoadFile(t *testing.T) {
	set, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, set.Names())

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule_sets:\n  strict:\n    invalid_prefixes: [\"9\"]\n"), 0o600))
	set, err = LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, set.Names(), "strict")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsConfigError(err))
}

func TestMarshalRoundTrip(t *testing.T) {
	set := Set{"strict": {MaxIdentifierLength: 4, InvalidPrefixes: []string{"XX"}}}
	data, err := set.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data, "")
	require.NoError(t, err)
	assert.Equal(t, set["strict"], parsed["strict"])
}
