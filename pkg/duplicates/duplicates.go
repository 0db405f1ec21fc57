// Package duplicates flags roster records that share a matching key.
//
// Duplication is a property of the group: every member of a colliding group is
// reported, not only the second and later occurrences.
package duplicates

import (
	"strings"

	"github.com/agentstation/membermatch/pkg/names"
	"github.com/agentstation/membermatch/pkg/records"
)

// Column extracts one key component from a record.
type Column func(rec records.SourceRecord) string

// Key columns.
var (
	// Name is the normalized name.
	Name Column = func(rec records.SourceRecord) string { return names.Normalize(rec.RawName) }
	// Context is the trimmed context key.
	Context Column = func(rec records.SourceRecord) string { return strings.TrimSpace(rec.ContextKey) }
	// Identifier is the trimmed identifier candidate.
	Identifier Column = func(rec records.SourceRecord) string { return strings.TrimSpace(rec.Identifier) }
)

// DefaultColumns returns the columns used when none are given.
func DefaultColumns() []Column {
	return []Column{Name, Context}
}

// Group is a set of records sharing one key, in roster order.
type Group struct {
	Key     []string               `json:"key" yaml:"key"`
	Records []records.SourceRecord `json:"records" yaml:"records"`
}

// Find returns every record whose key over columns is shared with at least
// one other record. Records are returned in roster order. With no columns the
// default name and context key is used.
func Find(roster []records.SourceRecord, columns ...Column) []records.SourceRecord {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	keys := make([]string, len(roster))
	counts := make(map[string]int, len(roster))
	for i, rec := range roster {
		keys[i] = joinKey(rec, columns)
		counts[keys[i]]++
	}

	var out []records.SourceRecord
	for i, rec := range roster {
		if counts[keys[i]] > 1 {
			out = append(out, rec)
		}
	}
	return out
}

// Groups returns the colliding groups ordered by the roster position of their
// first member.
func Groups(roster []records.SourceRecord, columns ...Column) []Group {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	position := make(map[string]int)
	var groups []Group
	for _, rec := range roster {
		k := joinKey(rec, columns)
		i, ok := position[k]
		if !ok {
			i = len(groups)
			position[k] = i
			groups = append(groups, Group{Key: keyParts(rec, columns)})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Records) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func keyParts(rec records.SourceRecord, columns []Column) []string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col(rec)
	}
	return parts
}

// joinKey separates components with a unit separator, which normalization
// and trimmed cell text cannot produce.
func joinKey(rec records.SourceRecord, columns []Column) string {
	return strings.Join(keyParts(rec, columns), "\x1f")
}
