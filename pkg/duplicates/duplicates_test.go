package duplicates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/pkg/records"
)

func roster() []records.SourceRecord {
	return []records.SourceRecord{
		{Row: 2, RawName: "John Smith", ContextKey: "C1", Identifier: "AB1"},
		{Row: 3, RawName: "Mary Lee", ContextKey: "C1", Identifier: "ML1"},
		{Row: 4, RawName: "JOHN  SMITH", ContextKey: "C1", Identifier: "AB2"},
		{Row: 5, RawName: "John Smith", ContextKey: "C2", Identifier: "AB1"},
		{Row: 6, RawName: "john-smith", ContextKey: "C1", Identifier: "AB3"},
	}
}

func rows(recs []records.SourceRecord) []int {
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Row)
	}
	return out
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		want    []int
	}{
		{name: "default name and context", want: []int{2, 4, 6}},
		{name: "name only", columns: []Column{Name}, want: []int{2, 4, 5, 6}},
		{name: "identifier only", columns: []Column{Identifier}, want: []int{2, 5}},
		{name: "context only", columns: []Column{Context}, want: []int{2, 3, 4, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rows(Find(roster(), tt.columns...)))
		})
	}
}

func TestFindMembershipMatchesGroupSize(t *testing.T) {
	r := roster()
	dups := Find(r)
	in := make(map[int]bool, len(dups))
	for _, d := range dups {
		in[d.Row] = true
	}

	counts := make(map[string]int)
	for _, rec := range r {
		counts[joinKey(rec, DefaultColumns())]++
	}
	for _, rec := range r {
		assert.Equal(t, counts[joinKey(rec, DefaultColumns())] >= 2, in[rec.Row], "row %d", rec.Row)
	}
}

func TestFindEmpty(t *testing.T) {
	assert.Empty(t, Find(nil))
	assert.Empty(t, Find([]records.SourceRecord{{Row: 2, RawName: "A", ContextKey: "C"}}))
}

func TestGroups(t *testing.T) {
	groups := Groups(roster())
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"JOHN SMITH", "C1"}, groups[0].Key)
	assert.Equal(t, []int{2, 4, 6}, rows(groups[0].Records))

	byName := Groups(roster(), Name)
	require.Len(t, byName, 1)
	assert.Len(t, byName[0].Records, 4)
}
