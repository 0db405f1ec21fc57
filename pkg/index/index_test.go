package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/membermatch/pkg/records"
)

func roster() []records.SourceRecord {
	return []records.SourceRecord{
		{Row: 2, RawName: "John Smith", ContextKey: "C1", Identifier: "AB1"},
		{Row: 3, RawName: "JOHN  SMITH", ContextKey: "C1", Identifier: "AB2"},
		{Row: 4, RawName: "John Smith", ContextKey: "C2", Identifier: "AB3"},
		{Row: 5, RawName: "John Smith Junior", ContextKey: "C1", Identifier: "AB4"},
		{Row: 6, RawName: "", ContextKey: "C1", Identifier: "AB5"},
	}
}

func TestBuildExact(t *testing.T) {
	ix := BuildExact(roster())

	assert.Equal(t, Exact, ix.Kind())
	assert.Equal(t, 5, ix.Size())
	assert.Equal(t, 4, ix.Len())

	got := ix.Lookup(ix.KeyFor("john smith", "C1"))
	if assert.Len(t, got, 2) {
		assert.Equal(t, 2, got[0].Row, "roster order preserved")
		assert.Equal(t, 3, got[1].Row)
	}

	assert.Len(t, ix.Lookup(Key{Name: "JOHN SMITH", Context: "C2"}), 1)
	assert.Len(t, ix.Lookup(Key{Name: "JOHN SMITH JUNIOR", Context: "C1"}), 1)
	assert.Empty(t, ix.Lookup(Key{Name: "JANE DOE", Context: "C1"}))
}

func TestBuildFallback(t *testing.T) {
	ix := BuildFallback(roster())

	assert.Equal(t, Fallback, ix.Kind())
	got := ix.Lookup(ix.KeyFor("John Smith Senior", "C1"))
	if assert.Len(t, got, 3) {
		assert.Equal(t, []int{2, 3, 5}, []int{got[0].Row, got[1].Row, got[2].Row})
	}
}

func TestContextKey(t *testing.T) {
	ix := BuildExact(roster())
	assert.Empty(t, ix.Lookup(ix.KeyFor("John Smith", "c1")), "case sensitive")
	assert.Len(t, ix.Lookup(ix.KeyFor("John Smith", " C1\t")), 2, "surrounding space ignored")

	padded := BuildExact([]records.SourceRecord{{Row: 2, RawName: "John Smith", ContextKey: " C1 ", Identifier: "AB1"}})
	assert.Len(t, padded.Lookup(padded.KeyFor("John Smith", "C1")), 1)
	assert.Len(t, padded.Lookup(Key{Name: "JOHN SMITH", Context: "C1"}), 1)
}

func TestBuildEmpty(t *testing.T) {
	ix := BuildExact(nil)
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Lookup(Key{}))
}
