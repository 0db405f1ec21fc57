// Package index builds the read-only roster lookups used by the decision
// engine. An Index is built once per run and never mutated afterwards, so it
// can be shared by any number of goroutines without locking.
package index

import (
	"strings"

	"github.com/agentstation/membermatch/pkg/names"
	"github.com/agentstation/membermatch/pkg/records"
)

// Key pairs a normalized name key with a context key.
type Key struct {
	Name    string
	Context string
}

// KeyFunc derives the name part of a key from a raw name.
type KeyFunc func(raw string) string

// Kind identifies which key derivation an index uses.
type Kind string

// Index kinds.
const (
	Exact    Kind = "exact"
	Fallback Kind = "fallback"
)

// Index maps keys to the roster records sharing them, in roster order.
type Index struct {
	kind    Kind
	keyFunc KeyFunc
	buckets map[Key][]records.SourceRecord
	size    int
}

// Build indexes roster under keys derived by keyFunc. Records keep their
// roster order within each bucket.
func Build(kind Kind, keyFunc KeyFunc, roster []records.SourceRecord) *Index {
	buckets := make(map[Key][]records.SourceRecord, len(roster))
	for _, rec := range roster {
		k := Key{Name: keyFunc(rec.RawName), Context: strings.TrimSpace(rec.ContextKey)}
		buckets[k] = append(buckets[k], rec)
	}
	return &Index{kind: kind, keyFunc: keyFunc, buckets: buckets, size: len(roster)}
}

// BuildExact indexes roster by full normalized name and context key.
func BuildExact(roster []records.SourceRecord) *Index {
	return Build(Exact, names.Normalize, roster)
}

// BuildFallback indexes roster by the first two name tokens and context key.
func BuildFallback(roster []records.SourceRecord) *Index {
	return Build(Fallback, names.FirstTwoTokens, roster)
}

// Kind returns the key derivation this index uses.
func (ix *Index) Kind() Kind {
	return ix.kind
}

// KeyFor derives the lookup key for a raw name and context key. Surrounding
// whitespace is not part of a context key; case is.
func (ix *Index) KeyFor(rawName, context string) Key {
	return Key{Name: ix.keyFunc(rawName), Context: strings.TrimSpace(context)}
}

// Lookup returns the records stored under k. An absent key yields an empty
// slice. The returned slice is shared and must not be modified.
func (ix *Index) Lookup(k Key) []records.SourceRecord {
	return ix.buckets[k]
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	return len(ix.buckets)
}

// Size returns the number of indexed records.
func (ix *Index) Size() int {
	return ix.size
}
