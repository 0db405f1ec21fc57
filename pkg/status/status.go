// Package status defines the closed set of match outcomes, the labels a
// reviewer sees for them, and the rank table used to order review output.
package status

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind is an internal match outcome.
type Kind string

// Match outcome kinds.
const (
	// ConfirmedExact means exactly one valid roster row matched on the full name.
	ConfirmedExact Kind = "CONFIRMED_EXACT"
	// ConfirmedFallback means exactly one valid roster row matched on the first two name tokens.
	ConfirmedFallback Kind = "CONFIRMED_FALLBACK"
	// Ambiguous means more than one valid candidate was found at the same key.
	Ambiguous Kind = "AMBIGUOUS"
	// NotFound means no usable candidate exists.
	NotFound Kind = "NOT_FOUND"
	// RejectedByPosition marks an identifier disqualified by an invalid prefix.
	RejectedByPosition Kind = "REJECTED_BY_POSITION"
	// RejectedTooLong marks an identifier longer than the configured maximum.
	RejectedTooLong Kind = "REJECTED_TOO_LONG"
)

// Kinds returns every kind in canonical order.
func Kinds() []Kind {
	return []Kind{
		ConfirmedExact,
		ConfirmedFallback,
		Ambiguous,
		NotFound,
		RejectedByPosition,
		RejectedTooLong,
	}
}

// Parse converts a string to a Kind, case-insensitively.
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown status kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// IsConfirmed reports whether k carries an identifier.
func (k Kind) IsConfirmed() bool {
	return k == ConfirmedExact || k == ConfirmedFallback
}

// IsRejection reports whether k is one of the validation-failure kinds.
func (k Kind) IsRejection() bool {
	return k == RejectedByPosition || k == RejectedTooLong
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Priority maps each kind to a review rank. Lower ranks sort first.
type Priority map[Kind]int

// DefaultPriority puts exceptions ahead of confirmed rows.
func DefaultPriority() Priority {
	return Priority{
		Ambiguous:          1,
		RejectedByPosition: 2,
		RejectedTooLong:    3,
		NotFound:           4,
		ConfirmedFallback:  5,
		ConfirmedExact:     6,
	}
}

// Rank returns the rank of k. Kinds missing from the table sort after every ranked kind.
func (p Priority) Rank(k Kind) int {
	if r, ok := p[k]; ok {
		return r
	}
	highest := 0
	for _, r := range p {
		highest = max(highest, r)
	}
	return highest + 1
}

// Missing returns the known kinds that have no rank, in canonical order.
func (p Priority) Missing() []Kind {
	var missing []Kind
	for _, k := range Kinds() {
		if _, ok := p[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Clone returns an independent copy.
func (p Priority) Clone() Priority {
	return maps.Clone(p)
}
