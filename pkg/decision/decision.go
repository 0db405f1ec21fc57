// Package decision resolves one ledger row against the roster indexes.
//
// Resolution runs an exact pass (full normalized name plus context key) and,
// only when that pass yields neither a valid candidate nor a reportable
// rejection, a fallback pass on the first two name tokens. Within a pass, candidates whose identifier fails
// validation are dropped; one remaining candidate confirms the row, more than
// one makes it ambiguous. Ambiguity is never resolved by falling back.
package decision

import (
	"strings"

	"github.com/agentstation/membermatch/pkg/identifier"
	"github.com/agentstation/membermatch/pkg/index"
	"github.com/agentstation/membermatch/pkg/names"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/status"
)

// Reasons recorded on decisions that are not confirmations.
const (
	ReasonMissingInput      = "missing name or context key"
	ReasonAmbiguousExact    = "multiple valid exact matches"
	ReasonAmbiguousFallback = "multiple valid fallback matches"
	ReasonNoMatch           = "no match found"
)

// Decision is the outcome for one ledger row. Identifier is non-empty exactly
// when Status is ConfirmedExact or ConfirmedFallback.
type Decision struct {
	Identifier string      `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Status     status.Kind `json:"status" yaml:"status"`
	Reason     string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	// SourceRow is the roster row that supplied the identifier.
	SourceRow int `json:"source_row,omitempty" yaml:"source_row,omitempty"`
	// Candidates is the number of roster rows found at the deciding key.
	Candidates int `json:"candidates" yaml:"candidates"`
}

// Confirmed reports whether the decision carries an identifier.
func (d Decision) Confirmed() bool {
	return d.Status.IsConfirmed()
}

// Engine decides rows against a fixed pair of indexes. It holds no mutable
// state; Decide may be called concurrently.
type Engine struct {
	validator *identifier.Validator
	exact     *index.Index
	fallback  *index.Index
}

// New returns an engine. Nil arguments violate the calling contract and panic.
func New(validator *identifier.Validator, exact, fallback *index.Index) *Engine {
	if validator == nil || exact == nil || fallback == nil {
		panic("decision: nil validator or index")
	}
	return &Engine{validator: validator, exact: exact, fallback: fallback}
}

// Decide returns the decision for row. The result depends only on row and the
// engine's indexes. A name with no letters counts as missing, and the context
// key is compared without surrounding whitespace.
func (e *Engine) Decide(row records.TargetRow) Decision {
	context := strings.TrimSpace(row.ContextKey)
	if names.Normalize(row.RawName) == "" || context == "" {
		return Decision{Status: status.NotFound, Reason: ReasonMissingInput}
	}

	exact := e.exact.Lookup(e.exact.KeyFor(row.RawName, context))
	valid, firstRejection := e.partition(exact)
	switch {
	case len(valid) == 1:
		return confirm(status.ConfirmedExact, valid[0], len(exact))
	case len(valid) > 1:
		return Decision{Status: status.Ambiguous, Reason: ReasonAmbiguousExact, Candidates: len(exact)}
	case firstRejection != "":
		return Decision{Status: status.NotFound, Reason: string(firstRejection), Candidates: len(exact)}
	}

	// No exact candidates, or only ones with a blank identifier.
	fallback := e.fallback.Lookup(e.fallback.KeyFor(row.RawName, context))
	valid, _ = e.partition(fallback)
	switch {
	case len(valid) == 1:
		return confirm(status.ConfirmedFallback, valid[0], len(fallback))
	case len(valid) > 1:
		return Decision{Status: status.Ambiguous, Reason: ReasonAmbiguousFallback, Candidates: len(fallback)}
	default:
		return Decision{Status: status.NotFound, Reason: ReasonNoMatch, Candidates: len(fallback)}
	}
}

// partition returns the candidates with a valid identifier and the first
// reportable rejection reason seen, in roster order.
func (e *Engine) partition(candidates []records.SourceRecord) ([]records.SourceRecord, status.Kind) {
	var (
		valid []records.SourceRecord
		first status.Kind
	)
	for _, c := range candidates {
		res := e.validator.Validate(c.Identifier)
		if res.Valid {
			valid = append(valid, c)
			continue
		}
		if first == "" {
			first = res.Reason
		}
	}
	return valid, first
}

func confirm(kind status.Kind, rec records.SourceRecord, candidates int) Decision {
	return Decision{
		Identifier: identifier.Normalize(rec.Identifier),
		Status:     kind,
		SourceRow:  rec.Row,
		Candidates: candidates,
	}
}
