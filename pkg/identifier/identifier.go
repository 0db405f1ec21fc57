// Package identifier decides whether a roster membercode is usable.
//
// Checks run in a fixed order and the first failure wins:
//
//  1. blank after trimming: rejected silently (no reason)
//  2. starts with a disqualifying prefix: status.RejectedByPosition
//  3. longer than the maximum length: status.RejectedTooLong
//
// Position is checked before length so a code that is both positionally
// disqualified and too long reports the position defect.
package identifier

import (
	"strings"
	"unicode/utf8"

	"github.com/agentstation/membermatch/internal/matcher"
	"github.com/agentstation/membermatch/pkg/status"
)

// Result is the outcome of validating one candidate.
type Result struct {
	Valid bool
	// Reason is set only for reportable rejections.
	Reason status.Kind
	// Pattern is the disqualifying pattern for position rejections.
	Pattern string
}

// Validator checks identifier candidates. It is immutable and safe for
// concurrent use.
type Validator struct {
	maxLength int
	invalid   *matcher.Set
}

// New returns a validator for the given maximum length and disqualifying
// patterns. Callers normally build it through rules.Rules.Validator.
func New(maxLength int, invalid *matcher.Set) *Validator {
	return &Validator{maxLength: maxLength, invalid: invalid}
}

// MaxLength returns the configured maximum length.
func (v *Validator) MaxLength() int {
	return v.maxLength
}

// Validate classifies candidate.
func (v *Validator) Validate(candidate string) Result {
	code := strings.TrimSpace(candidate)
	if code == "" {
		return Result{}
	}

	if pattern, ok := v.invalid.First(code); ok {
		return Result{Reason: status.RejectedByPosition, Pattern: pattern}
	}

	if utf8.RuneCountInString(code) > v.maxLength {
		return Result{Reason: status.RejectedTooLong}
	}

	return Result{Valid: true}
}

// Normalize returns the form of a valid identifier written to the ledger.
func Normalize(candidate string) string {
	return strings.TrimSpace(candidate)
}
