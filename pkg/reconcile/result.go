package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/membermatch/pkg/decision"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/review"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Decisions holds one decision per target row, in target order.
	Decisions []decision.Decision
	// Log is the decision log, in target order.
	Log []review.Entry
	// Review is Log ordered by status priority.
	Review []review.Entry
	// Summary counts rows per display status.
	Summary review.Summary
	// Duplicates lists roster records sharing a name and context key.
	Duplicates []records.SourceRecord

	Metadata Metadata
}

// Metadata describes the run that produced a result.
type Metadata struct {
	RuleSet    string
	Workers    int
	RosterSize int
	TargetRows int
	StartTime  utc.Time
	EndTime    utc.Time
	Duration   time.Duration
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("%d rows decided: %d confirmed, %d for review",
		r.Summary.Total, r.Summary.Confirmed(), r.Summary.Total-r.Summary.Confirmed())
}
