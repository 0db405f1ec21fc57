// Package review turns decided rows into the artifacts a reviewer works from:
// the decision log, the priority-ordered review listing, and the per-status
// summary.
package review

import (
	"slices"
	"strconv"

	"github.com/agentstation/membermatch/pkg/decision"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/status"
)

// Entry is one decided ledger row. The ordered collection of entries is the
// decision log.
type Entry struct {
	Row        int    `json:"row" yaml:"row"`
	Name       string `json:"name" yaml:"name"`
	Context    string `json:"context" yaml:"context"`
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	// Status is the engine's internal outcome.
	Status status.Kind `json:"status" yaml:"status"`
	// Display is the status shown to reviewers; Label is its configured text.
	Display    status.Kind `json:"display" yaml:"display"`
	Label      string      `json:"label" yaml:"label"`
	Reason     string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	SourceRow  int         `json:"source_row,omitempty" yaml:"source_row,omitempty"`
	Candidates int         `json:"candidates" yaml:"candidates"`
}

// NewEntry classifies d for the ledger row it was decided from.
func NewEntry(row records.TargetRow, d decision.Decision, c status.Classifier) Entry {
	display, label := c.Display(d.Status, d.Reason)
	return Entry{
		Row:        row.Row,
		Name:       row.RawName,
		Context:    row.ContextKey,
		Identifier: d.Identifier,
		Status:     d.Status,
		Display:    display,
		Label:      label,
		Reason:     d.Reason,
		SourceRow:  d.SourceRow,
		Candidates: d.Candidates,
	}
}

// LogHeaders are the column headers of the decision log table.
func LogHeaders() []string {
	return []string{"ROW", "NAME", "CONTEXT", "IDENTIFIER", "INTERNAL_STATUS", "DISPLAY_STATUS", "REASON", "SOURCE_ROW", "CANDIDATES"}
}

// Values returns e as a decision log table row, aligned with LogHeaders.
func (e Entry) Values() []string {
	source := ""
	if e.SourceRow > 0 {
		source = strconv.Itoa(e.SourceRow)
	}
	return []string{
		strconv.Itoa(e.Row),
		e.Name,
		e.Context,
		e.Identifier,
		string(e.Status),
		e.Label,
		e.Reason,
		source,
		strconv.Itoa(e.Candidates),
	}
}

// SortByPriority returns a copy of entries ordered by the rank of their
// display status. Entries with equal rank keep their relative order.
func SortByPriority(entries []Entry, priority status.Priority) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return priority.Rank(a.Display) - priority.Rank(b.Display)
	})
	return sorted
}
