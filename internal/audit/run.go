package audit

import (
	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/membermatch/pkg/reconcile"
	"github.com/agentstation/membermatch/pkg/review"
)

// Run is the stored record of one reconciliation.
type Run struct {
	ID         string         `json:"id" yaml:"id"`
	StartedAt  utc.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time       `json:"finished_at" yaml:"finished_at"`
	InputFile  string         `json:"input_file,omitempty" yaml:"input_file,omitempty"`
	OutputFile string         `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	Mapping    string         `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	RuleSet    string         `json:"rule_set" yaml:"rule_set"`
	Workers    int            `json:"workers" yaml:"workers"`
	RosterSize int            `json:"roster_size" yaml:"roster_size"`
	TargetRows int            `json:"target_rows" yaml:"target_rows"`
	Summary    review.Summary `json:"summary" yaml:"summary"`
}

// NewRun describes res under a fresh run ID.
func NewRun(res *reconcile.Result, input, output, mapping string) Run {
	return Run{
		ID:         uuid.NewString(),
		StartedAt:  res.Metadata.StartTime,
		FinishedAt: res.Metadata.EndTime,
		InputFile:  input,
		OutputFile: output,
		Mapping:    mapping,
		RuleSet:    res.Metadata.RuleSet,
		Workers:    res.Metadata.Workers,
		RosterSize: res.Metadata.RosterSize,
		TargetRows: res.Metadata.TargetRows,
		Summary:    res.Summary,
	}
}

// Confirmed returns the number of rows that received an identifier.
func (r Run) Confirmed() int {
	return r.Summary.Confirmed()
}
