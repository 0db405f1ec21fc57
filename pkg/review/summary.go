package review

import (
	"slices"
	"strconv"

	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/status"
)

// Count is the number of rows shown with one display status.
type Count struct {
	Status status.Kind `json:"status" yaml:"status"`
	Label  string      `json:"label" yaml:"label"`
	Count  int         `json:"count" yaml:"count"`
}

// Summary aggregates a decision log.
type Summary struct {
	Counts []Count `json:"counts" yaml:"counts"`
	Total  int     `json:"total" yaml:"total"`
}

// Summarize counts entries per display status. Counts follow priority order
// and only statuses that occur are listed.
func Summarize(entries []Entry, priority status.Priority) Summary {
	index := make(map[status.Kind]int)
	var counts []Count
	for _, e := range entries {
		i, ok := index[e.Display]
		if !ok {
			i = len(counts)
			index[e.Display] = i
			counts = append(counts, Count{Status: e.Display, Label: e.Label})
		}
		counts[i].Count++
	}
	slices.SortStableFunc(counts, func(a, b Count) int {
		return priority.Rank(a.Status) - priority.Rank(b.Status)
	})
	return Summary{Counts: counts, Total: len(entries)}
}

// Of returns the count for kind, zero when absent.
func (s Summary) Of(kind status.Kind) int {
	for _, c := range s.Counts {
		if c.Status == kind {
			return c.Count
		}
	}
	return 0
}

// Confirmed returns the number of rows that received an identifier.
func (s Summary) Confirmed() int {
	return s.Of(status.ConfirmedExact) + s.Of(status.ConfirmedFallback)
}

// Table returns the summary as status/count rows ending with the total row.
func (s Summary) Table() [][]string {
	rows := make([][]string, 0, len(s.Counts)+1)
	for _, c := range s.Counts {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	return append(rows, []string{constants.SummaryTotalLabel, strconv.Itoa(s.Total)})
}

// SummaryHeaders are the column headers of the summary table.
func SummaryHeaders() []string {
	return []string{"STATUS", "COUNT"}
}
