package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/membermatch/pkg/decision"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/status"
)

func entry(row int, display status.Kind) Entry {
	return Entry{Row: row, Status: display, Display: display, Label: string(display)}
}

func TestNewEntry(t *testing.T) {
	c := status.NewClassifier(status.Labels{status.ConfirmedExact: "OK"})
	row := records.TargetRow{Row: 7, RawName: "John Smith", ContextKey: "C1"}

	tests := []struct {
		name        string
		d           decision.Decision
		wantDisplay status.Kind
		wantLabel   string
	}{
		{
			name:        "confirmed uses configured label",
			d:           decision.Decision{Identifier: "AB1", Status: status.ConfirmedExact, SourceRow: 3, Candidates: 1},
			wantDisplay: status.ConfirmedExact,
			wantLabel:   "OK",
		},
		{
			name:        "rejection reason becomes the display status",
			d:           decision.Decision{Status: status.NotFound, Reason: string(status.RejectedTooLong), Candidates: 1},
			wantDisplay: status.RejectedTooLong,
			wantLabel:   "REJECTED_TOO_LONG",
		},
		{
			name:        "plain not found",
			d:           decision.Decision{Status: status.NotFound, Reason: decision.ReasonNoMatch},
			wantDisplay: status.NotFound,
			wantLabel:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEntry(row, tt.d, c)
			assert.Equal(t, 7, e.Row)
			assert.Equal(t, "John Smith", e.Name)
			assert.Equal(t, tt.d.Status, e.Status)
			assert.Equal(t, tt.wantDisplay, e.Display)
			assert.Equal(t, tt.wantLabel, e.Label)
			assert.Equal(t, tt.d.Reason, e.Reason)
		})
	}
}

func TestEntryValues(t *testing.T) {
	e := Entry{Row: 4, Name: "A B", Context: "C1", Identifier: "AB1", Status: status.ConfirmedExact,
		Display: status.ConfirmedExact, Label: "CONFIRMED_EXACT", SourceRow: 9, Candidates: 1}
	values := e.Values()
	require.Len(t, values, len(LogHeaders()))
	assert.Equal(t, []string{"4", "A B", "C1", "AB1", "CONFIRMED_EXACT", "CONFIRMED_EXACT", "", "9", "1"}, values)

	empty := Entry{Row: 5, Status: status.NotFound, Display: status.NotFound, Label: "NOT_FOUND"}
	assert.Equal(t, "", empty.Values()[7])
}

func TestSortByPriority(t *testing.T) {
	entries := []Entry{
		entry(2, status.ConfirmedExact),
		entry(3, status.NotFound),
		entry(4, status.Ambiguous),
		entry(5, status.ConfirmedExact),
		entry(6, status.RejectedTooLong),
		entry(7, status.Ambiguous),
		entry(8, status.ConfirmedFallback),
		entry(9, status.RejectedByPosition),
	}
	p := status.DefaultPriority()

	sorted := SortByPriority(entries, p)
	var order []int
	for _, e := range sorted {
		order = append(order, e.Row)
	}
	assert.Equal(t, []int{4, 7, 9, 6, 3, 8, 2, 5}, order)

	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, p.Rank(sorted[i-1].Display), p.Rank(sorted[i].Display))
	}

	assert.Equal(t, 2, entries[0].Row, "input is not modified")
	assert.Equal(t, sorted, SortByPriority(entries, p), "repeatable")
}

func TestSortByPriorityUnrankedLast(t *testing.T) {
	p := status.Priority{status.ConfirmedExact: 1}
	sorted := SortByPriority([]Entry{entry(2, status.Ambiguous), entry(3, status.ConfirmedExact)}, p)
	assert.Equal(t, 3, sorted[0].Row)
	assert.Equal(t, 2, sorted[1].Row)
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		entry(2, status.ConfirmedExact),
		entry(3, status.NotFound),
		entry(4, status.ConfirmedExact),
		entry(5, status.Ambiguous),
	}

	s := Summarize(entries, status.DefaultPriority())
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, []Count{
		{Status: status.Ambiguous, Label: "AMBIGUOUS", Count: 1},
		{Status: status.NotFound, Label: "NOT_FOUND", Count: 1},
		{Status: status.ConfirmedExact, Label: "CONFIRMED_EXACT", Count: 2},
	}, s.Counts)
	assert.Equal(t, 2, s.Confirmed())
	assert.Equal(t, 0, s.Of(status.RejectedTooLong))

	assert.Equal(t, [][]string{
		{"AMBIGUOUS", "1"},
		{"NOT_FOUND", "1"},
		{"CONFIRMED_EXACT", "2"},
		{"TOTAL_ROWS", "4"},
	}, s.Table())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, status.DefaultPriority())
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Counts)
	assert.Equal(t, [][]string{{"TOTAL_ROWS", "0"}}, s.Table())
}
