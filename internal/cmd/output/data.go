package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/membermatch/internal/audit"
	"github.com/agentstation/membermatch/internal/mapping"
	"github.com/agentstation/membermatch/internal/workbook"
	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/names"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/review"
	"github.com/agentstation/membermatch/pkg/rules"
	"github.com/agentstation/membermatch/pkg/status"
)

// SummaryData renders status counts followed by the total row.
func SummaryData(s review.Summary) Data {
	return Data{
		Headers:         review.SummaryHeaders(),
		Rows:            s.Table(),
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// EntriesData renders a decision log.
func EntriesData(entries []review.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.Values())
	}
	return Data{Headers: review.LogHeaders(), Rows: rows}
}

// DuplicatesData renders flagged roster records with their matching key.
func DuplicatesData(dups []records.SourceRecord) Data {
	return Data{Headers: workbook.DuplicateHeaders(), Rows: workbook.DuplicateRows(dups)}
}

// PreviewData shows ledger rows next to the name key they will match on.
func PreviewData(rows []records.TargetRow) Data {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{strconv.Itoa(r.Row), r.RawName, r.ContextKey, names.Normalize(r.RawName), names.FirstTwoTokens(r.RawName)})
	}
	return Data{
		Headers: []string{"ROW", "NAME", "CONTEXT", "NORMALIZED_NAME", "FALLBACK_KEY"},
		Rows:    out,
	}
}

// RunsData renders run history, newest first.
func RunsData(runs []audit.Run) Data {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Time.Local().Format(constants.TimeFormatHuman),
			r.Mapping,
			r.RuleSet,
			strconv.Itoa(r.TargetRows),
			strconv.Itoa(r.Confirmed()),
			r.InputFile,
		})
	}
	return Data{
		Headers:         []string{"ID", "Started", "Mapping", "Rule Set", "Rows", "Confirmed", "Input"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// MappingsData lists mapping templates.
func MappingsData(mappings []mapping.Mapping) Data {
	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		d := m.WithDefaults()
		rows = append(rows, []string{
			d.Name,
			d.SourceSheet,
			d.TargetSheet,
			d.SourceName + " / " + d.SourceContext + " / " + d.SourceIdentifier,
			d.TargetName + " / " + d.TargetContext,
			d.IdentifierOut + " / " + d.StatusOut,
		})
	}
	return Data{
		Headers: []string{"Name", "Roster Sheet", "Ledger Sheet", "Roster Columns", "Ledger Columns", "Output Columns"},
		Rows:    rows,
	}
}

// RulesData describes one compiled rule set.
func RulesData(r *rules.Rules) Data {
	prefixes := strings.Join(r.InvalidPrefixes(), ", ")
	if prefixes == "" {
		prefixes = "(none)"
	}
	rows := [][]string{
		{"Name", r.Name()},
		{"Max identifier length", strconv.Itoa(r.MaxIdentifierLength())},
		{"Invalid prefixes", prefixes},
		{"Prefix mode", r.PrefixMode().String()},
	}
	priority := r.Priority()
	labels := r.Labels()
	for _, k := range status.Kinds() {
		label := labels[k]
		if label == "" {
			label = string(k)
		}
		rows = append(rows, []string{
			fmt.Sprintf("Status %s", k),
			fmt.Sprintf("rank %d, label %q", priority.Rank(k), label),
		})
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// RunReport assembles the report of one stored run.
func RunReport(run audit.Run, entries []review.Entry, priority status.Priority) Report {
	sorted := review.SortByPriority(entries, priority)
	lines := []string{
		fmt.Sprintf("Run %s", run.ID),
		fmt.Sprintf("Started %s, finished in %s", run.StartedAt.Time.Local().Format(constants.TimeFormatHuman),
			run.FinishedAt.Time.Sub(run.StartedAt.Time).Round(time.Millisecond)),
		fmt.Sprintf("Input %s, mapping %s, rule set %s", orNone(run.InputFile), orNone(run.Mapping), run.RuleSet),
	}
	if run.OutputFile != "" {
		lines = append(lines, "Output "+run.OutputFile)
	}
	return Report{
		Title: "Reconciliation report",
		Lines: lines,
		Sections: []Section{
			{Title: "Summary", Data: SummaryData(run.Summary)},
			{Title: "Review", Data: EntriesData(sorted)},
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
