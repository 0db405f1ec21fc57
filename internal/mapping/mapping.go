// Package mapping describes where the reconciliation fields live in a
// workbook. A Mapping is a named template: which sheet holds the roster, which
// holds the ledger, and which header in each carries the name, context key and
// identifier. Templates are stored so a recurring file layout is set up once.
package mapping

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
)

// Mapping is a column mapping template.
type Mapping struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	SourceSheet string `yaml:"source_sheet" json:"source_sheet"`
	TargetSheet string `yaml:"target_sheet" json:"target_sheet"`

	// Roster headers. Empty values use the defaults (NAME, CHN, MEMBERCODE).
	SourceName       string `yaml:"source_name,omitempty" json:"source_name,omitempty"`
	SourceContext    string `yaml:"source_context,omitempty" json:"source_context,omitempty"`
	SourceIdentifier string `yaml:"source_identifier,omitempty" json:"source_identifier,omitempty"`

	// Ledger headers. The output columns are appended when the sheet lacks them.
	TargetName    string `yaml:"target_name" json:"target_name"`
	TargetContext string `yaml:"target_context" json:"target_context"`
	IdentifierOut string `yaml:"identifier_out" json:"identifier_out"`
	StatusOut     string `yaml:"status_out" json:"status_out"`
}

// WithDefaults returns a copy with default roster headers filled in.
func (m Mapping) WithDefaults() Mapping {
	m.Name = strings.TrimSpace(m.Name)
	if m.SourceName == "" {
		m.SourceName = constants.DefaultSourceNameColumn
	}
	if m.SourceContext == "" {
		m.SourceContext = constants.DefaultSourceContextColumn
	}
	if m.SourceIdentifier == "" {
		m.SourceIdentifier = constants.DefaultSourceIdentifierColumn
	}
	return m
}

// Validate checks that every field is set, the two sheets differ and no
// ledger header is mapped to more than one field.
func (m *Mapping) Validate() error {
	d := m.WithDefaults()
	if d.Name == "" {
		return &errors.ValidationError{Field: "name", Message: "cannot be empty"}
	}

	required := []struct{ field, value string }{
		{"source_sheet", d.SourceSheet},
		{"target_sheet", d.TargetSheet},
		{"target_name", d.TargetName},
		{"target_context", d.TargetContext},
		{"identifier_out", d.IdentifierOut},
		{"status_out", d.StatusOut},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &errors.MappingError{Mapping: d.Name, Message: r.field + " cannot be empty"}
		}
	}

	if d.SourceSheet == d.TargetSheet {
		return &errors.MappingError{Mapping: d.Name, Message: fmt.Sprintf("source and target sheet are both %q", d.SourceSheet)}
	}

	target := d.targetHeaders()
	for i, h := range target {
		if slices.Contains(target[:i], h) {
			return &errors.MappingError{Mapping: d.Name, Message: fmt.Sprintf("ledger column %q is mapped more than once", h)}
		}
	}
	source := []string{d.SourceName, d.SourceContext, d.SourceIdentifier}
	for i, h := range source {
		if slices.Contains(source[:i], h) {
			return &errors.MappingError{Mapping: d.Name, Message: fmt.Sprintf("roster column %q is mapped more than once", h)}
		}
	}
	return nil
}

func (m Mapping) targetHeaders() []string {
	return []string{m.TargetName, m.TargetContext, m.IdentifierOut, m.StatusOut}
}

// Columns locates mapped fields in a header row by zero-based index.
// Fields that are absent or do not apply are -1.
type Columns struct {
	Name       int
	Context    int
	Identifier int
	Status     int
}

// Width returns the number of cells a row needs to hold every mapped column.
func (c Columns) Width() int {
	return max(c.Name, c.Context, c.Identifier, c.Status) + 1
}

// Required returns the headers that must already exist on sheet.
func (m *Mapping) Required(sheet string) []string {
	d := m.WithDefaults()
	switch sheet {
	case d.SourceSheet:
		return []string{d.SourceName, d.SourceContext, d.SourceIdentifier}
	case d.TargetSheet:
		return []string{d.TargetName, d.TargetContext}
	default:
		return nil
	}
}

// CheckHeaders reports every required column missing from headers, one
// MappingError per column.
func (m *Mapping) CheckHeaders(sheet string, headers []string) error {
	if sheet != m.SourceSheet && sheet != m.TargetSheet {
		return &errors.MappingError{Mapping: m.Name, Sheet: sheet, Message: fmt.Sprintf("sheet %q is not part of this mapping", sheet)}
	}
	var errs []error
	for _, col := range m.Required(sheet) {
		if headerIndex(headers, col) < 0 {
			errs = append(errs, errors.NewMissingColumnError(m.Name, sheet, col))
		}
	}
	return errors.Join(errs...)
}

// Resolve locates the mapped columns of sheet in headers.
func (m *Mapping) Resolve(sheet string, headers []string) (Columns, error) {
	if err := m.CheckHeaders(sheet, headers); err != nil {
		return Columns{}, err
	}
	d := m.WithDefaults()
	if sheet == d.SourceSheet {
		return Columns{
			Name:       headerIndex(headers, d.SourceName),
			Context:    headerIndex(headers, d.SourceContext),
			Identifier: headerIndex(headers, d.SourceIdentifier),
			Status:     -1,
		}, nil
	}
	return Columns{
		Name:       headerIndex(headers, d.TargetName),
		Context:    headerIndex(headers, d.TargetContext),
		Identifier: headerIndex(headers, d.IdentifierOut),
		Status:     headerIndex(headers, d.StatusOut),
	}, nil
}

// headerIndex finds a header ignoring surrounding whitespace.
func headerIndex(headers []string, name string) int {
	return slices.IndexFunc(headers, func(h string) bool {
		return strings.TrimSpace(h) == name
	})
}
