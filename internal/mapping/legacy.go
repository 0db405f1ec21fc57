package mapping

import (
	"github.com/goccy/go-yaml"

	"github.com/agentstation/membermatch/pkg/errors"
)

// legacyMapping is one entry of a mappings.json file written by the older
// desktop tool.
type legacyMapping struct {
	RosterSheet   string `yaml:"cscs_sheet"`
	LedgerSheet   string `yaml:"ixtrac_sheet"`
	RosterName    string `yaml:"cscs_name"`
	Name          string `yaml:"name"`
	Context       string `yaml:"chn"`
	IdentifierOut string `yaml:"membercode_out"`
	StatusOut     string `yaml:"status_out"`
}

// ImportLegacy converts a mappings.json document (an object keyed by template
// name) into templates ordered by name. JSON is read as YAML. Every converted template is validated.
func ImportLegacy(data []byte, source string) ([]Mapping, error) {
	var legacy map[string]legacyMapping
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return nil, errors.WrapParse("json", source, err)
	}

	out := make([]Mapping, 0, len(legacy))
	for name, l := range legacy {
		m := Mapping{
			Name:          name,
			SourceSheet:   l.RosterSheet,
			TargetSheet:   l.LedgerSheet,
			SourceName:    l.RosterName,
			TargetName:    l.Name,
			TargetContext: l.Context,
			IdentifierOut: l.IdentifierOut,
			StatusOut:     l.StatusOut,
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sortByName(out)
	return out, nil
}
