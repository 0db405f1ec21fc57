package status

import "maps"

// Labels maps a kind to the text written into the ledger's status column.
type Labels map[Kind]string

// DefaultLabels uses the kind names themselves.
func DefaultLabels() Labels {
	labels := make(Labels, len(Kinds()))
	for _, k := range Kinds() {
		labels[k] = string(k)
	}
	return labels
}

// Clone returns an independent copy.
func (l Labels) Clone() Labels {
	return maps.Clone(l)
}

// Classifier turns an internal outcome into the status a reviewer sees.
type Classifier struct {
	labels Labels
}

// NewClassifier returns a classifier using labels, falling back to the kind
// name for any kind without a label.
func NewClassifier(labels Labels) Classifier {
	return Classifier{labels: labels.Clone()}
}

// DisplayKind returns the kind to show for an outcome. A rejection reason
// overrides the internal kind: a row that resolved to not found because its
// only candidate was disqualified shows the disqualification instead.
func (c Classifier) DisplayKind(kind Kind, reason string) Kind {
	if r := Kind(reason); r.IsRejection() {
		return r
	}
	return kind
}

// Label returns the configured text for a kind.
func (c Classifier) Label(kind Kind) string {
	if label, ok := c.labels[kind]; ok && label != "" {
		return label
	}
	return string(kind)
}

// Display returns both the display kind and its label.
func (c Classifier) Display(kind Kind, reason string) (Kind, string) {
	shown := c.DisplayKind(kind, reason)
	return shown, c.Label(shown)
}
