// Package records defines the fixed-shape rows exchanged between the workbook
// layer and the reconciliation engine. Column lookup by header name happens
// once, at the workbook boundary; the engine only sees these structs.
package records

// SourceRecord is one row of the source-of-truth roster.
// Many records may share the same normalized name and context key.
type SourceRecord struct {
	// Row is the 1-based sheet row the record was read from.
	Row int `json:"row" yaml:"row"`
	// RawName is the name exactly as it appears in the roster.
	RawName string `json:"name" yaml:"name"`
	// ContextKey is the secondary identity (CHN) that must match alongside the name.
	ContextKey string `json:"context_key" yaml:"context_key"`
	// Identifier is the membercode candidate carried by this row.
	Identifier string `json:"identifier" yaml:"identifier"`
}

// TargetRow is one ledger row to enrich.
type TargetRow struct {
	Row        int    `json:"row" yaml:"row"`
	RawName    string `json:"name" yaml:"name"`
	ContextKey string `json:"context_key" yaml:"context_key"`
}
