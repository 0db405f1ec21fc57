// Package constants provides shared constants used throughout membermatch.
// This includes file permissions, default paths, default rule values and the
// names of the report sheets written next to the enriched ledger.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Rule defaults
const (
	// DefaultMaxIdentifierLength is the longest membercode accepted as valid.
	DefaultMaxIdentifierLength = 5

	// DefaultRuleSet is the name of the built-in rule set.
	DefaultRuleSet = "default"

	// DefaultPreviewRows is how many ledger rows the preview command shows.
	DefaultPreviewRows = 5
)

// Default column headers for the source roster.
const (
	DefaultSourceNameColumn       = "NAME"
	DefaultSourceContextColumn    = "CHN"
	DefaultSourceIdentifierColumn = "MEMBERCODE"
)

// Report sheet names written into the output workbook.
const (
	SheetReview     = "REVIEW"
	SheetSummary    = "RECONCILIATION_SUMMARY"
	SheetDecisions  = "DECISION_LOG"
	SheetDuplicates = "SOURCE_DUPLICATES"
)

// SummaryTotalLabel labels the total-row line of a summary.
const SummaryTotalLabel = "TOTAL_ROWS"

// Path constants
const (
	// DefaultHomeDir is the per-user directory for mappings, rules and history.
	DefaultHomeDir = "~/.membermatch"

	// DefaultMappingsFile stores named column mapping templates.
	DefaultMappingsFile = "mappings.yaml"

	// DefaultAuditDB stores run history.
	DefaultAuditDB = "history.db"

	// DefaultOutputDir receives enriched workbooks.
	DefaultOutputDir = "output"

	// DefaultOutputSuffix is appended to the input file name for the enriched copy.
	DefaultOutputSuffix = "_RECONCILED"
)

// Timeouts
const (
	// LockTimeout bounds how long a writer waits for the mappings file lock.
	LockTimeout = 5 * time.Second

	// LockRetryDelay is the poll interval while waiting for a lock.
	LockRetryDelay = 100 * time.Millisecond

	// ShutdownTimeout bounds graceful shutdown after a failed command.
	ShutdownTimeout = 5 * time.Second
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)
