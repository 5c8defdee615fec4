package schema

// Custom string types for type safety.
type (
	// Severity represents the four-level discretization of conflict probability.
	Severity string

	// OutputMode represents the format of the output.
	OutputMode string

	// HistoryStatus represents the outcome label recorded in the history log.
	HistoryStatus string

	// ConditionType represents the metadata category a risk rule applies to.
	ConditionType string

	// HistoryBackend represents the storage backend for the analysis history.
	HistoryBackend string
)

// All history backends supported.
const (
	FileBackend   HistoryBackend = "file" // default
	SQLiteBackend HistoryBackend = "sqlite"
	NoneBackend   HistoryBackend = "none"
)

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[HistoryBackend]struct{}{
	FileBackend:   {},
	SQLiteBackend: {},
	NoneBackend:   {},
}

// All severity levels supported, lowest to highest.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severity classification thresholds over the clamped probability.
const (
	CriticalThreshold = 0.9
	HighThreshold     = 0.7
	MediumThreshold   = 0.4
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All history statuses supported.
const (
	StatusSuccess  HistoryStatus = "SUCCESS"
	StatusWarning  HistoryStatus = "WARNING"
	StatusCritical HistoryStatus = "CRITICAL"
)

// History status thresholds over the overall probability.
const (
	StatusCriticalThreshold = 0.8
	StatusWarningThreshold  = 0.6
)

// All rule condition types supported.
const (
	ConditionFileSize      ConditionType = "FILE_SIZE"
	ConditionChangeFreq    ConditionType = "CHANGE_FREQUENCY"
	ConditionAuthorCount   ConditionType = "AUTHOR_COUNT"
	ConditionConfiguration ConditionType = "CONFIGURATION"
	ConditionBuildScript   ConditionType = "BUILD_SCRIPT"
)

// WildcardExtension matches any file when no exact extension entry exists.
// It is also the sentinel extension for paths without a dot and for
// hidden files.
const WildcardExtension = "*"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}

// severityRank orders severities for comparisons.
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}
