// Package schema has configs, models and constants for all parts of mergerisk.
package schema

import "time"

// Hunk represents one contiguous change region from a unified diff.
// Omitted counts in the header default to 1.
type Hunk struct {
	OldStart int // Starting line in the base version
	OldCount int // Number of lines in the base version
	NewStart int // Starting line in the merge version
	NewCount int // Number of lines in the merge version
}

// FileConflict represents the analyzed change state of a single file
// between two refs. It is created by the parser and finalized by the
// scoring engine; Probability and Severity are never set independently
// of each other.
type FileConflict struct {
	Path            string   `json:"path"`             // Relative path to the file in the repository
	Extension       string   `json:"extension"`        // Extension after the last dot, or "*" when absent
	Additions       int      `json:"additions"`        // Lines added on the merge branch
	Deletions       int      `json:"deletions"`        // Lines deleted on the merge branch
	HunkCount       int      `json:"hunks"`            // Number of change regions in the unified diff
	LineStart       int      `json:"line_start"`       // First changed line of the first hunk
	LineEnd         int      `json:"line_end"`         // Last changed line of the last hunk
	ProximityFactor float64  `json:"proximity_factor"` // Accumulated multiplier for adjacent hunks
	Probability     float64  `json:"probability"`      // Conflict probability, clamped to [0,1]
	Severity        Severity `json:"severity"`         // Discretized from Probability
	PatternID       string   `json:"pattern_id"`       // Matched conflict pattern, empty when none
	ChangedLines    []string `json:"-"`                // Added/removed content lines for pattern scans
}

// TotalChanges returns the combined added and deleted line count.
func (f *FileConflict) TotalChanges() int {
	return f.Additions + f.Deletions
}

// ConflictAnalysis is the aggregate result of one analysis run. It is
// owned exclusively by that run and never shared or mutated afterwards.
type ConflictAnalysis struct {
	RepoPath           string         `json:"repo_path"`
	BaseRef            string         `json:"base_ref"`
	TargetRef          string         `json:"target_ref"`
	Files              []FileConflict `json:"files"`
	FileCount          int            `json:"file_count"`
	TotalAdditions     int            `json:"total_additions"`
	TotalDeletions     int            `json:"total_deletions"`
	TotalHunks         int            `json:"total_hunks"`
	OverallProbability float64        `json:"overall_probability"`
	Recommendations    string         `json:"recommendations"`
	Strategy           string         `json:"strategy"`
}

// Distribution returns the number of files at each severity level.
func (a *ConflictAnalysis) Distribution() map[Severity]int {
	dist := map[Severity]int{
		SeverityLow:      0,
		SeverityMedium:   0,
		SeverityHigh:     0,
		SeverityCritical: 0,
	}
	for i := range a.Files {
		dist[a.Files[i].Severity]++
	}
	return dist
}

// HistoryRecord is one append-only entry in the analysis history log.
type HistoryRecord struct {
	Timestamp          time.Time
	RepoPath           string
	BranchName         string
	OverallProbability float64
	FileCount          int
	ConflictCount      int
	Status             HistoryStatus
	ReportFile         string // Optional trailing field
}

// SkippedLine is a typed diagnostic for parser input that did not match
// the expected shape. Skipped lines are tolerated, never errors; they
// surface only in verbose output.
type SkippedLine struct {
	Line   string
	Reason string
}
