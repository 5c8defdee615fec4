// Package parquet exports conflict analysis results to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/mergerisk/mergerisk/schema"
	"github.com/parquet-go/parquet-go"
)

// FileConflictRow is the columnar representation of a scored file.
// The Parquet schema is inferred from the struct tags.
type FileConflictRow struct {
	// AnalyzedAt is when the analysis ran (TIMESTAMP, nanosecond precision)
	AnalyzedAt time.Time `parquet:"analyzed_at,snappy"`

	// RepoPath is the repository root the analysis ran against
	RepoPath string `parquet:"repo_path,snappy"`

	// BaseRef and TargetRef identify the compared revisions
	BaseRef   string `parquet:"base_ref,snappy"`
	TargetRef string `parquet:"target_ref,snappy"`

	// FilePath is the path relative to the repository root
	FilePath string `parquet:"file_path,snappy"`

	// Extension is the classified file extension ("*" when unclassified)
	Extension string `parquet:"extension,snappy"`

	Additions int32 `parquet:"additions,snappy"`
	Deletions int32 `parquet:"deletions,snappy"`
	HunkCount int32 `parquet:"hunk_count,snappy"`

	// LineStart and LineEnd bound the changed region (nullable when no
	// unified diff detail was available)
	LineStart *int32 `parquet:"line_start,optional,snappy"`
	LineEnd   *int32 `parquet:"line_end,optional,snappy"`

	ProximityFactor float64 `parquet:"proximity_factor,snappy"`

	// Probability is the per-file conflict probability in [0,1]
	Probability float64 `parquet:"probability,snappy"`

	Severity string `parquet:"severity,snappy"`

	// PatternID is the ID of the matched conflict pattern (nullable when
	// the file matched no pattern)
	PatternID *string `parquet:"pattern_id,optional,snappy"`

	// OverallProbability is the run-level aggregate, repeated per row
	OverallProbability float64 `parquet:"overall_probability,snappy"`
}

// ConvertAnalysis flattens an analysis into one row per file.
func ConvertAnalysis(analysis *schema.ConflictAnalysis) []FileConflictRow {
	now := time.Now()
	rows := make([]FileConflictRow, len(analysis.Files))
	for i := range analysis.Files {
		f := &analysis.Files[i]
		row := FileConflictRow{
			AnalyzedAt:         now,
			RepoPath:           analysis.RepoPath,
			BaseRef:            analysis.BaseRef,
			TargetRef:          analysis.TargetRef,
			FilePath:           f.Path,
			Extension:          f.Extension,
			Additions:          int32(f.Additions),
			Deletions:          int32(f.Deletions),
			HunkCount:          int32(f.HunkCount),
			ProximityFactor:    f.ProximityFactor,
			Probability:        f.Probability,
			Severity:           string(f.Severity),
			OverallProbability: analysis.OverallProbability,
		}
		if f.HunkCount > 0 {
			start := int32(f.LineStart)
			end := int32(f.LineEnd)
			row.LineStart = &start
			row.LineEnd = &end
		}
		if f.PatternID != "" {
			id := f.PatternID
			row.PatternID = &id
		}
		rows[i] = row
	}
	return rows
}

// WriteAnalysis writes the analysis to a Parquet file at outputPath.
func WriteAnalysis(analysis *schema.ConflictAnalysis, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema inference comes from the FileConflictRow struct tags
	writer := parquet.NewGenericWriter[FileConflictRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(ConvertAnalysis(analysis)); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
