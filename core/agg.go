package core

import (
	"strings"

	"github.com/mergerisk/mergerisk/schema"
)

// Severity inflation applied to the mean probability: each HIGH or
// CRITICAL file raises the overall estimate by up to 20%.
const severityFactorWeight = 0.2

// Recommendation clause thresholds. Clauses are independent and
// concatenate in fixed evaluation order so output stays reproducible.
const (
	recHighRiskBand    = 0.8
	recMediumRiskBand  = 0.5
	recManyHighFiles   = 3
	recManyChangedLine = 1000
	recDenseHunkAvg    = 5.0
)

// Merge strategy probability bands.
const (
	strategyManualBand   = 0.8
	strategyCarefulBand  = 0.5
	strategyStandardBand = 0.2
)

// Aggregate combines per-file conflicts into the final analysis:
// overall probability, recommendation text and merge strategy.
func Aggregate(files []schema.FileConflict) *schema.ConflictAnalysis {
	analysis := &schema.ConflictAnalysis{
		Files:     files,
		FileCount: len(files),
	}
	for i := range files {
		analysis.TotalAdditions += files[i].Additions
		analysis.TotalDeletions += files[i].Deletions
		analysis.TotalHunks += files[i].HunkCount
	}
	analysis.OverallProbability = overallProbability(files)
	analysis.Recommendations = buildRecommendations(analysis)
	analysis.Strategy = chooseStrategy(analysis)
	return analysis
}

// overallProbability is the mean file probability inflated by the share
// of high-severity files, clamped to [0,1]. An empty file set yields
// exactly 0.
func overallProbability(files []schema.FileConflict) float64 {
	if len(files) == 0 {
		return 0
	}
	var total float64
	highSeverity := 0
	for i := range files {
		total += files[i].Probability
		if files[i].Severity.AtLeast(schema.SeverityHigh) {
			highSeverity++
		}
	}
	mean := total / float64(len(files))
	if highSeverity > 0 {
		factor := 1.0 + severityFactorWeight*float64(highSeverity)/float64(len(files))
		mean *= factor
	}
	return clamp01(mean)
}

// buildRecommendations assembles the recommendation text from
// independently triggered clauses in fixed order.
func buildRecommendations(analysis *schema.ConflictAnalysis) string {
	dist := analysis.Distribution()
	criticalFiles := dist[schema.SeverityCritical]
	highFiles := dist[schema.SeverityHigh] + criticalFiles

	var sb strings.Builder

	switch {
	case analysis.OverallProbability >= recHighRiskBand:
		sb.WriteString("HIGH RISK: Consider rebasing or splitting merge. ")
	case analysis.OverallProbability >= recMediumRiskBand:
		sb.WriteString("MEDIUM RISK: Review changes carefully before merge. ")
	default:
		sb.WriteString("LOW RISK: Standard merge procedures should suffice. ")
	}

	if criticalFiles > 0 {
		sb.WriteString("Critical files detected - plan manual conflict resolution. ")
	}

	if highFiles > recManyHighFiles {
		sb.WriteString("Many high-risk files affected - consider incremental merge. ")
	}

	if analysis.TotalAdditions+analysis.TotalDeletions > recManyChangedLine {
		sb.WriteString("High change volume - run full test suite after merge. ")
	}

	if analysis.FileCount > 0 {
		avgHunks := float64(analysis.TotalHunks) / float64(analysis.FileCount)
		if avgHunks > recDenseHunkAvg {
			sb.WriteString("High change density - expect overlapping conflict regions. ")
		}
	}

	if hasBuildCriticalFile(analysis.Files) {
		sb.WriteString("Build system files modified - test thoroughly. ")
	}

	return strings.TrimSpace(sb.String())
}

// chooseStrategy picks one of four merge strategy tiers from the
// probability bands and the raw critical/high file counts. It is a
// coarser classification than the recommendation clauses and evaluated
// independently of them.
func chooseStrategy(analysis *schema.ConflictAnalysis) string {
	dist := analysis.Distribution()
	criticalFiles := dist[schema.SeverityCritical]
	highFiles := dist[schema.SeverityHigh] + criticalFiles

	switch {
	case analysis.OverallProbability >= strategyManualBand || criticalFiles > 0:
		return "Manual merge: resolve conflicts file by file with both authors present."
	case analysis.OverallProbability >= strategyCarefulBand || highFiles > 0:
		return "Careful merge: review each conflict region before committing."
	case analysis.OverallProbability >= strategyStandardBand:
		return "Standard merge: normal merge workflow with post-merge verification."
	default:
		return "Fast-forward merge: changes can be merged directly."
	}
}

// hasBuildCriticalFile reports whether any analyzed file is a
// build-system file, independent of its scored severity.
func hasBuildCriticalFile(files []schema.FileConflict) bool {
	for i := range files {
		if schema.IsBuildCritical(files[i].Path) {
			return true
		}
	}
	return false
}
