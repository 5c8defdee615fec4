package core

import (
	"context"
	"strings"

	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/internal/store"
	"github.com/mergerisk/mergerisk/schema"
)

// Volume band boundaries for the base score from additions+deletions.
const (
	volumeHuge   = 100 // > 100 changed lines
	volumeLarge  = 50
	volumeMedium = 20
	volumeSmall  = 5
)

// Base scores per volume band.
const (
	scoreHuge    = 0.8
	scoreLarge   = 0.6
	scoreMedium  = 0.4
	scoreSmall   = 0.2
	scoreMinimal = 0.1
)

// buildCriticalMultiplier applies to build-system filenames regardless
// of extension; build breakage is disproportionately costly.
const buildCriticalMultiplier = 2.0

// contentPattern is one risk phrase category scanned over changed lines.
// Each category multiplies in at most once per file.
type contentPattern struct {
	name       string
	multiplier float64
	match      func(line string) bool
}

// contentPatterns are evaluated in fixed order to keep scoring
// deterministic.
var contentPatterns = []contentPattern{
	{
		name:       "entry_point",
		multiplier: 2.0,
		match: func(line string) bool {
			return strings.Contains(line, "main(")
		},
	},
	{
		name:       "preprocessor_conditional",
		multiplier: 1.5,
		match: func(line string) bool {
			trimmed := strings.TrimSpace(line)
			for _, directive := range []string{"#if", "#ifdef", "#ifndef", "#else", "#endif"} {
				if strings.HasPrefix(trimmed, directive) {
					return true
				}
			}
			return false
		},
	},
	{
		name:       "declaration",
		multiplier: 1.3,
		match: func(line string) bool {
			trimmed := strings.TrimSpace(line)
			for _, keyword := range []string{"class ", "struct ", "func ", "function ", "def ", "import ", "#include"} {
				if strings.HasPrefix(trimmed, keyword) {
					return true
				}
			}
			return false
		},
	},
	{
		name:       "debt_marker",
		multiplier: 1.1,
		match: func(line string) bool {
			for _, marker := range []string{"TODO", "FIXME", "XXX", "HACK"} {
				if strings.Contains(line, marker) {
					return true
				}
			}
			return false
		},
	},
}

// FileMetadata exposes the observable metadata risk rules evaluate
// against. It decouples rule evaluation from the git gateway.
type FileMetadata interface {
	// SizeBytes returns the blob size of path at the target ref, or
	// false when unavailable.
	SizeBytes(path string) (int64, bool)
}

// gitFileMetadata resolves file sizes through the git gateway.
type gitFileMetadata struct {
	ctx      context.Context
	client   contract.GitClient
	repoPath string
	ref      string
}

func (g *gitFileMetadata) SizeBytes(path string) (int64, bool) {
	if g.client == nil {
		return 0, false
	}
	size, err := g.client.FileSize(g.ctx, g.repoPath, g.ref, path)
	if err != nil {
		return 0, false
	}
	return size, true
}

// ScoreFile computes the conflict probability for one file and finalizes
// its Probability, Severity and PatternID fields. Intermediate values
// may exceed 1; only the final value is clamped.
func ScoreFile(conflict *schema.FileConflict, tables *store.Tables, meta FileMetadata) float64 {
	// 1. Volume base score from change counts.
	score := volumeBaseScore(conflict.TotalChanges())

	// 2. File-type weight from the pattern table: exact extension first,
	// then the wildcard entry, otherwise unchanged.
	if pattern, ok := tables.LookupPattern(conflict.Extension); ok {
		score *= pattern.Weight()
		conflict.PatternID = pattern.ID
	}

	// 3. Build-system filenames override extension-level weighting.
	if schema.IsBuildCritical(conflict.Path) {
		score *= buildCriticalMultiplier
	}

	// 4. Content-pattern risk over added/removed lines.
	score *= contentRiskFactor(conflict.ChangedLines)

	// 5. Hunk proximity accumulated by the parser.
	if conflict.ProximityFactor > 0 {
		score *= conflict.ProximityFactor
	}

	// 6. Data-driven rules whose condition holds multiply cumulatively.
	score *= ruleFactor(conflict, tables.Rules, meta)

	// 7. Clamp and classify.
	score = clamp01(score)
	conflict.Probability = score
	conflict.Severity = schema.ClassifySeverity(score)
	return score
}

// volumeBaseScore maps total changed lines onto the banded base score.
// Monotone in the change count.
func volumeBaseScore(totalChanges int) float64 {
	switch {
	case totalChanges > volumeHuge:
		return scoreHuge
	case totalChanges > volumeLarge:
		return scoreLarge
	case totalChanges > volumeMedium:
		return scoreMedium
	case totalChanges > volumeSmall:
		return scoreSmall
	default:
		return scoreMinimal
	}
}

// contentRiskFactor scans changed lines for risk phrases. Each category
// contributes its multiplier at most once per file.
func contentRiskFactor(lines []string) float64 {
	factor := 1.0
	for _, pattern := range contentPatterns {
		for _, line := range lines {
			if pattern.match(line) {
				factor *= pattern.multiplier
				break
			}
		}
	}
	return factor
}

// ruleFactor evaluates the rule table against observable file metadata.
// Unknown or unevaluable condition types are skipped, not errors.
func ruleFactor(conflict *schema.FileConflict, rules []schema.RiskRule, meta FileMetadata) float64 {
	factor := 1.0
	lower := strings.ToLower(conflict.Path)
	for i := range rules {
		rule := &rules[i]
		switch rule.ConditionType {
		case schema.ConditionConfiguration:
			if schema.IsConfigurationFile(conflict.Path) {
				factor *= rule.RiskMultiplier
			}
		case schema.ConditionBuildScript:
			if schema.IsBuildCritical(conflict.Path) || strings.Contains(lower, "build") {
				factor *= rule.RiskMultiplier
			}
		case schema.ConditionChangeFreq:
			// Single-shot runs observe change volume, not commit
			// frequency; the change count is the working proxy.
			if float64(conflict.TotalChanges()) > rule.ConditionValue {
				factor *= rule.RiskMultiplier
			}
		case schema.ConditionFileSize:
			if meta != nil {
				if size, ok := meta.SizeBytes(conflict.Path); ok && float64(size) > rule.ConditionValue {
					factor *= rule.RiskMultiplier
				}
			}
		case schema.ConditionAuthorCount:
			// Not observable in a two-ref diff; skipped.
		}
	}
	return factor
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
