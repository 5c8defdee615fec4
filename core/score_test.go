package core

import (
	"testing"

	"github.com/mergerisk/mergerisk/internal/store"
	"github.com/mergerisk/mergerisk/schema"
	"github.com/stretchr/testify/assert"
)

// staticMetadata serves fixed file sizes to the rule engine.
type staticMetadata map[string]int64

func (m staticMetadata) SizeBytes(path string) (int64, bool) {
	size, ok := m[path]
	return size, ok
}

// patternsOnly builds tables with the default patterns and no rules, so
// tests isolate the factor under test.
func patternsOnly() *store.Tables {
	return &store.Tables{Patterns: store.DefaultPatterns()}
}

func TestVolumeBaseScore(t *testing.T) {
	tests := []struct {
		changes  int
		expected float64
	}{
		{0, 0.1},
		{5, 0.1},
		{6, 0.2},
		{20, 0.2},
		{21, 0.4},
		{50, 0.4},
		{51, 0.6},
		{100, 0.6},
		{101, 0.8},
		{5000, 0.8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, volumeBaseScore(tt.changes), "changes=%d", tt.changes)
	}
}

func TestScoreFileSmallSourceChange(t *testing.T) {
	// 3 changed lines in a C file: minimal volume times the 1.5 type weight.
	conflict := &schema.FileConflict{
		Path: "file1.c", Extension: "c",
		Additions: 2, Deletions: 1,
		ProximityFactor: 1.0,
	}
	score := ScoreFile(conflict, patternsOnly(), nil)

	assert.InDelta(t, 0.15, score, 0.001)
	assert.Equal(t, schema.SeverityLow, conflict.Severity)
	assert.Equal(t, "native_c", conflict.PatternID)
}

func TestScoreFileBuildCritical(t *testing.T) {
	// A Makefile doubles the base score regardless of extension weight.
	conflict := &schema.FileConflict{
		Path: "Makefile", Extension: schema.WildcardExtension,
		Additions: 3, Deletions: 0,
		ProximityFactor: 1.0,
	}
	score := ScoreFile(conflict, patternsOnly(), nil)

	assert.InDelta(t, 0.2, score, 0.001)
	assert.Equal(t, schema.SeverityLow, conflict.Severity)
}

func TestScoreFileContentPatterns(t *testing.T) {
	base := func(lines []string) float64 {
		conflict := &schema.FileConflict{
			Path: "notes.txt", Extension: "txt",
			Additions: 3, ProximityFactor: 1.0,
			ChangedLines: lines,
		}
		// Wildcard-free minimal table keeps the type weight at 1.
		tables := &store.Tables{Patterns: []schema.ConflictPattern{
			{ID: "flat", Extension: "txt", BaseScore: 100},
		}}
		return ScoreFile(conflict, tables, nil)
	}

	plain := base(nil)

	t.Run("entry point doubles", func(t *testing.T) {
		assert.InDelta(t, plain*2.0, base([]string{"int main(void) {"}), 0.001)
	})

	t.Run("preprocessor conditional", func(t *testing.T) {
		assert.InDelta(t, plain*1.5, base([]string{"#ifdef DEBUG"}), 0.001)
	})

	t.Run("declaration", func(t *testing.T) {
		assert.InDelta(t, plain*1.3, base([]string{"struct point {"}), 0.001)
	})

	t.Run("debt marker", func(t *testing.T) {
		assert.InDelta(t, plain*1.1, base([]string{"// TODO drop this"}), 0.001)
	})

	t.Run("each category applies once", func(t *testing.T) {
		lines := []string{"// TODO one", "// FIXME two", "// HACK three"}
		assert.InDelta(t, plain*1.1, base(lines), 0.001)
	})

	t.Run("categories stack", func(t *testing.T) {
		lines := []string{"int main(void) {", "#ifdef DEBUG"}
		assert.InDelta(t, plain*2.0*1.5, base(lines), 0.001)
	})
}

func TestScoreFileProximity(t *testing.T) {
	conflict := &schema.FileConflict{
		Path: "a.txt", Extension: "txt",
		Additions: 3, ProximityFactor: 1.3,
	}
	tables := &store.Tables{Patterns: []schema.ConflictPattern{
		{ID: "flat", Extension: "txt", BaseScore: 100},
	}}
	score := ScoreFile(conflict, tables, nil)
	assert.InDelta(t, 0.1*1.3, score, 0.001)
}

func TestScoreFileRules(t *testing.T) {
	t.Run("configuration rule", func(t *testing.T) {
		conflict := &schema.FileConflict{
			Path: "app.yaml", Extension: "yaml",
			Additions: 3, ProximityFactor: 1.0,
		}
		tables := &store.Tables{
			Patterns: []schema.ConflictPattern{{ID: "flat", Extension: "yaml", BaseScore: 100}},
			Rules: []schema.RiskRule{
				{ID: "cfg_risk", ConditionType: schema.ConditionConfiguration, RiskMultiplier: 1.4},
			},
		}
		assert.InDelta(t, 0.1*1.4, ScoreFile(conflict, tables, nil), 0.001)
	})

	t.Run("change frequency proxy", func(t *testing.T) {
		conflict := &schema.FileConflict{
			Path: "gen.txt", Extension: "txt",
			Additions: 600, ProximityFactor: 1.0,
		}
		tables := &store.Tables{
			Patterns: []schema.ConflictPattern{{ID: "flat", Extension: "txt", BaseScore: 100}},
			Rules: []schema.RiskRule{
				{ID: "large_change", ConditionType: schema.ConditionChangeFreq, ConditionValue: 500, RiskMultiplier: 1.2},
			},
		}
		assert.InDelta(t, 0.8*1.2, ScoreFile(conflict, tables, nil), 0.001)
	})

	t.Run("file size rule uses metadata", func(t *testing.T) {
		tables := &store.Tables{
			Patterns: []schema.ConflictPattern{{ID: "flat", Extension: "txt", BaseScore: 100}},
			Rules: []schema.RiskRule{
				{ID: "large_file", ConditionType: schema.ConditionFileSize, ConditionValue: 100000, RiskMultiplier: 1.1},
			},
		}
		meta := staticMetadata{"big.txt": 200000, "small.txt": 10}

		big := &schema.FileConflict{Path: "big.txt", Extension: "txt", Additions: 3, ProximityFactor: 1.0}
		assert.InDelta(t, 0.1*1.1, ScoreFile(big, tables, meta), 0.001)

		small := &schema.FileConflict{Path: "small.txt", Extension: "txt", Additions: 3, ProximityFactor: 1.0}
		assert.InDelta(t, 0.1, ScoreFile(small, tables, meta), 0.001)
	})
}

func TestScoreFileClamped(t *testing.T) {
	// Pile every multiplier on a huge build-critical change; the final
	// probability still lands in [0,1].
	conflict := &schema.FileConflict{
		Path: "core.mk", Extension: "mk",
		Additions: 300, Deletions: 150,
		ProximityFactor: 1.3 * 1.3,
		ChangedLines:    []string{"int main(void) {", "#ifdef X", "#include <y.h>", "TODO"},
	}
	score := ScoreFile(conflict, &store.Tables{
		Patterns: store.DefaultPatterns(),
		Rules:    store.DefaultRules(),
	}, nil)

	assert.Equal(t, 1.0, score)
	assert.Equal(t, schema.SeverityCritical, conflict.Severity)
}

func TestScoreFileMonotoneInVolume(t *testing.T) {
	previous := 0.0
	for _, changes := range []int{1, 10, 30, 70, 200} {
		conflict := &schema.FileConflict{
			Path: "a.c", Extension: "c",
			Additions: changes, ProximityFactor: 1.0,
		}
		score := ScoreFile(conflict, patternsOnly(), nil)
		assert.GreaterOrEqual(t, score, previous, "changes=%d", changes)
		previous = score
	}
}
