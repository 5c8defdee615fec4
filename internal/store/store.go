// Package store loads the flat-file pattern, rule and repository
// configuration databases. Formats are whitespace-delimited with
// #-prefixed comment lines; trailing fields join into a free-text
// description. Tables are reloaded on every invocation and never cached
// across runs.
package store

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/schema"
	"go.uber.org/zap"
)

// Database file names inside the data directory.
const (
	PatternsFile   = "conflict_patterns.dat"
	RulesFile      = "risk_rules.dat"
	RepoConfigFile = "repository_config.dat"
)

// Tables is the in-memory pattern and rule store for one analysis run.
type Tables struct {
	Patterns []schema.ConflictPattern
	Rules    []schema.RiskRule
}

// Load reads the pattern and rule databases from dataDir. Missing files
// degrade to the built-in defaults; malformed lines are skipped with a
// verbose diagnostic. Loading never fails the run.
func Load(dataDir string) *Tables {
	t := &Tables{}
	t.Patterns = loadPatterns(filepath.Join(dataDir, PatternsFile))
	t.Rules = loadRules(filepath.Join(dataDir, RulesFile))
	return t
}

// LookupPattern finds the pattern for an extension, falling back to the
// wildcard entry. The second return is false when neither exists.
func (t *Tables) LookupPattern(extension string) (*schema.ConflictPattern, bool) {
	var wildcard *schema.ConflictPattern
	for i := range t.Patterns {
		if t.Patterns[i].Extension == extension {
			return &t.Patterns[i], true
		}
		if t.Patterns[i].Extension == schema.WildcardExtension && wildcard == nil {
			wildcard = &t.Patterns[i]
		}
	}
	if wildcard != nil {
		return wildcard, true
	}
	return nil, false
}

// loadPatterns parses the patterns database:
//
//	id extension probability base_score modifiers description...
func loadPatterns(path string) []schema.ConflictPattern {
	var patterns []schema.ConflictPattern
	forEachRecord(path, func(fields []string, line string) {
		if len(fields) < 6 {
			contract.Verbose().Debug("skipping pattern record",
				zap.String("line", line), zap.String("reason", "fewer than 6 fields"))
			return
		}
		prob, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			contract.Verbose().Debug("skipping pattern record",
				zap.String("line", line), zap.String("reason", "bad probability"))
			return
		}
		score, err := strconv.Atoi(fields[3])
		if err != nil {
			contract.Verbose().Debug("skipping pattern record",
				zap.String("line", line), zap.String("reason", "bad base score"))
			return
		}
		patterns = append(patterns, schema.ConflictPattern{
			ID:          fields[0],
			Extension:   strings.TrimPrefix(fields[1], "."),
			Probability: clamp01(prob),
			BaseScore:   score,
			Modifiers:   fields[4],
			Description: strings.Join(fields[5:], " "),
		})
	})
	if patterns == nil {
		return DefaultPatterns()
	}
	return patterns
}

// loadRules parses the rules database:
//
//	id condition_type condition_value risk_multiplier severity description...
func loadRules(path string) []schema.RiskRule {
	var rules []schema.RiskRule
	forEachRecord(path, func(fields []string, line string) {
		if len(fields) < 6 {
			contract.Verbose().Debug("skipping rule record",
				zap.String("line", line), zap.String("reason", "fewer than 6 fields"))
			return
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			contract.Verbose().Debug("skipping rule record",
				zap.String("line", line), zap.String("reason", "bad condition value"))
			return
		}
		mult, err := strconv.ParseFloat(fields[3], 64)
		if err != nil || mult < 0 {
			contract.Verbose().Debug("skipping rule record",
				zap.String("line", line), zap.String("reason", "bad risk multiplier"))
			return
		}
		rules = append(rules, schema.RiskRule{
			ID:             fields[0],
			ConditionType:  schema.ConditionType(strings.ToUpper(fields[1])),
			ConditionValue: value,
			RiskMultiplier: mult,
			Severity:       schema.Severity(strings.ToUpper(fields[4])),
			Description:    strings.Join(fields[5:], " "),
		})
	})
	if rules == nil {
		return DefaultRules()
	}
	return rules
}

// LoadRepositoryConfigs parses the repository configuration database:
//
//	repo_path branch_pattern exclude_patterns priority_files check_frequency last_check
func LoadRepositoryConfigs(dataDir string) []schema.RepositoryConfig {
	var configs []schema.RepositoryConfig
	forEachRecord(filepath.Join(dataDir, RepoConfigFile), func(fields []string, line string) {
		if len(fields) < 6 {
			contract.Verbose().Debug("skipping repository config record",
				zap.String("line", line), zap.String("reason", "fewer than 6 fields"))
			return
		}
		freq, err := strconv.Atoi(fields[4])
		if err != nil {
			freq = 0
		}
		last, err := strconv.ParseInt(fields[5], 10, 64)
		if err != nil {
			last = 0
		}
		configs = append(configs, schema.RepositoryConfig{
			RepoPath:        fields[0],
			BranchPattern:   fields[1],
			ExcludePatterns: fields[2],
			PriorityFiles:   fields[3],
			CheckFrequency:  freq,
			LastCheck:       last,
		})
	})
	return configs
}

// LookupRepositoryConfig finds the record for a repository path by exact
// match, else by the longest matching prefix.
func LookupRepositoryConfig(configs []schema.RepositoryConfig, repoPath string) (*schema.RepositoryConfig, bool) {
	var best *schema.RepositoryConfig
	bestLen := -1
	for i := range configs {
		if configs[i].RepoPath == repoPath {
			return &configs[i], true
		}
		if strings.HasPrefix(repoPath, configs[i].RepoPath) && len(configs[i].RepoPath) > bestLen {
			best = &configs[i]
			bestLen = len(configs[i].RepoPath)
		}
	}
	return best, best != nil
}

// forEachRecord streams non-comment, non-blank lines of a database file
// through fn as whitespace-split fields. A missing or unreadable file is
// not an error; callers fall back to defaults.
func forEachRecord(path string, fn func(fields []string, line string)) {
	f, err := os.Open(path)
	if err != nil {
		contract.Verbose().Debug("database file unavailable",
			zap.String("path", path), zap.Error(err))
		return
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(strings.Fields(line), line)
	}
}

// DefaultPatterns is the built-in pattern table used when no database
// file is present. Weights mirror the shipped conflict_patterns.dat.
func DefaultPatterns() []schema.ConflictPattern {
	return []schema.ConflictPattern{
		{ID: "native_c", Extension: "c", Probability: 0.6, BaseScore: 150, Modifiers: "none", Description: "C source files"},
		{ID: "native_h", Extension: "h", Probability: 0.6, BaseScore: 150, Modifiers: "none", Description: "C header files"},
		{ID: "native_cpp", Extension: "cpp", Probability: 0.6, BaseScore: 150, Modifiers: "none", Description: "C++ source files"},
		{ID: "native_java", Extension: "java", Probability: 0.6, BaseScore: 150, Modifiers: "none", Description: "Java source files"},
		{ID: "native_go", Extension: "go", Probability: 0.6, BaseScore: 150, Modifiers: "none", Description: "Go source files"},
		{ID: "build_mk", Extension: "mk", Probability: 0.8, BaseScore: 200, Modifiers: "build", Description: "Make fragments"},
		{ID: "docs_md", Extension: "md", Probability: 0.2, BaseScore: 50, Modifiers: "docs", Description: "Markdown documentation"},
		{ID: "plain_txt", Extension: "txt", Probability: 0.1, BaseScore: 30, Modifiers: "docs", Description: "Plain text files"},
		{ID: "fallback", Extension: schema.WildcardExtension, Probability: 0.4, BaseScore: 100, Modifiers: "none", Description: "Any other file"},
	}
}

// DefaultRules is the built-in rule table used when no database file is
// present.
func DefaultRules() []schema.RiskRule {
	return []schema.RiskRule{
		{ID: "cfg_risk", ConditionType: schema.ConditionConfiguration, ConditionValue: 0, RiskMultiplier: 1.4, Severity: schema.SeverityMedium, Description: "Configuration files drift between branches"},
		{ID: "build_risk", ConditionType: schema.ConditionBuildScript, ConditionValue: 0, RiskMultiplier: 1.5, Severity: schema.SeverityHigh, Description: "Build scripts break merges badly"},
		{ID: "large_change", ConditionType: schema.ConditionChangeFreq, ConditionValue: 500, RiskMultiplier: 1.2, Severity: schema.SeverityMedium, Description: "Very large change sets collide more often"},
		{ID: "large_file", ConditionType: schema.ConditionFileSize, ConditionValue: 100000, RiskMultiplier: 1.1, Severity: schema.SeverityLow, Description: "Large files accumulate overlapping edits"},
	}
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
