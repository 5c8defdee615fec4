package schema

// ConflictPattern describes per-extension conflict risk loaded from the
// patterns database. BaseScore is stored on a 0-100 scale at rest and
// divided by 100 when used as a type weight, so entries above 100 raise
// risk and entries below 100 lower it. Patterns are immutable once
// loaded and reloaded on every invocation.
type ConflictPattern struct {
	ID          string
	Extension   string // File extension without the dot, or "*" for the wildcard entry
	Probability float64
	BaseScore   int
	Modifiers   string
	Description string
}

// Weight converts the at-rest 0-100 base score into a multiplier.
func (p *ConflictPattern) Weight() float64 {
	return float64(p.BaseScore) / 100.0
}

// RiskRule is a conditional multiplier loaded from the rules database.
// Rules whose condition holds are applied cumulatively.
type RiskRule struct {
	ID             string
	ConditionType  ConditionType
	ConditionValue float64
	RiskMultiplier float64
	Severity       Severity
	Description    string
}

// RepositoryConfig describes per-repository analysis settings. Lookup is
// by exact path match, falling back to the longest matching prefix.
type RepositoryConfig struct {
	RepoPath        string
	BranchPattern   string
	ExcludePatterns string // Comma-separated path fragments
	PriorityFiles   string // Comma-separated path fragments
	CheckFrequency  int
	LastCheck       int64
}
