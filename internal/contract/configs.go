package contract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mergerisk/mergerisk/schema"
)

// Default values for configuration.
const (
	DefaultScoreThreshold = 70
	DefaultMaxFiles       = 10000
	DefaultPrecision      = 2
	DefaultDataDir        = "data"
	DefaultHistoryFile    = "analysis_history.dat"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath  string
	BaseRef   string
	TargetRef string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Verbose        bool
	Quiet          bool
	DryRun         bool
	ScoreThreshold int
	MaxFiles       int
	GitTimeout     time.Duration

	DataDir        string
	HistoryBackend schema.HistoryBackend
	HistoryFile    string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env,
// config file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tags
	BaseRefStr   string
	TargetRefStr string
	RepoPathStr  string

	Format         string `mapstructure:"format"`
	OutputFile     string `mapstructure:"output"`
	Verbose        bool   `mapstructure:"verbose"`
	Quiet          bool   `mapstructure:"quiet"`
	DryRun         bool   `mapstructure:"dry-run"`
	ScoreThreshold int    `mapstructure:"score-threshold"`
	MaxFiles       int    `mapstructure:"max-files"`
	Timeout        string `mapstructure:"timeout"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	DataDir        string `mapstructure:"data-dir"`
	HistoryBackend string `mapstructure:"history-backend"`
	HistoryFile    string `mapstructure:"history-file"`
}

// ProcessAndValidate performs all parsing and validation on the raw
// inputs and populates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return resolveRefs(ctx, cfg, client, input)
}

// ProcessLocalOnly validates the non-git inputs for subcommands that
// never touch the repository.
func ProcessLocalOnly(cfg *Config, input *ConfigRawInput) error {
	return validateSimpleInputs(cfg, input)
}

// validateSimpleInputs processes and validates all non-git fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.Quiet = input.Quiet
	cfg.DryRun = input.DryRun

	// --- 1. Format validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("%w: invalid format %q. must be text, json, csv, parquet", ErrInvalidArgument, input.Format)
	}

	// --- 2. Threshold validation ---
	if input.ScoreThreshold < 0 || input.ScoreThreshold > 100 {
		return fmt.Errorf("%w: score-threshold must be between 0 and 100 (received %d)", ErrInvalidArgument, input.ScoreThreshold)
	}
	cfg.ScoreThreshold = input.ScoreThreshold

	// --- 3. File bound validation ---
	if input.MaxFiles <= 0 {
		return fmt.Errorf("%w: max-files must be greater than 0 (received %d)", ErrInvalidArgument, input.MaxFiles)
	}
	cfg.MaxFiles = input.MaxFiles

	// --- 4. Precision validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("%w: precision must be between 1 and 4 (received %d)", ErrInvalidArgument, input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.Width = input.Width

	// --- 5. Timeout parsing ---
	if input.Timeout == "" {
		cfg.GitTimeout = DefaultGitTimeout
	} else {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid timeout %q (expected a positive duration like 30s)", ErrInvalidArgument, input.Timeout)
		}
		cfg.GitTimeout = d
	}

	// --- 6. Color parsing ---
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("%w: invalid --color value: %v", ErrInvalidArgument, err)
	}
	cfg.UseColors = colors

	// --- 7. Data dir and history backend ---
	cfg.DataDir = input.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.HistoryBackend = schema.HistoryBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("%w: invalid history backend %q. must be file, sqlite, none", ErrInvalidArgument, input.HistoryBackend)
	}
	cfg.HistoryFile = input.HistoryFile

	return nil
}

// resolveRepoPath confirms the path belongs to a Git repository and
// resolves it to the repository root. The working directory is never
// changed; the resolved root is threaded through every git call.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	contextPath := input.RepoPathStr
	if contextPath == "" {
		contextPath = "."
	}
	info, err := os.Stat(contextPath)
	if err != nil {
		return fmt.Errorf("%w: %q does not exist", ErrRepoNotFound, contextPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrRepoNotFound, contextPath)
	}
	root, err := client.GetRepoRoot(ctx, contextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = root
	return nil
}

// resolveRefs validates the two refs and confirms they resolve to commits.
// With no positional refs the run compares HEAD~1 against HEAD.
func resolveRefs(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	cfg.BaseRef = input.BaseRefStr
	cfg.TargetRef = input.TargetRefStr
	if cfg.BaseRef == "" && cfg.TargetRef == "" {
		cfg.BaseRef = "HEAD~1"
		cfg.TargetRef = "HEAD"
	}

	for _, ref := range []string{cfg.BaseRef, cfg.TargetRef} {
		if !ValidateBranchName(ref) {
			return fmt.Errorf("%w: invalid branch name %q", ErrInvalidArgument, ref)
		}
		exists, err := client.RefExists(ctx, cfg.RepoPath, ref)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %q does not resolve to a commit", ErrBranchNotFound, ref)
		}
	}
	return nil
}

// ParseBoolString converts yes/no style flag values into a bool.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "true", "1", "y", "on":
		return true, nil
	case "no", "false", "0", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected yes/no style value, got %q", s)
	}
}
