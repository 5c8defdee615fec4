package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mergerisk/mergerisk/core"
	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/internal/history"
	"github.com/mergerisk/mergerisk/internal/outwriter"
	"github.com/mergerisk/mergerisk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg holds the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources
// (file, env, flags). Viper unmarshals into this struct.
var input = &contract.ConfigRawInput{}

// gitClient is the shared git process runner, built during setup.
var gitClient *contract.LocalGitClient

// rootCmd runs the merge conflict analysis. With no positional refs it
// compares HEAD~1 against HEAD; with two it compares BASE against TARGET.
var rootCmd = &cobra.Command{
	Use:   "mergerisk [base-ref target-ref]",
	Short: "Predict merge conflict risk before you merge.",
	Long: `Mergerisk inspects the diff between two Git refs and estimates how
likely the merge is to conflict, file by file.

Each changed file is scored from its change volume, file type, build
criticality, changed content, and change-region density, then the
per-file scores roll up into an overall probability with
recommendations and a suggested merge strategy.

Examples:
  # Compare the last commit against HEAD
  mergerisk

  # Compare a feature branch against main
  mergerisk main feature/login-fix

  # Machine-readable output for CI
  mergerisk main release/2.4 --format json -o report.json

  # Analyze without recording history
  mergerisk main topic --dry-run`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Args:               refArgs,
	PreRunE:            sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runAnalysis(rootCtx)
	},
}

// flagError classifies flag parse failures as invalid arguments so
// they exit with the same code as any other bad input.
func flagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v", contract.ErrInvalidArgument, err)
}

// refArgs accepts either zero refs (HEAD~1..HEAD) or exactly two.
func refArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("%w: expected zero or two refs, received %d", contract.ErrInvalidArgument, len(args))
	}
	return nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".mergerisk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("MERGERISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Set defaults in Viper
	viper.SetDefault("format", schema.TextOut)
	viper.SetDefault("score-threshold", contract.DefaultScoreThreshold)
	viper.SetDefault("max-files", contract.DefaultMaxFiles)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("color", "yes")
	viper.SetDefault("data-dir", contract.DefaultDataDir)
	viper.SetDefault("history-backend", schema.FileBackend)
	viper.SetDefault("history-file", contract.DefaultHistoryFile)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(ctx context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 2 {
		input.BaseRefStr = args[0]
		input.TargetRefStr = args[1]
	}
	input.RepoPathStr = viper.GetString("repo")

	// 4. Run all validation and complex parsing. This populates the
	// global 'cfg' from 'input'. The client starts with the default
	// timeout; the validated timeout is applied once known.
	gitClient = contract.NewLocalGitClient(contract.DefaultGitTimeout)
	if err := contract.ProcessAndValidate(ctx, cfg, gitClient, input); err != nil {
		return err
	}
	gitClient.Timeout = cfg.GitTimeout

	if cfg.Verbose {
		contract.InitVerboseLogging()
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// localSetup validates config for subcommands that never touch the
// repository, so they work outside a Git checkout.
func localSetup(_ *cobra.Command, _ []string) error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ProcessLocalOnly(cfg, input); err != nil {
		return err
	}
	if cfg.Verbose {
		contract.InitVerboseLogging()
	}
	return nil
}

// runAnalysis executes the analysis, writes the report, and records the
// run in history unless dry-run or the backend is disabled.
func runAnalysis(ctx context.Context) error {
	analysis, err := core.ExecuteAnalysis(ctx, cfg, gitClient)
	if err != nil {
		return err
	}

	if err := outwriter.WriteAnalysis(analysis, cfg); err != nil {
		return err
	}

	if !cfg.DryRun && cfg.HistoryBackend != schema.NoneBackend {
		if err := appendHistory(analysis); err != nil {
			// History is advisory; a write failure never fails the run.
			contract.LogWarn("could not record history", err)
		}
	}

	return nil
}

// appendHistory records the completed run in the configured backend.
func appendHistory(analysis *schema.ConflictAnalysis) error {
	recorder, err := history.Open(cfg.HistoryBackend, historyPath())
	if err != nil {
		return err
	}
	defer func() { _ = recorder.Close() }()

	record := history.NewRecord(analysis)
	record.ReportFile = cfg.OutputFile
	return recorder.Append(record)
}

// historyPath resolves the history file relative to the data dir.
// Absolute paths are honored as given.
func historyPath() string {
	if filepath.IsAbs(cfg.HistoryFile) {
		return cfg.HistoryFile
	}
	return filepath.Join(cfg.DataDir, cfg.HistoryFile)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
