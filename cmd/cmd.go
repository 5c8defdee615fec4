// Package cmd defines the command-line interface for mergerisk.
package cmd

import (
	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add subcommands to the root command
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetFlagErrorFunc(flagError)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("repo", "r", ".", "Path to the Git repository (resolved to its root)")
	rootCmd.PersistentFlags().StringP("format", "f", string(schema.TextOut), "Output format: text or json or csv or parquet")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Optional path to write output to")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print per-step diagnostics to stderr")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output (errors still print)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Analyze without recording history")
	rootCmd.PersistentFlags().Int("score-threshold", contract.DefaultScoreThreshold, "Score (0-100) at or above which a file is flagged")
	rootCmd.PersistentFlags().Int("max-files", contract.DefaultMaxFiles, "Maximum number of changed files to analyze")
	rootCmd.PersistentFlags().String("timeout", "", "Per-git-command timeout (e.g. 30s)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding pattern, rule, and repository config files")
	rootCmd.PersistentFlags().String("history-backend", string(schema.FileBackend), "History backend: file or sqlite or none")
	rootCmd.PersistentFlags().String("history-file", contract.DefaultHistoryFile, "History file (or sqlite database) path, relative to data-dir")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyCmd to Viper
	historyCmd.Flags().Int("limit", defaultHistoryLimit, "Number of history records to display (-1 = all)")
	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}
}
