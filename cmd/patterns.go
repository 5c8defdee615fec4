package cmd

import (
	"github.com/mergerisk/mergerisk/internal/outwriter"
	"github.com/mergerisk/mergerisk/internal/store"
	"github.com/spf13/cobra"
)

// patternsCmd prints the loaded conflict patterns and risk rules.
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show the loaded conflict patterns and risk rules.",
	Long: `Print the pattern and rule tables the analyzer scores with.

Tables load from the data directory; missing or unreadable files fall
back to the built-in defaults. Use this to verify what a run will
actually apply after editing the data files.

Examples:
  # Show the active tables
  mergerisk patterns

  # Show tables from a custom data directory
  mergerisk patterns --data-dir /etc/mergerisk`,
	Args:    cobra.NoArgs,
	PreRunE: localSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		tables := store.Load(cfg.DataDir)
		return outwriter.WriteTables(tables.Patterns, tables.Rules, cfg)
	},
}
