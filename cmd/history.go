package cmd

import (
	"github.com/mergerisk/mergerisk/internal/history"
	"github.com/mergerisk/mergerisk/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultHistoryLimit bounds the history listing unless overridden.
const defaultHistoryLimit = 20

// historyCmd lists recorded analysis runs, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded analysis runs.",
	Long: `List past analysis runs from the configured history backend.

Each record carries the repository, the analyzed branch, the overall
conflict probability, the file and conflict counts, and the run status.

Examples:
  # Show the last 20 runs
  mergerisk history

  # Show every recorded run
  mergerisk history --limit -1

  # Read from a sqlite history database
  mergerisk history --history-backend sqlite --history-file history.db`,
	Args:    cobra.NoArgs,
	PreRunE: localSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		recorder, err := history.Open(cfg.HistoryBackend, historyPath())
		if err != nil {
			return err
		}
		defer func() { _ = recorder.Close() }()

		records, err := recorder.Recent(viper.GetInt("limit"))
		if err != nil {
			return err
		}
		return outwriter.WriteHistory(records, cfg)
	},
}
