package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"vitalsfirst/db"
	"vitalsfirst/report"
)

var (
	historyLimit       int
	historyPredictions bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded training runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries (0 for all)")
	historyCmd.Flags().BoolVar(&historyPredictions, "predictions", false, "show console predictions instead of training runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if cfg.Database.Path == "" {
		return errors.New("database.path is not configured")
	}
	history, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	if historyPredictions {
		logs, err := history.LoadPredictions(historyLimit)
		if err != nil {
			return err
		}
		return report.WritePredictions(cmd.OutOrStdout(), logs)
	}
	logs, err := history.LoadTrainingLog(historyLimit)
	if err != nil {
		return err
	}
	return report.WriteHistory(cmd.OutOrStdout(), logs)
}
