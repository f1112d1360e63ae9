package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vitalsfirst/artifact"
	"vitalsfirst/console"
	"vitalsfirst/predict"
)

var predictOnce bool

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict triage levels from vitals entered at the console",
	Long: `Prompts for the nine vitals of a patient and prints the predicted triage
level. Repeats until input ends unless --once is given.`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().BoolVar(&predictOnce, "once", false, "read a single record and exit")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	store := artifact.NewStore(artifactConfig())
	if _, err := store.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cached, err := artifact.NewCachedStore(store, 1, logger)
	if err != nil {
		return err
	}
	if err := cached.Watch(ctx); err != nil {
		logger.Warn("artifact watcher unavailable, reloading from disk on every prediction", zap.Error(err))
	}

	var opts []predict.Option
	if history := openHistory(); history != nil {
		defer history.Close()
		opts = append(opts, predict.WithHistory(history))
	}
	predictor := predict.New(cached, logger, opts...)

	prompter := console.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	if prompter.Interactive() {
		fmt.Fprintln(cmd.OutOrStdout(), "=== VitalsFirst: Console Triage Prediction ===\nPress Ctrl+D to quit.")
	}

	for {
		record, err := prompter.ReadRecord()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, console.ErrInput):
			if predictOnce {
				return err
			}
			cmd.PrintErrf("Input error: %v\n", err)
			continue
		case err != nil:
			return err
		}

		prediction, err := predictor.PredictOne(record)
		if err != nil {
			if predictOnce {
				return err
			}
			cmd.PrintErrf("Prediction failed: %v\n", err)
			continue
		}
		printPrediction(cmd, prediction)

		if predictOnce {
			return nil
		}
	}
}

func printPrediction(cmd *cobra.Command, p *predict.Prediction) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Predicted Triage Level: %s\n", p.Label)
	if verbose {
		labels := make([]string, 0, len(p.Probabilities))
		for label := range p.Probabilities {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(out, "  %-12s %.3f\n", label, p.Probabilities[label])
		}
	}
	if len(p.OutOfRange) > 0 {
		cmd.PrintErrf("Warning: %s outside the range seen in training\n", strings.Join(p.OutOfRange, ", "))
	}
}
