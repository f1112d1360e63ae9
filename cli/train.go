package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"vitalsfirst/artifact"
	"vitalsfirst/db"
	"vitalsfirst/ml"
	"vitalsfirst/report"
	"vitalsfirst/triage"
)

var (
	trainData  string
	trainTrees int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the triage model and save its artifacts",
	Long: `Loads the labelled vitals CSV, fits the classifier on a stratified split,
prints the evaluation report and writes the model and label encoder.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainData, "data", "", "training CSV (overrides data.path)")
	trainCmd.Flags().IntVar(&trainTrees, "trees", 0, "number of trees (overrides training.num_trees)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataPath := cfg.Data.Path
	if trainData != "" {
		dataPath = trainData
	}
	ds, err := triage.LoadDatasetFile(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded",
		zap.String("path", dataPath),
		zap.Int("rows", ds.Len()),
		zap.Strings("classes", ds.Encoder.Classes),
		zap.Ints("class_counts", ds.ClassCounts()))

	auditor := triage.NewAuditor()
	for _, issue := range auditor.Audit(ds) {
		logger.Warn("data quality", zap.String("rule", issue.Rule), zap.String("issue", issue.Message))
	}
	if stats := auditor.Stats(); stats.Flagged > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d rows flagged by the data audit; training on all rows\n", stats.Flagged, stats.Checked)
	}

	trainConfig := triage.TrainConfig{
		ModelType:       cfg.Training.ModelType,
		NumTrees:        cfg.Training.NumTrees,
		MaxDepth:        cfg.Training.MaxDepth,
		MinSamplesSplit: cfg.Training.MinSamplesSplit,
		TestRatio:       cfg.Training.TestRatio,
		Seed:            cfg.Training.Seed,
	}
	if trainTrees > 0 {
		trainConfig.NumTrees = trainTrees
	}

	trainer := triage.NewTrainer(trainConfig, logger)
	if trainConfig.ModelType == "" || trainConfig.ModelType == ml.ModelRandomForest {
		if bar := newProgressBar(cmd, trainConfig.NumTrees); bar != nil {
			trainer.WithProgress(bar)
		}
	}
	result, err := trainer.Train(ctx, ds)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	if err := report.WriteTraining(cmd.OutOrStdout(), result.Report); err != nil {
		return err
	}

	store := artifact.NewStore(artifactConfig())
	meta, err := store.Save(result.Model, ds.Encoder, result.Ranges)
	if err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Model saved to %s\n", store.Config().ModelPath())
	fmt.Fprintf(cmd.OutOrStdout(), "Label encoder saved to %s\n", store.Config().EncoderPath())

	recordRun(meta, result.Report, ds.Len())
	return nil
}

// newProgressBar returns nil unless stderr is a terminal.
func newProgressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	out, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !term.IsTerminal(int(out.Fd())) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("fitting trees"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func recordRun(meta *artifact.Metadata, r *triage.Report, rows int) {
	history := openHistory()
	if history == nil {
		return
	}
	defer history.Close()

	runID := uuid.NewString()
	err := history.SaveTrainingLog(db.TrainingLog{
		RunID:       runID,
		PairID:      meta.PairID,
		ModelName:   meta.ModelType,
		Accuracy:    r.Accuracy,
		MacroF1:     r.MacroF1,
		MacroROCAUC: r.MacroROCAUC,
		Stratified:  r.Stratified,
		TrainSize:   r.TrainSize,
		TestSize:    r.TestSize,
		DataPoints:  rows,
		TrainedAt:   time.Now(),
	})
	if err != nil {
		logger.Warn("failed to record training run", zap.Error(err))
		return
	}
	logger.Debug("training run recorded", zap.String("run_id", runID))
}
