package triage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vitalsfirst/ml"
)

type TrainConfig struct {
	ModelType       string
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	TestRatio       float64
	Seed            int64
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		ModelType:       ml.ModelRandomForest,
		NumTrees:        ml.DefaultNumTrees,
		MinSamplesSplit: ml.DefaultMinSamplesSplit,
		TestRatio:       0.2,
		Seed:            ml.DefaultSeed,
	}
}

type TrainResult struct {
	Model  ml.Classifier
	Report *Report
	// Ranges are the per-feature bounds of the training partition.
	Ranges []ml.FeatureRange
}

type Trainer struct {
	config   TrainConfig
	logger   *zap.Logger
	progress ml.Progress
}

func NewTrainer(config TrainConfig, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TestRatio == 0 {
		config.TestRatio = 0.2
	}
	return &Trainer{config: config, logger: logger}
}

// WithProgress reports one tick per fitted estimator to p.
func (t *Trainer) WithProgress(p ml.Progress) *Trainer {
	t.progress = p
	return t
}

// Train splits the dataset, fits a model on the train partition and
// evaluates it on the test partition.
func (t *Trainer) Train(ctx context.Context, ds *Dataset) (*TrainResult, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if ds.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrEmptyDataset, ds.Len())
	}

	var warnings []string
	split, err := ml.StratifiedSplit(ds.Labels, t.config.TestRatio, t.config.Seed)
	if errors.Is(err, ml.ErrStratificationInfeasible) {
		msg := fmt.Sprintf("one or more classes have too few samples, proceeding without stratify (%v)", err)
		t.logger.Warn(msg, zap.Ints("class_counts", ds.ClassCounts()))
		warnings = append(warnings, msg)
		split, err = ml.RandomSplit(ds.Len(), t.config.TestRatio, t.config.Seed)
	}
	if err != nil {
		return nil, fmt.Errorf("split dataset: %w", err)
	}
	trainX, trainY := subset(ds, split.Train)
	testX, testY := subset(ds, split.Test)
	t.logger.Info("dataset split",
		zap.Int("train", len(trainY)),
		zap.Int("test", len(testY)),
		zap.Bool("stratified", split.Stratified))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, err := ml.NewClassifier(t.config.ModelType, ml.Params{
		NumTrees:        t.config.NumTrees,
		MaxDepth:        t.config.MaxDepth,
		MinSamplesSplit: t.config.MinSamplesSplit,
		Seed:            t.config.Seed,
		Progress:        t.progress,
		Interrupt:       ctx.Err,
	})
	if err != nil {
		return nil, err
	}
	if err := model.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("fit %s: %w", model.Name(), err)
	}
	t.logger.Info("model fitted", zap.String("model", model.Name()), zap.Int("classes", model.NumClasses()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := Evaluate(model, ds.Encoder, testX, testY, t.logger)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if report.ROCAUCAvailable() && !coversAll(trainY, ds.Encoder.NumClasses()) {
		report.MacroROCAUC = nil
		report.addWarning(t.logger, "macro ROC-AUC unavailable: training partition lacks a class")
	}
	report.TrainSize = len(trainY)
	report.Stratified = split.Stratified
	report.Warnings = append(warnings, report.Warnings...)

	ranges, err := ml.ComputeRanges(trainX)
	if err != nil {
		return nil, err
	}
	return &TrainResult{Model: model, Report: report, Ranges: ranges}, nil
}

func subset(ds *Dataset, rows []int) ([][]float64, []int) {
	features := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		features[i] = ds.Features[row]
		labels[i] = ds.Labels[row]
	}
	return features, labels
}

func coversAll(labels []int, numClasses int) bool {
	seen := make([]bool, numClasses)
	count := 0
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			count++
		}
	}
	return count == numClasses
}
