package triage

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vitalsfirst/ml"
)

// ConfusionMatrix is indexed by label strings: Counts[true][predicted].
type ConfusionMatrix struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

type ClassReport struct {
	Label string `json:"label"`
	ml.ClassMetrics
}

// Report summarises a training run. MacroROCAUC is nil when the test
// partition cannot support it.
type Report struct {
	Accuracy        float64         `json:"accuracy"`
	MacroF1         float64         `json:"macro_f1"`
	MacroROCAUC     *float64        `json:"macro_roc_auc,omitempty"`
	ConfusionMatrix ConfusionMatrix `json:"confusion_matrix"`
	PerClass        []ClassReport   `json:"per_class"`
	MacroAvg        ml.ClassMetrics `json:"macro_avg"`
	WeightedAvg     ml.ClassMetrics `json:"weighted_avg"`
	TrainSize       int             `json:"train_size"`
	TestSize        int             `json:"test_size"`
	Stratified      bool            `json:"stratified"`
	Warnings        []string        `json:"warnings,omitempty"`
}

func (r *Report) ROCAUCAvailable() bool {
	return r.MacroROCAUC != nil
}

// Evaluate scores a fitted model on a held-out partition. An undefined
// ROC-AUC is recorded as a warning, not returned as an error.
func Evaluate(model ml.Classifier, encoder *LabelEncoder, features [][]float64, labels []int, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	numClasses := encoder.NumClasses()
	predicted := make([]int, len(features))
	proba := make([][]float64, len(features))
	for i, row := range features {
		p, err := model.PredictProba(row)
		if err != nil {
			return nil, fmt.Errorf("predict row %d: %w", i, err)
		}
		proba[i] = p
		predicted[i], err = model.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("predict row %d: %w", i, err)
		}
		if _, err := encoder.Inverse(predicted[i]); err != nil {
			return nil, err
		}
	}

	cm := ml.ConfusionMatrix(labels, predicted, numClasses)
	metrics := ml.PerClassMetrics(cm)
	macro, weighted := ml.Averages(metrics)

	report := &Report{
		Accuracy: ml.Accuracy(labels, predicted),
		MacroF1:  ml.MacroF1(labels, predicted, numClasses),
		ConfusionMatrix: ConfusionMatrix{
			Labels: append([]string(nil), encoder.Classes...),
			Counts: cm,
		},
		MacroAvg:    macro,
		WeightedAvg: weighted,
		TestSize:    len(labels),
	}
	for class, m := range metrics {
		report.PerClass = append(report.PerClass, ClassReport{Label: encoder.Classes[class], ClassMetrics: m})
	}

	auc, err := ml.MacroROCAUC(labels, proba, numClasses)
	switch {
	case err == nil:
		report.MacroROCAUC = &auc
	case errors.Is(err, ml.ErrInsufficientClassCoverage):
		report.addWarning(logger, "macro ROC-AUC unavailable: "+err.Error())
	default:
		return nil, fmt.Errorf("roc auc: %w", err)
	}
	return report, nil
}

func (r *Report) addWarning(logger *zap.Logger, msg string) {
	r.Warnings = append(r.Warnings, msg)
	logger.Warn(msg)
}
