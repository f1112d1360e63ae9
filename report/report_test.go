package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalsfirst/db"
	"vitalsfirst/ml"
	"vitalsfirst/triage"
)

func sampleReport() *triage.Report {
	auc := 0.9375
	return &triage.Report{
		Accuracy:    0.8,
		MacroF1:     0.7778,
		MacroROCAUC: &auc,
		ConfusionMatrix: triage.ConfusionMatrix{
			Labels: []string{"Emergency", "Non-Urgent", "Urgent"},
			Counts: [][]int{{2, 0, 0}, {0, 1, 1}, {0, 0, 1}},
		},
		PerClass: []triage.ClassReport{
			{Label: "Emergency", ClassMetrics: ml.ClassMetrics{Precision: 1, Recall: 1, F1: 1, Support: 2}},
			{Label: "Non-Urgent", ClassMetrics: ml.ClassMetrics{Precision: 1, Recall: 0.5, F1: 0.6667, Support: 2}},
			{Label: "Urgent", ClassMetrics: ml.ClassMetrics{Precision: 0.5, Recall: 1, F1: 0.6667, Support: 1}},
		},
		TrainSize:  15,
		TestSize:   5,
		Stratified: true,
	}
}

func TestWriteTraining(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTraining(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Accuracy")
	assert.Contains(t, out, "0.8000")
	assert.Contains(t, out, "0.9375")
	assert.Contains(t, out, "stratified (15 train / 5 test)")
	assert.Contains(t, out, "Non-Urgent")
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "Confusion matrix")
	assert.NotContains(t, out, "warning:")
}

func TestWriteTrainingWithoutROCAUC(t *testing.T) {
	r := sampleReport()
	r.MacroROCAUC = nil
	r.Stratified = false
	r.Warnings = []string{"macro ROC-AUC unavailable: class missing from test partition"}

	var buf bytes.Buffer
	require.NoError(t, WriteTraining(&buf, r))

	out := buf.String()
	assert.Contains(t, out, unavailable)
	assert.Contains(t, out, "random (15 train / 5 test)")
	assert.Contains(t, out, "warning: macro ROC-AUC unavailable")
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, nil))
	assert.Contains(t, buf.String(), "No training runs recorded.")

	buf.Reset()
	auc := 0.91
	logs := []db.TrainingLog{
		{RunID: "0123456789abcdef", ModelName: ml.ModelRandomForest, Accuracy: 0.85, MacroF1: 0.8, MacroROCAUC: &auc, Stratified: true, DataPoints: 20, TrainedAt: time.Now()},
		{RunID: "short", ModelName: ml.ModelDecisionTree, Accuracy: 0.5, DataPoints: 4, TrainedAt: time.Now()},
	}
	require.NoError(t, WriteHistory(&buf, logs))

	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "0.9100")
	assert.Contains(t, out, unavailable)
	assert.Contains(t, out, ml.ModelDecisionTree)
}

func TestWritePredictions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePredictions(&buf, nil))
	assert.Contains(t, buf.String(), "No predictions recorded.")

	buf.Reset()
	logs := []db.PredictionLog{
		{PairID: "fedcba9876543210", PredictedLabel: "Urgent", Confidence: 0.725, PredictedAt: time.Now()},
	}
	require.NoError(t, WritePredictions(&buf, logs))
	assert.Contains(t, buf.String(), "Urgent")
	assert.Contains(t, buf.String(), "0.7250")
	assert.Contains(t, buf.String(), "fedcba98")
}
