package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusionMatrixAndReport(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 2, 2}
	yPred := []int{0, 1, 1, 1, 2, 0}

	cm := ConfusionMatrix(yTrue, yPred, 3)
	assert.Equal(t, [][]int{
		{1, 1, 0},
		{0, 2, 0},
		{1, 0, 1},
	}, cm)

	metrics := PerClassMetrics(cm)
	assert.InDelta(t, 0.5, metrics[0].Precision, 1e-9)
	assert.InDelta(t, 0.5, metrics[0].Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, metrics[1].Precision, 1e-9)
	assert.InDelta(t, 1.0, metrics[1].Recall, 1e-9)
	assert.InDelta(t, 0.8, metrics[1].F1, 1e-9)
	assert.InDelta(t, 1.0, metrics[2].Precision, 1e-9)
	assert.Equal(t, 2, metrics[2].Support)

	assert.InDelta(t, 4.0/6.0, Accuracy(yTrue, yPred), 1e-9)

	macro, weighted := Averages(metrics)
	assert.Equal(t, 6, macro.Support)
	assert.InDelta(t, (0.5+0.8+2.0/3.0)/3, macro.F1, 1e-9)
	assert.InDelta(t, macro.F1, weighted.F1, 1e-9)
}

func TestMacroF1UsesPresentLabels(t *testing.T) {
	// Class 2 never appears, so it must not drag the average down.
	yTrue := []int{0, 0, 1, 1}
	yPred := []int{0, 0, 1, 1}
	assert.InDelta(t, 1.0, MacroF1(yTrue, yPred, 3), 1e-9)

	assert.InDelta(t, 0.0, MacroF1(nil, nil, 3), 1e-9)
}

func TestBinaryROCAUC(t *testing.T) {
	auc, err := BinaryROCAUC([]bool{false, false, true, true}, []float64{0.1, 0.4, 0.35, 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-9)

	auc, err = BinaryROCAUC([]bool{false, true}, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, auc, 1e-9)

	_, err = BinaryROCAUC([]bool{true, true}, []float64{0.1, 0.2})
	assert.ErrorIs(t, err, ErrInsufficientClassCoverage)
}

func TestMacroROCAUC(t *testing.T) {
	yTrue := []int{0, 1, 2}
	proba := [][]float64{
		{0.8, 0.1, 0.1},
		{0.1, 0.8, 0.1},
		{0.1, 0.1, 0.8},
	}
	auc, err := MacroROCAUC(yTrue, proba, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, auc, 1e-9)
}

func TestMacroROCAUCCoverage(t *testing.T) {
	proba := [][]float64{{0.9, 0.1, 0}, {0.2, 0.8, 0}}

	_, err := MacroROCAUC([]int{0, 1}, proba, 3)
	assert.ErrorIs(t, err, ErrInsufficientClassCoverage)

	_, err = MacroROCAUC([]int{0, 1}, [][]float64{{1}, {1}}, 2)
	assert.ErrorIs(t, err, ErrInsufficientClassCoverage)

	_, err = MacroROCAUC([]int{0}, [][]float64{{1}}, 1)
	assert.ErrorIs(t, err, ErrInsufficientClassCoverage)
}
