package ml

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInsufficientClassCoverage = errors.New("insufficient class coverage")

// ClassMetrics is one row of a classification report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// ConfusionMatrix counts (true, predicted) pairs; rows are true classes.
// Indices outside [0, numClasses) are ignored.
func ConfusionMatrix(yTrue, yPred []int, numClasses int) [][]int {
	cm := make([][]int, numClasses)
	for i := range cm {
		cm[i] = make([]int, numClasses)
	}
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= numClasses || p < 0 || p >= numClasses {
			continue
		}
		cm[t][p]++
	}
	return cm
}

// PerClassMetrics derives precision, recall and F1 per class from a
// confusion matrix. Zero denominators yield 0.
func PerClassMetrics(cm [][]int) []ClassMetrics {
	metrics := make([]ClassMetrics, len(cm))
	for class := range cm {
		truePositive := cm[class][class]
		support := 0
		for _, count := range cm[class] {
			support += count
		}
		predicted := 0
		for row := range cm {
			predicted += cm[row][class]
		}

		m := ClassMetrics{Support: support}
		if predicted > 0 {
			m.Precision = float64(truePositive) / float64(predicted)
		}
		if support > 0 {
			m.Recall = float64(truePositive) / float64(support)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		metrics[class] = m
	}
	return metrics
}

// Averages returns the unweighted and support-weighted means of metrics.
func Averages(metrics []ClassMetrics) (macro, weighted ClassMetrics) {
	if len(metrics) == 0 {
		return macro, weighted
	}
	total := 0
	for _, m := range metrics {
		macro.Precision += m.Precision
		macro.Recall += m.Recall
		macro.F1 += m.F1
		weighted.Precision += m.Precision * float64(m.Support)
		weighted.Recall += m.Recall * float64(m.Support)
		weighted.F1 += m.F1 * float64(m.Support)
		total += m.Support
	}
	n := float64(len(metrics))
	macro.Precision /= n
	macro.Recall /= n
	macro.F1 /= n
	macro.Support = total
	if total > 0 {
		weighted.Precision /= float64(total)
		weighted.Recall /= float64(total)
		weighted.F1 /= float64(total)
	}
	weighted.Support = total
	return macro, weighted
}

// MacroF1 averages F1 over the classes present in yTrue or yPred.
func MacroF1(yTrue, yPred []int, numClasses int) float64 {
	cm := ConfusionMatrix(yTrue, yPred, numClasses)
	metrics := PerClassMetrics(cm)
	present := make([]bool, numClasses)
	for i := range yTrue {
		if yTrue[i] >= 0 && yTrue[i] < numClasses {
			present[yTrue[i]] = true
		}
		if yPred[i] >= 0 && yPred[i] < numClasses {
			present[yPred[i]] = true
		}
	}
	sum, count := 0.0, 0
	for class, ok := range present {
		if ok {
			sum += metrics[class].F1
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MacroROCAUC computes the one-vs-rest ROC-AUC per class and averages it.
// Every class in [0, numClasses) must appear in yTrue and every probability
// row must cover numClasses, otherwise ErrInsufficientClassCoverage.
func MacroROCAUC(yTrue []int, proba [][]float64, numClasses int) (float64, error) {
	if numClasses < 2 {
		return 0, fmt.Errorf("%w: %d class(es)", ErrInsufficientClassCoverage, numClasses)
	}
	if len(yTrue) != len(proba) {
		return 0, errors.New("labels and probabilities size mismatch")
	}
	for _, row := range proba {
		if len(row) < numClasses {
			return 0, fmt.Errorf("%w: model scores %d of %d classes", ErrInsufficientClassCoverage, len(row), numClasses)
		}
	}

	sum := 0.0
	positive := make([]bool, len(yTrue))
	scores := make([]float64, len(yTrue))
	for class := 0; class < numClasses; class++ {
		for i, label := range yTrue {
			positive[i] = label == class
			scores[i] = proba[i][class]
		}
		auc, err := BinaryROCAUC(positive, scores)
		if err != nil {
			return 0, fmt.Errorf("class %d: %w", class, err)
		}
		sum += auc
	}
	return sum / float64(numClasses), nil
}

// BinaryROCAUC is the Mann-Whitney estimate of the area under the ROC curve.
// Tied scores receive their average rank.
func BinaryROCAUC(positive []bool, scores []float64) (float64, error) {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	nPos, nNeg := 0, 0
	rankSum := 0.0
	for i, pos := range positive {
		if pos {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, fmt.Errorf("%w: need positive and negative samples", ErrInsufficientClassCoverage)
	}
	return (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg)), nil
}
