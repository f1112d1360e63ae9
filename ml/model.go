package ml

import "errors"

var (
	ErrNotFitted        = errors.New("model not fitted")
	ErrEmptyTrainingSet = errors.New("features or labels empty")
	ErrFeatureMismatch  = errors.New("feature vector length mismatch")

	errInvalidTree = errors.New("invalid tree state")
)

// Classifier is a multi-class model over fixed-length feature vectors.
// Class indices are dense, 0..NumClasses()-1.
type Classifier interface {
	Name() string
	Fit(features [][]float64, labels []int) error
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
	NumClasses() int
}

// Progress receives one tick per fitted estimator.
type Progress interface {
	Add(n int) error
}

func validateTrainingSet(features [][]float64, labels []int) (numClasses int, err error) {
	if len(features) == 0 || len(labels) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if len(features) != len(labels) {
		return 0, errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return 0, ErrFeatureMismatch
	}
	for i, row := range features {
		if len(row) != width {
			return 0, ErrFeatureMismatch
		}
		if labels[i] < 0 {
			return 0, errors.New("labels must be non-negative class indices")
		}
		if labels[i]+1 > numClasses {
			numClasses = labels[i] + 1
		}
	}
	return numClasses, nil
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
