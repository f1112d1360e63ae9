package ml

import (
	"encoding/gob"
	"fmt"
)

const (
	ModelRandomForest = "random_forest"
	ModelDecisionTree = "decision_tree"
)

// Params holds the hyperparameters shared by the tree models.
// Zero values select the defaults.
type Params struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
	Progress        Progress
	// Interrupt is polled between estimators; a non-nil error aborts Fit
	// with that error.
	Interrupt func() error
}

const (
	DefaultNumTrees        = 120
	DefaultMinSamplesSplit = 2
	DefaultSeed            = 42
)

func init() {
	gob.Register(&RandomForest{})
	gob.Register(&DecisionTree{})
}

// NewClassifier builds an unfitted classifier of the given type.
func NewClassifier(modelType string, params Params) (Classifier, error) {
	switch modelType {
	case "", ModelRandomForest:
		forest := NewRandomForest(params.NumTrees, params.MaxDepth, params.MinSamplesSplit, params.Seed)
		forest.SetProgress(params.Progress)
		forest.SetInterrupt(params.Interrupt)
		return forest, nil
	case ModelDecisionTree:
		return NewDecisionTree(params.MaxDepth, params.MinSamplesSplit, params.Seed), nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}
