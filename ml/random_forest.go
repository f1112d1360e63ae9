package ml

import (
	"math"
	"math/rand"
)

// RandomForest averages the class probabilities of bootstrapped trees.
// Each split considers sqrt(width) candidate features.
type RandomForest struct {
	Trees           []*DecisionTree `json:"trees"`
	NumTrees        int             `json:"num_trees"`
	MaxDepth        int             `json:"max_depth"`
	MinSamplesSplit int             `json:"min_samples_split"`
	Seed            int64           `json:"seed"`
	Classes         int             `json:"classes"`

	progress  Progress
	interrupt func() error
}

func NewRandomForest(numTrees, maxDepth, minSamplesSplit int, seed int64) *RandomForest {
	if numTrees <= 0 {
		numTrees = DefaultNumTrees
	}
	if minSamplesSplit < 2 {
		minSamplesSplit = DefaultMinSamplesSplit
	}
	return &RandomForest{
		NumTrees:        numTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		Seed:            seed,
	}
}

// SetProgress registers a sink ticked once per fitted tree. It is not persisted.
func (rf *RandomForest) SetProgress(p Progress) {
	rf.progress = p
}

// SetInterrupt registers a check run before each tree. Fit stops with its
// error and leaves the forest unfitted.
func (rf *RandomForest) SetInterrupt(check func() error) {
	rf.interrupt = check
}

func (rf *RandomForest) Name() string { return ModelRandomForest }

func (rf *RandomForest) NumClasses() int { return rf.Classes }

func (rf *RandomForest) Fit(features [][]float64, labels []int) error {
	numClasses, err := validateTrainingSet(features, labels)
	if err != nil {
		return err
	}
	width := len(features[0])
	maxFeatures := int(math.Sqrt(float64(width)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(rf.Seed))
	trees := make([]*DecisionTree, 0, rf.NumTrees)
	sample := make([]int, len(features))
	for i := 0; i < rf.NumTrees; i++ {
		if rf.interrupt != nil {
			if err := rf.interrupt(); err != nil {
				return err
			}
		}
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		for j := range sample {
			sample[j] = treeRng.Intn(len(features))
		}
		tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit, rf.Seed)
		tree.MaxFeatures = maxFeatures
		tree.grow(features, labels, sample, numClasses, treeRng)
		trees = append(trees, tree)
		if rf.progress != nil {
			_ = rf.progress.Add(1)
		}
	}

	rf.Trees = trees
	rf.Classes = numClasses
	return nil
}

func (rf *RandomForest) Predict(features []float64) (int, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, ErrNotFitted
	}
	proba := make([]float64, rf.Classes)
	for _, tree := range rf.Trees {
		treeProba, err := tree.PredictProba(features)
		if err != nil {
			return nil, err
		}
		for class, p := range treeProba {
			proba[class] += p
		}
	}
	for class := range proba {
		proba[class] /= float64(len(rf.Trees))
	}
	return proba, nil
}
