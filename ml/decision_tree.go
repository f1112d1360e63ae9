package ml

import (
	"math/rand"
	"sort"
)

// DecisionTree is a CART classifier using gini impurity. Nodes are stored
// flat; child fields hold absolute indices into Nodes.
type DecisionTree struct {
	Nodes           []TreeNode `json:"nodes"`
	Classes         int        `json:"classes"`
	Width           int        `json:"width"`
	MaxDepth        int        `json:"max_depth"`
	MinSamplesSplit int        `json:"min_samples_split"`
	MaxFeatures     int        `json:"max_features"`
	Seed            int64      `json:"seed"`
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	ClassLabel int       `json:"class_label"`
	Proba      []float64 `json:"proba"`
	IsLeaf     bool      `json:"is_leaf"`
}

// NewDecisionTree returns an unfitted tree. maxDepth <= 0 grows until
// leaves are pure or smaller than minSamplesSplit.
func NewDecisionTree(maxDepth, minSamplesSplit int, seed int64) *DecisionTree {
	if minSamplesSplit < 2 {
		minSamplesSplit = DefaultMinSamplesSplit
	}
	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		Seed:            seed,
	}
}

func (dt *DecisionTree) Name() string { return ModelDecisionTree }

func (dt *DecisionTree) NumClasses() int { return dt.Classes }

func (dt *DecisionTree) Fit(features [][]float64, labels []int) error {
	numClasses, err := validateTrainingSet(features, labels)
	if err != nil {
		return err
	}
	sample := make([]int, len(features))
	for i := range sample {
		sample[i] = i
	}
	dt.grow(features, labels, sample, numClasses, rand.New(rand.NewSource(dt.Seed)))
	return nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	node, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	return node.ClassLabel, nil
}

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	node, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	proba := make([]float64, dt.Classes)
	copy(proba, node.Proba)
	return proba, nil
}

func (dt *DecisionTree) leaf(features []float64) (*TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return nil, ErrNotFitted
	}
	if len(features) != dt.Width {
		return nil, ErrFeatureMismatch
	}
	idx := 0
	for {
		node := &dt.Nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx <= 0 || idx >= len(dt.Nodes) {
			return nil, errInvalidTree
		}
	}
}

// grow fits the tree on the rows listed in sample. Repeated indices act as
// bootstrap weights.
func (dt *DecisionTree) grow(features [][]float64, labels []int, sample []int, numClasses int, rng *rand.Rand) {
	dt.Classes = numClasses
	dt.Width = len(features[0])
	dt.Nodes = dt.Nodes[:0]
	dt.buildNode(features, labels, sample, 0, rng)
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, sample []int, depth int, rng *rand.Rand) int {
	counts := classCounts(labels, sample, dt.Classes)
	idx := len(dt.Nodes)
	dt.Nodes = append(dt.Nodes, leafNode(counts, len(sample)))

	if (dt.MaxDepth > 0 && depth >= dt.MaxDepth) || len(sample) < dt.MinSamplesSplit || isPure(counts) {
		return idx
	}

	split, ok := dt.findBestSplit(features, labels, sample, counts, rng)
	if !ok {
		return idx
	}

	left, right := splitSample(features, sample, split.feature, split.threshold)
	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	leftIdx := dt.buildNode(features, labels, left, depth+1, rng)
	rightIdx := dt.buildNode(features, labels, right, depth+1, rng)

	node := &dt.Nodes[idx]
	node.IsLeaf = false
	node.FeatureIdx = split.feature
	node.Threshold = split.threshold
	node.LeftChild = leftIdx
	node.RightChild = rightIdx
	return idx
}

type candidateSplit struct {
	feature   int
	threshold float64
	impurity  float64
}

// findBestSplit scans features in random order until MaxFeatures of them
// have offered at least one usable threshold.
func (dt *DecisionTree) findBestSplit(features [][]float64, labels []int, sample []int, parent []int, rng *rand.Rand) (candidateSplit, bool) {
	order := rng.Perm(dt.Width)
	limit := dt.MaxFeatures
	if limit <= 0 || limit > dt.Width {
		limit = dt.Width
	}

	best := candidateSplit{feature: -1}
	visited := 0
	sorted := make([]int, len(sample))
	for _, featureIdx := range order {
		if visited >= limit {
			break
		}
		copy(sorted, sample)
		sort.SliceStable(sorted, func(a, b int) bool {
			return features[sorted[a]][featureIdx] < features[sorted[b]][featureIdx]
		})

		left := make([]int, dt.Classes)
		right := append([]int(nil), parent...)
		usable := false
		for i := 0; i < len(sorted)-1; i++ {
			label := labels[sorted[i]]
			left[label]++
			right[label]--

			current := features[sorted[i]][featureIdx]
			next := features[sorted[i+1]][featureIdx]
			if next <= current {
				continue
			}
			usable = true
			impurity := weightedGini(left, i+1, right, len(sorted)-i-1)
			if best.feature == -1 || impurity < best.impurity {
				best = candidateSplit{
					feature:   featureIdx,
					threshold: current + (next-current)/2,
					impurity:  impurity,
				}
			}
		}
		if usable {
			visited++
		}
	}
	return best, best.feature != -1
}

func splitSample(features [][]float64, sample []int, featureIdx int, threshold float64) (left, right []int) {
	for _, row := range sample {
		if features[row][featureIdx] <= threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	return left, right
}

func classCounts(labels []int, sample []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, row := range sample {
		counts[labels[row]]++
	}
	return counts
}

func leafNode(counts []int, total int) TreeNode {
	proba := make([]float64, len(counts))
	best := 0
	for class, count := range counts {
		if total > 0 {
			proba[class] = float64(count) / float64(total)
		}
		if count > counts[best] {
			best = class
		}
	}
	return TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: best,
		Proba:      proba,
		IsLeaf:     true,
	}
}

func weightedGini(left []int, leftTotal int, right []int, rightTotal int) float64 {
	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*gini(left, leftTotal) + float64(rightTotal)/total*gini(right, rightTotal)
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(total)
		impurity -= prob * prob
	}
	return impurity
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, count := range counts {
		if count > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
