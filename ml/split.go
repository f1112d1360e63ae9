package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var ErrStratificationInfeasible = errors.New("stratified split infeasible")

// Split holds row indices of the train and test partitions.
type Split struct {
	Train      []int
	Test       []int
	Stratified bool
}

// TestSize returns ceil(n*ratio) clamped so that both partitions are non-empty.
func TestSize(n int, ratio float64) (int, error) {
	if n < 2 {
		return 0, fmt.Errorf("need at least 2 samples to split, got %d", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return 0, fmt.Errorf("test ratio must be in (0, 1), got %g", ratio)
	}
	size := int(math.Ceil(float64(n) * ratio))
	if size < 1 {
		size = 1
	}
	if size > n-1 {
		size = n - 1
	}
	return size, nil
}

// RandomSplit shuffles all rows with the given seed and cuts off the test partition.
func RandomSplit(n int, ratio float64, seed int64) (Split, error) {
	testSize, err := TestSize(n, ratio)
	if err != nil {
		return Split{}, err
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return Split{
		Train: perm[testSize:],
		Test:  perm[:testSize],
	}, nil
}

// StratifiedSplit keeps class proportions in both partitions and places at
// least one sample of every class on each side. It returns
// ErrStratificationInfeasible when a class has fewer than two samples or a
// partition is too small to hold every class.
func StratifiedSplit(labels []int, ratio float64, seed int64) (Split, error) {
	n := len(labels)
	testSize, err := TestSize(n, ratio)
	if err != nil {
		return Split{}, err
	}

	byClass := make(map[int][]int)
	for row, label := range labels {
		byClass[label] = append(byClass[label], row)
	}
	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	for _, class := range classes {
		if len(byClass[class]) < 2 {
			return Split{}, fmt.Errorf("%w: class %d has %d sample(s)", ErrStratificationInfeasible, class, len(byClass[class]))
		}
	}
	if testSize < len(classes) || n-testSize < len(classes) {
		return Split{}, fmt.Errorf("%w: %d classes do not fit a %d/%d split", ErrStratificationInfeasible, len(classes), n-testSize, testSize)
	}

	counts := make([]int, len(classes))
	for i, class := range classes {
		counts[i] = len(byClass[class])
	}
	alloc := allocateTest(counts, n, testSize)

	rng := rand.New(rand.NewSource(seed))
	split := Split{Stratified: true}
	for i, class := range classes {
		rows := append([]int(nil), byClass[class]...)
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		split.Test = append(split.Test, rows[:alloc[i]]...)
		split.Train = append(split.Train, rows[alloc[i]:]...)
	}
	rng.Shuffle(len(split.Train), func(a, b int) { split.Train[a], split.Train[b] = split.Train[b], split.Train[a] })
	rng.Shuffle(len(split.Test), func(a, b int) { split.Test[a], split.Test[b] = split.Test[b], split.Test[a] })
	return split, nil
}

// allocateTest distributes testSize rows across classes proportionally to
// counts, keeping each class within [1, count-1].
func allocateTest(counts []int, n, testSize int) []int {
	alloc := make([]int, len(counts))
	remainders := make([]float64, len(counts))
	assigned := 0
	for i, count := range counts {
		ideal := float64(testSize) * float64(count) / float64(n)
		alloc[i] = int(math.Floor(ideal))
		remainders[i] = ideal - float64(alloc[i])
		if alloc[i] < 1 {
			alloc[i] = 1
		}
		if alloc[i] > count-1 {
			alloc[i] = count - 1
		}
		assigned += alloc[i]
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for assigned < testSize {
		progressed := false
		for _, i := range order {
			if assigned == testSize {
				break
			}
			if alloc[i] < counts[i]-1 {
				alloc[i]++
				assigned++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	for assigned > testSize {
		progressed := false
		for j := len(order) - 1; j >= 0; j-- {
			i := order[j]
			if assigned == testSize {
				break
			}
			if alloc[i] > 1 {
				alloc[i]--
				assigned--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return alloc
}
