package ml

import (
	"errors"
	"fmt"
)

// FeatureRange is the observed [Min, Max] of one feature column.
type FeatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ComputeRanges returns per-column min/max over a feature matrix.
func ComputeRanges(features [][]float64) ([]FeatureRange, error) {
	if len(features) == 0 {
		return nil, errors.New("features is empty")
	}
	width := len(features[0])
	ranges := make([]FeatureRange, width)
	for i, row := range features {
		if len(row) != width {
			return nil, fmt.Errorf("row %d: %w", i, ErrFeatureMismatch)
		}
		for col, value := range row {
			if i == 0 {
				ranges[col] = FeatureRange{Min: value, Max: value}
				continue
			}
			if value < ranges[col].Min {
				ranges[col].Min = value
			}
			if value > ranges[col].Max {
				ranges[col].Max = value
			}
		}
	}
	return ranges, nil
}

// OutOfRange lists the column indices of vector that fall outside ranges.
func OutOfRange(vector []float64, ranges []FeatureRange) []int {
	var cols []int
	for col, value := range vector {
		if col >= len(ranges) {
			break
		}
		if value < ranges[col].Min || value > ranges[col].Max {
			cols = append(cols, col)
		}
	}
	return cols
}
