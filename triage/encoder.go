package triage

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeGender trims and upper-cases a free-form gender entry.
func NormalizeGender(token string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(token))
}

// EncodeGender maps "F" to 0 and "M" to 1. Every other token, including an
// empty one, falls back to 1 ("M") instead of failing; callers that need a
// hard validation must check the token themselves.
func EncodeGender(token string) float64 {
	switch token {
	case "F":
		return 0
	case "M":
		return 1
	default:
		return 1
	}
}

// EncodeRecord builds the feature vector for one record. Gender may be
// absent; every other feature is required.
func EncodeRecord(raw RawRecord) ([]float64, error) {
	vector := make([]float64, 0, len(featureFields))
	for _, name := range featureFields {
		value, ok := raw[name]
		if name == FieldGender {
			token, _ := value.(string)
			vector = append(vector, EncodeGender(token))
			continue
		}
		if !ok || value == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		number, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
		}
		vector = append(vector, number)
	}
	return vector, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// LabelEncoder maps triage labels to dense class indices. Classes is sorted,
// so index assignment depends only on the set of labels seen.
type LabelEncoder struct {
	Classes []string
}

// FitLabelEncoder learns the label space and encodes labels against it.
func FitLabelEncoder(labels []string) (*LabelEncoder, []int) {
	classes := slices.Clone(labels)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	encoder := &LabelEncoder{Classes: classes}
	encoded := make([]int, len(labels))
	for i, label := range labels {
		encoded[i] = sort.SearchStrings(classes, label)
	}
	return encoder, encoded
}

// NewLabelEncoder restores an encoder from persisted classes, which must be
// sorted and unique.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrUnknownLabel)
	}
	for i := 1; i < len(classes); i++ {
		if classes[i-1] >= classes[i] {
			return nil, fmt.Errorf("classes not sorted and unique at %q", classes[i])
		}
	}
	return &LabelEncoder{Classes: slices.Clone(classes)}, nil
}

func (e *LabelEncoder) NumClasses() int {
	return len(e.Classes)
}

func (e *LabelEncoder) Transform(label string) (int, error) {
	idx := sort.SearchStrings(e.Classes, label)
	if idx >= len(e.Classes) || e.Classes[idx] != label {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return idx, nil
}

func (e *LabelEncoder) Inverse(index int) (string, error) {
	if index < 0 || index >= len(e.Classes) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrUnknownClassIndex, index, len(e.Classes))
	}
	return e.Classes[index], nil
}
