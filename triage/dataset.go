package triage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Dataset is an encoded training table.
type Dataset struct {
	Features [][]float64
	Labels   []int
	Encoder  *LabelEncoder
}

func (d *Dataset) Len() int {
	return len(d.Labels)
}

// ClassCounts returns the number of rows per class index.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.Encoder.NumClasses())
	for _, label := range d.Labels {
		counts[label]++
	}
	return counts
}

func LoadDatasetFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return LoadDataset(file)
}

// LoadDataset reads a CSV table with a header row. Columns are matched by
// name; extra columns are ignored. The first malformed row fails the load.
func LoadDataset(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRow, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range Columns() {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	var features [][]float64
	var labels []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)

		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		vector, err := EncodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		label := strings.TrimSpace(row[index[FieldLabel]])
		if label == "" {
			return nil, fmt.Errorf("%w: line %d: empty %s", ErrMalformedRow, line, FieldLabel)
		}
		features = append(features, vector)
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil, ErrEmptyDataset
	}

	encoder, encoded := FitLabelEncoder(labels)
	return &Dataset{
		Features: features,
		Labels:   encoded,
		Encoder:  encoder,
	}, nil
}

func parseRow(row []string, index map[string]int) (RawRecord, error) {
	record := make(RawRecord, len(featureFields))
	for _, name := range featureFields {
		cell := strings.TrimSpace(row[index[name]])
		if name == FieldGender {
			record[name] = NormalizeGender(cell)
			continue
		}
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("column %s: %q is not numeric", name, cell)
		}
		record[name] = value
	}
	return record, nil
}
