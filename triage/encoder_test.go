package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeGender(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"F", 0},
		{"M", 1},
		{"", 1},
		{"X", 1},
		{"f", 1},
		{"Female", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeGender(tt.token), "token %q", tt.token)
	}
}

func TestNormalizeGender(t *testing.T) {
	assert.Equal(t, "F", NormalizeGender(" f "))
	assert.Equal(t, "M", NormalizeGender("m"))
	assert.Equal(t, "", NormalizeGender("   "))
}

func TestFitLabelEncoderRoundTrip(t *testing.T) {
	labels := []string{"Urgent", "Emergency", "Non-Urgent", "Urgent", "Emergency"}

	encoder, encoded := FitLabelEncoder(labels)
	assert.Equal(t, []string{"Emergency", "Non-Urgent", "Urgent"}, encoder.Classes)
	assert.Equal(t, []int{2, 0, 1, 2, 0}, encoded)

	for i, label := range labels {
		idx, err := encoder.Transform(label)
		require.NoError(t, err)
		assert.Equal(t, encoded[i], idx)

		back, err := encoder.Inverse(idx)
		require.NoError(t, err)
		assert.Equal(t, label, back)
	}
}

func TestFitLabelEncoderDeterministic(t *testing.T) {
	a, encodedA := FitLabelEncoder([]string{"b", "a", "c", "a"})
	b, encodedB := FitLabelEncoder([]string{"a", "c", "a", "b"})
	assert.Equal(t, a.Classes, b.Classes)
	assert.Equal(t, []int{1, 0, 2, 0}, encodedA)
	assert.Equal(t, []int{0, 2, 0, 1}, encodedB)
}

func TestLabelEncoderErrors(t *testing.T) {
	encoder, _ := FitLabelEncoder([]string{"a", "b"})

	_, err := encoder.Inverse(2)
	assert.ErrorIs(t, err, ErrUnknownClassIndex)
	_, err = encoder.Inverse(-1)
	assert.ErrorIs(t, err, ErrUnknownClassIndex)
	_, err = encoder.Transform("z")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestNewLabelEncoder(t *testing.T) {
	encoder, err := NewLabelEncoder([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, encoder.NumClasses())

	_, err = NewLabelEncoder([]string{"b", "a"})
	assert.Error(t, err)
	_, err = NewLabelEncoder([]string{"a", "a"})
	assert.Error(t, err)
	_, err = NewLabelEncoder(nil)
	assert.Error(t, err)
}

func validRecord() RawRecord {
	return RawRecord{
		FieldAge:                    54,
		FieldGender:                 "F",
		FieldBodyTemperature:        99.1,
		FieldHeartRate:              88,
		FieldRespiratoryRate:        18,
		FieldBloodPressureSystolic:  130,
		FieldBloodPressureDiastolic: 85,
		FieldOxygenSaturation:       97,
		FieldSymptomScore:           4,
	}
}

func TestEncodeRecord(t *testing.T) {
	vector, err := EncodeRecord(validRecord())
	require.NoError(t, err)
	assert.Equal(t, []float64{54, 0, 99.1, 88, 18, 130, 85, 97, 4}, vector)
	assert.Len(t, vector, len(FeatureNames()))
}

func TestEncodeRecordGenderDefault(t *testing.T) {
	record := validRecord()
	delete(record, FieldGender)
	vector, err := EncodeRecord(record)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vector[1])

	record[FieldGender] = "unknown"
	vector, err = EncodeRecord(record)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vector[1])
}

func TestEncodeRecordMissingField(t *testing.T) {
	for _, name := range FeatureNames() {
		if name == FieldGender {
			continue
		}
		record := validRecord()
		delete(record, name)
		_, err := EncodeRecord(record)
		assert.ErrorIs(t, err, ErrMissingField, name)
		assert.Contains(t, err.Error(), name)
	}
}

func TestEncodeRecordInvalidValue(t *testing.T) {
	record := validRecord()
	record[FieldHeartRate] = "fast"
	_, err := EncodeRecord(record)
	assert.ErrorIs(t, err, ErrInvalidValue)
}
