// Package triage turns patient vitals into model features, trains the
// triage classifier and evaluates it.
package triage

const (
	FieldAge                    = "Age"
	FieldGender                 = "Gender"
	FieldBodyTemperature        = "Body_Temperature"
	FieldHeartRate              = "Heart_Rate"
	FieldRespiratoryRate        = "Respiratory_Rate"
	FieldBloodPressureSystolic  = "Blood_Pressure_Systolic"
	FieldBloodPressureDiastolic = "Blood_Pressure_Diastolic"
	FieldOxygenSaturation       = "Oxygen_Saturation"
	FieldSymptomScore           = "Symptom_Score"

	FieldLabel = "Final_Triage_Label"
)

var featureFields = []string{
	FieldAge,
	FieldGender,
	FieldBodyTemperature,
	FieldHeartRate,
	FieldRespiratoryRate,
	FieldBloodPressureSystolic,
	FieldBloodPressureDiastolic,
	FieldOxygenSaturation,
	FieldSymptomScore,
}

// FeatureNames returns the feature columns in vector order.
func FeatureNames() []string {
	return append([]string(nil), featureFields...)
}

// Columns returns every column a training table must carry.
func Columns() []string {
	return append(FeatureNames(), FieldLabel)
}

// RawRecord maps field names to values as entered: ints or floats for vitals,
// a string token for Gender.
type RawRecord map[string]any
