package testutil

import "maps"

// Raw patient records as they arrive over the wire. Each call returns a fresh
// map so tests may mutate it.

// HighRiskPatient is a 67 year old male smoker with hypertension and heart
// disease. The heuristic scorer clamps him to 0.95.
func HighRiskPatient() map[string]any {
	return map[string]any{
		"gender":            "Male",
		"age":               67.0,
		"hypertension":      1.0,
		"heart_disease":     1.0,
		"ever_married":      "Yes",
		"work_type":         "Private",
		"Residence_type":    "Urban",
		"avg_glucose_level": 228.69,
		"bmi":               36.6,
		"smoking_status":    "formerly smoked",
	}
}

// LowRiskPatient is a 25 year old non-smoker with no conditions. The
// heuristic scorer gives her the base probability of 0.10.
func LowRiskPatient() map[string]any {
	return map[string]any{
		"gender":            "Female",
		"age":               25.0,
		"hypertension":      0.0,
		"heart_disease":     0.0,
		"ever_married":      "No",
		"work_type":         "Private",
		"Residence_type":    "Rural",
		"avg_glucose_level": 85.0,
		"bmi":               22.0,
		"smoking_status":    "never smoked",
	}
}

// WithField returns a copy of record with key set to value.
func WithField(record map[string]any, key string, value any) map[string]any {
	out := maps.Clone(record)
	out[key] = value
	return out
}

// WithoutField returns a copy of record with key removed.
func WithoutField(record map[string]any, key string) map[string]any {
	out := maps.Clone(record)
	delete(out, key)
	return out
}
