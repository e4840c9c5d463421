package model

// Wire keys for the ten patient attributes.
const (
	FieldGender          = "gender"
	FieldAge             = "age"
	FieldHypertension    = "hypertension"
	FieldHeartDisease    = "heart_disease"
	FieldEverMarried     = "ever_married"
	FieldWorkType        = "work_type"
	FieldResidenceType   = "residence_type"
	FieldAvgGlucoseLevel = "avg_glucose_level"
	FieldBMI             = "bmi"
	FieldSmokingStatus   = "smoking_status"

	// FieldResidenceTypeAlias is the spelling used by the stroke dataset header.
	FieldResidenceTypeAlias = "Residence_type"
)

// FieldOrder lists the wire keys in their canonical order.
var FieldOrder = []string{
	FieldGender,
	FieldAge,
	FieldHypertension,
	FieldHeartDisease,
	FieldEverMarried,
	FieldWorkType,
	FieldResidenceType,
	FieldAvgGlucoseLevel,
	FieldBMI,
	FieldSmokingStatus,
}

// FeatureRecord is one validated patient record. It is a value type; copies
// are independent and nothing in the scoring path mutates it.
type FeatureRecord struct {
	Gender          string
	Age             float64
	Hypertension    int
	HeartDisease    int
	EverMarried     string
	WorkType        string
	ResidenceType   string
	AvgGlucoseLevel float64
	// BMI is nil when the measurement is missing.
	BMI           *float64
	SmokingStatus string
}

// HasBMI reports whether a BMI measurement is present.
func (r FeatureRecord) HasBMI() bool {
	return r.BMI != nil
}

// BMIValue returns the BMI and whether it is present.
func (r FeatureRecord) BMIValue() (float64, bool) {
	if r.BMI == nil {
		return 0, false
	}
	return *r.BMI, true
}

// WithBMI returns a copy of r with the given BMI. The copy does not share
// storage with r.
func (r FeatureRecord) WithBMI(v float64) FeatureRecord {
	r.BMI = &v
	return r
}

// WithoutBMI returns a copy of r with BMI marked missing.
func (r FeatureRecord) WithoutBMI() FeatureRecord {
	r.BMI = nil
	return r
}

// Map returns the record in wire form. Missing BMI is omitted.
func (r FeatureRecord) Map() map[string]any {
	m := map[string]any{
		FieldGender:          r.Gender,
		FieldAge:             r.Age,
		FieldHypertension:    r.Hypertension,
		FieldHeartDisease:    r.HeartDisease,
		FieldEverMarried:     r.EverMarried,
		FieldWorkType:        r.WorkType,
		FieldResidenceType:   r.ResidenceType,
		FieldAvgGlucoseLevel: r.AvgGlucoseLevel,
		FieldSmokingStatus:   r.SmokingStatus,
	}
	if v, ok := r.BMIValue(); ok {
		m[FieldBMI] = v
	}
	return m
}
