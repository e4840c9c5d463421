package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/service"
)

func TestPreprocessor_Width(t *testing.T) {
	p := newSamplePreprocessor(t)
	assert.Equal(t, 23, p.Width())
	assert.Len(t, p.FeatureNames(), 23)
	assert.Equal(t, "gender_Female", p.FeatureNames()[3])
}

func TestPreprocessor_Transform(t *testing.T) {
	p := newSamplePreprocessor(t)
	vec := p.Transform(highRisk(t))
	require.Len(t, vec, p.Width())

	assert.InDelta(t, (67-43.23)/22.61, vec[0], 1e-12)
	assert.InDelta(t, (228.69-106.15)/45.28, vec[1], 1e-12)
	assert.InDelta(t, (36.6-28.89)/7.85, vec[2], 1e-12)

	// gender Male, hypertension 1, heart_disease 1, ever_married Yes,
	// Private, Urban, formerly smoked.
	want := []float64{
		0, 1, 0,
		0, 1,
		0, 1,
		0, 1,
		0, 0, 1, 0, 0,
		0, 1,
		0, 1, 0, 0,
	}
	assert.Equal(t, want, vec[3:])
}

func TestPreprocessor_MissingBMIUsesMedian(t *testing.T) {
	p := newSamplePreprocessor(t)
	vec := p.Transform(lowRisk(t).WithoutBMI())
	assert.InDelta(t, (28.1-28.89)/7.85, vec[2], 1e-12)
}

func TestPreprocessor_UnseenCategoryIsAllZero(t *testing.T) {
	p := newSamplePreprocessor(t)
	rec := lowRisk(t)
	rec.WorkType = "Astronaut"

	vec := p.Transform(rec)
	require.Len(t, vec, 23)
	// work_type block occupies positions 12..16.
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, vec[12:17])

	var sum float64
	for _, v := range vec[3:] {
		sum += v
	}
	assert.Equal(t, 6.0, sum, "every other categorical block still has exactly one indicator")
}

func TestPreprocessor_IsPureAndImmutable(t *testing.T) {
	num := sampleNumeric()
	cat := sampleCategorical()
	p, err := service.NewPreprocessor(num, cat)
	require.NoError(t, err)

	num[0].Mean = 1000
	cat[0].Categories[0] = "Changed"

	rec := highRisk(t)
	a := p.Transform(rec)
	b := p.Transform(rec)
	assert.Equal(t, a, b)
	assert.InDelta(t, (67-43.23)/22.61, a[0], 1e-12)
	assert.Equal(t, "Female", p.CategoricalColumns()[0].Categories[0])

	p.NumericColumns()[0].Mean = 5
	assert.Equal(t, 43.23, p.NumericColumns()[0].Mean)
}

func TestNewPreprocessor_Corrupt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn)
	}{
		{"missing numeric column", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			return n[:2], c
		}},
		{"unknown numeric column", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			n[0].Name = "height"
			return n, c
		}},
		{"zero scale", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			n[1].Scale = 0
			return n, c
		}},
		{"nan mean", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			n[2].Mean = math.NaN()
			return n, c
		}},
		{"empty categories", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			c[3].Categories = nil
			return n, c
		}},
		{"duplicate category", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			c[0].Categories = []string{"Male", "Male"}
			return n, c
		}},
		{"duplicate categorical column", func(n []service.NumericColumn, c []service.CategoricalColumn) ([]service.NumericColumn, []service.CategoricalColumn) {
			c[1].Name = "gender"
			return n, c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, c := tt.mutate(sampleNumeric(), sampleCategorical())
			_, err := service.NewPreprocessor(n, c)
			assert.ErrorIs(t, err, service.ErrTransformCorrupt)
		})
	}
}

func TestTransformError(t *testing.T) {
	err := &service.TransformError{Path: "models/preprocessor.json", Err: service.ErrTransformCorrupt}
	assert.ErrorIs(t, err, service.ErrTransformCorrupt)
	assert.Contains(t, err.Error(), "models/preprocessor.json")
}

func TestFitPreprocessor(t *testing.T) {
	bmi := func(v float64) *float64 { return &v }
	records := []model.FeatureRecord{
		{Gender: "Male", Age: 10, Hypertension: 0, HeartDisease: 0, EverMarried: "No", WorkType: "children", ResidenceType: "Urban", AvgGlucoseLevel: 100, BMI: bmi(20), SmokingStatus: "Unknown"},
		{Gender: "Female", Age: 20, Hypertension: 1, HeartDisease: 0, EverMarried: "Yes", WorkType: "Private", ResidenceType: "Rural", AvgGlucoseLevel: 200, BMI: nil, SmokingStatus: "smokes"},
		{Gender: "Female", Age: 30, Hypertension: 0, HeartDisease: 1, EverMarried: "Yes", WorkType: "Private", ResidenceType: "Urban", AvgGlucoseLevel: 300, BMI: bmi(30), SmokingStatus: "never smoked"},
	}

	p, err := service.FitPreprocessor(records)
	require.NoError(t, err)

	num := p.NumericColumns()
	assert.Equal(t, "age", num[0].Name)
	assert.Equal(t, 20.0, num[0].Median)
	assert.InDelta(t, 20.0, num[0].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(200.0/3), num[0].Scale, 1e-12)

	// bmi median of {20, 30} = 25 fills the missing row, so the imputed
	// column is {20, 25, 30}.
	assert.Equal(t, 25.0, num[2].Median)
	assert.InDelta(t, 25.0, num[2].Mean, 1e-12)

	cat := p.CategoricalColumns()
	assert.Equal(t, []string{"Female", "Male"}, cat[0].Categories)
	assert.Equal(t, []string{"0", "1"}, cat[1].Categories)
	assert.Equal(t, []string{"Private", "children"}, cat[4].Categories)
	assert.Equal(t, 3+2+2+2+2+2+2+3, p.Width())
}

func TestFitPreprocessor_ConstantColumnScaleOne(t *testing.T) {
	rec := model.FeatureRecord{Gender: "Male", Age: 40, EverMarried: "Yes", WorkType: "Private", ResidenceType: "Urban", AvgGlucoseLevel: 90, SmokingStatus: "smokes"}
	p, err := service.FitPreprocessor([]model.FeatureRecord{rec.WithBMI(22), rec.WithBMI(22)})
	require.NoError(t, err)
	for _, c := range p.NumericColumns() {
		assert.Equal(t, 1.0, c.Scale, c.Name)
	}
}

func TestFitPreprocessor_Errors(t *testing.T) {
	_, err := service.FitPreprocessor(nil)
	assert.Error(t, err)

	rec := model.FeatureRecord{Gender: "Male", Age: 40, EverMarried: "Yes", WorkType: "Private", ResidenceType: "Urban", AvgGlucoseLevel: 90, SmokingStatus: "smokes"}
	_, err = service.FitPreprocessor([]model.FeatureRecord{rec})
	assert.ErrorContains(t, err, "bmi")
}
