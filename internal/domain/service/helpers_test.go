package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/pkg/testutil"
)

func sampleNumeric() []service.NumericColumn {
	return []service.NumericColumn{
		{Name: "age", Median: 45, Mean: 43.23, Scale: 22.61},
		{Name: "avg_glucose_level", Median: 91.885, Mean: 106.15, Scale: 45.28},
		{Name: "bmi", Median: 28.1, Mean: 28.89, Scale: 7.85},
	}
}

func sampleCategorical() []service.CategoricalColumn {
	return []service.CategoricalColumn{
		{Name: "gender", Categories: []string{"Female", "Male", "Other"}},
		{Name: "hypertension", Categories: []string{"0", "1"}},
		{Name: "heart_disease", Categories: []string{"0", "1"}},
		{Name: "ever_married", Categories: []string{"No", "Yes"}},
		{Name: "work_type", Categories: []string{"Govt_job", "Never_worked", "Private", "Self-employed", "children"}},
		{Name: "Residence_type", Categories: []string{"Rural", "Urban"}},
		{Name: "smoking_status", Categories: []string{"Unknown", "formerly smoked", "never smoked", "smokes"}},
	}
}

func newSamplePreprocessor(t *testing.T) *service.Preprocessor {
	t.Helper()
	p, err := service.NewPreprocessor(sampleNumeric(), sampleCategorical())
	require.NoError(t, err)
	return p
}

func mustRecord(t *testing.T, raw map[string]any) model.FeatureRecord {
	t.Helper()
	rec, err := model.ValidateRecord(raw, model.ValidateOptions{})
	require.NoError(t, err)
	return rec
}

func highRisk(t *testing.T) model.FeatureRecord {
	return mustRecord(t, testutil.HighRiskPatient())
}

func lowRisk(t *testing.T) model.FeatureRecord {
	return mustRecord(t, testutil.LowRiskPatient())
}
