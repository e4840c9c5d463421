package service

import (
	"github.com/shopspring/decimal"

	"github.com/strokeguard/strokeguard/internal/domain/model"
)

// Risk factor names reported by HeuristicScorer.
const (
	FactorAgeOver65       = "age_over_65"
	FactorAgeOver50       = "age_over_50"
	FactorAgeOver35       = "age_over_35"
	FactorHypertension    = "hypertension"
	FactorHeartDisease    = "heart_disease"
	FactorVeryHighGlucose = "very_high_glucose"
	FactorHighGlucose     = "high_glucose"
	FactorObese           = "obese"
	FactorOverweight      = "overweight"
	FactorSmoking         = "smoking"
)

var (
	heuristicBase = decimal.RequireFromString("0.10")
	heuristicCap  = decimal.RequireFromString("0.95")
)

type band struct {
	threshold float64
	weight    decimal.Decimal
	factor    string
}

// Bands are checked in order and the first strictly exceeded one applies.
var (
	ageBands = []band{
		{65, decimal.RequireFromString("0.30"), FactorAgeOver65},
		{50, decimal.RequireFromString("0.20"), FactorAgeOver50},
		{35, decimal.RequireFromString("0.10"), FactorAgeOver35},
	}
	glucoseBands = []band{
		{200, decimal.RequireFromString("0.15"), FactorVeryHighGlucose},
		{140, decimal.RequireFromString("0.10"), FactorHighGlucose},
	}
	bmiBands = []band{
		{30, decimal.RequireFromString("0.10"), FactorObese},
		{25, decimal.RequireFromString("0.05"), FactorOverweight},
	}

	hypertensionWeight = decimal.RequireFromString("0.20")
	heartDiseaseWeight = decimal.RequireFromString("0.25")
	smokingWeight      = decimal.RequireFromString("0.15")
)

// HeuristicOutput is the result of a rule-based assessment.
type HeuristicOutput struct {
	Probability float64
	Factors     []string
}

// HeuristicScorer is the additive rule set used when no trained classifier is
// available. It is pure and deterministic.
type HeuristicScorer struct{}

// NewHeuristicScorer creates a new HeuristicScorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score sums the base risk and every matching factor in exact decimal
// arithmetic, then caps the result at 0.95.
func (h *HeuristicScorer) Score(rec model.FeatureRecord) HeuristicOutput {
	score := heuristicBase
	factors := make([]string, 0, 6)

	add := func(w decimal.Decimal, factor string) {
		score = score.Add(w)
		factors = append(factors, factor)
	}
	addBand := func(v float64, bands []band) {
		for _, b := range bands {
			if v > b.threshold {
				add(b.weight, b.factor)
				return
			}
		}
	}

	addBand(rec.Age, ageBands)
	if rec.Hypertension == 1 {
		add(hypertensionWeight, FactorHypertension)
	}
	if rec.HeartDisease == 1 {
		add(heartDiseaseWeight, FactorHeartDisease)
	}
	addBand(rec.AvgGlucoseLevel, glucoseBands)
	if bmi, ok := rec.BMIValue(); ok {
		addBand(bmi, bmiBands)
	}
	switch rec.SmokingStatus {
	case "smokes", "formerly smoked":
		add(smokingWeight, FactorSmoking)
	}

	if score.GreaterThan(heuristicCap) {
		score = heuristicCap
	}

	return HeuristicOutput{
		Probability: score.InexactFloat64(),
		Factors:     factors,
	}
}
