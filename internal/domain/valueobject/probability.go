package valueobject

import (
	"math"

	"github.com/shopspring/decimal"
)

// Recommendation texts shown alongside a prediction.
const (
	RecommendationUrgent  = "Consult a doctor immediately"
	RecommendationMonitor = "Regular health monitoring recommended"
	RecommendationHealthy = "Maintain healthy lifestyle"
)

// ClampProbability confines p to [0, 1]. NaN maps to 0.
func ClampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// FormatPercentage renders p as a percentage with two decimals, e.g.
// 0.95 -> "95.00%". Rounding is half away from zero on the decimal value.
func FormatPercentage(p float64) string {
	return decimal.NewFromFloat(p).Shift(2).StringFixed(2) + "%"
}

// RecommendationFor maps a probability to advice text.
func RecommendationFor(p float64) string {
	switch {
	case p > 0.7:
		return RecommendationUrgent
	case p > 0.4:
		return RecommendationMonitor
	default:
		return RecommendationHealthy
	}
}
