package valueobject

import "fmt"

// RiskTier is an immutable value object representing the coarse risk band
// reported to callers.
type RiskTier struct {
	value string
}

var (
	RiskTierLow      = RiskTier{value: "LOW"}
	RiskTierModerate = RiskTier{value: "MODERATE"}
	RiskTierHigh     = RiskTier{value: "HIGH"}
)

// RiskTierFromString reconstructs a RiskTier from its string representation.
func RiskTierFromString(s string) (RiskTier, error) {
	switch s {
	case "LOW":
		return RiskTierLow, nil
	case "MODERATE":
		return RiskTierModerate, nil
	case "HIGH":
		return RiskTierHigh, nil
	default:
		return RiskTier{}, fmt.Errorf("invalid risk tier: %s", s)
	}
}

// RiskTierFromProbability bands a probability. Both thresholds are strict:
// exactly 0.5 is MODERATE and exactly 0.3 is LOW.
func RiskTierFromProbability(p float64) RiskTier {
	switch {
	case p > 0.5:
		return RiskTierHigh
	case p > 0.3:
		return RiskTierModerate
	default:
		return RiskTierLow
	}
}

// String returns the string representation.
func (t RiskTier) String() string {
	return t.value
}

// IsZero returns true if the tier has not been set.
func (t RiskTier) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another RiskTier.
func (t RiskTier) Equal(other RiskTier) bool {
	return t.value == other.value
}
