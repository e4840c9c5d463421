package valueobject

import "fmt"

// ScoringMethod tags which scorer produced a probability. It doubles as the
// scorer state reported by health checks.
type ScoringMethod struct {
	value string
}

var (
	ScoringMethodModel     = ScoringMethod{value: "model"}
	ScoringMethodHeuristic = ScoringMethod{value: "heuristic"}
)

// ScoringMethodFromString reconstructs a ScoringMethod from its string representation.
func ScoringMethodFromString(s string) (ScoringMethod, error) {
	switch s {
	case "model":
		return ScoringMethodModel, nil
	case "heuristic":
		return ScoringMethodHeuristic, nil
	default:
		return ScoringMethod{}, fmt.Errorf("invalid scoring method: %s", s)
	}
}

func (m ScoringMethod) String() string {
	return m.value
}

// IsModel reports whether the trained classifier is in use.
func (m ScoringMethod) IsModel() bool {
	return m == ScoringMethodModel
}
