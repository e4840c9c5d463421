package dto

import (
	"time"

	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
)

// HeuristicNote is attached to responses produced without the classifier.
const HeuristicNote = "classifier unavailable, using heuristic approach"

// PredictionResponse is the output DTO for a single risk prediction.
type PredictionResponse struct {
	Factors        []string `json:"factors,omitempty" yaml:"factors,omitempty"`
	Percentage     string   `json:"percentage" yaml:"percentage"`
	Method         string   `json:"method" yaml:"method"`
	RiskTier       string   `json:"risk_tier" yaml:"risk_tier"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Note           string   `json:"note,omitempty" yaml:"note,omitempty"`
	Probability    float64  `json:"probability" yaml:"probability"`
}

// FromRiskOutput shapes a scorer result into the response DTO.
func FromRiskOutput(out service.RiskOutput) PredictionResponse {
	p := valueobject.ClampProbability(out.Probability)
	resp := PredictionResponse{
		Probability:    p,
		Percentage:     valueobject.FormatPercentage(p),
		Method:         out.Method.String(),
		RiskTier:       valueobject.RiskTierFromProbability(p).String(),
		Recommendation: valueobject.RecommendationFor(p),
		Factors:        out.Factors,
	}
	if !out.Method.IsModel() {
		resp.Note = HeuristicNote
	}
	return resp
}

// HealthResponse reports which artifacts are loaded. The two flags are
// independent.
type HealthResponse struct {
	LoadedAt        time.Time `json:"loaded_at" yaml:"loaded_at"`
	ScorerState     string    `json:"scorer_state" yaml:"scorer_state"`
	TransformError  string    `json:"transform_error,omitempty" yaml:"transform_error,omitempty"`
	ScorerError     string    `json:"scorer_error,omitempty" yaml:"scorer_error,omitempty"`
	InputWidth      int       `json:"input_width,omitempty" yaml:"input_width,omitempty"`
	TransformLoaded bool      `json:"transform_loaded" yaml:"transform_loaded"`
	ModelLoaded     bool      `json:"model_loaded" yaml:"model_loaded"`

	// Dependencies maps optional backing services to "ok" or the probe error.
	Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// StatusResponse is the service banner served at the root path.
type StatusResponse struct {
	Message            string `json:"message" yaml:"message"`
	Status             string `json:"status" yaml:"status"`
	PreprocessorLoaded bool   `json:"preprocessor_loaded" yaml:"preprocessor_loaded"`
	ModelLoaded        bool   `json:"model_loaded" yaml:"model_loaded"`
}
