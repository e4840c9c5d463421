package service

import (
	"errors"
	"fmt"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
)

// ScoreInput carries what either scorer variant may need. Vector is ignored
// by the heuristic variant and may be nil there.
type ScoreInput struct {
	Record model.FeatureRecord
	Vector []float64
}

// RiskOutput is a probability together with the method that produced it.
type RiskOutput struct {
	Method      valueobject.ScoringMethod
	Factors     []string
	Probability float64
}

// RiskScorer is either backed by a trained classifier or by the heuristic
// rules. The variant is fixed at construction.
type RiskScorer struct {
	classifier Classifier
	heuristic  *HeuristicScorer
	method     valueobject.ScoringMethod
}

// NewModelScorer returns a scorer in the model state.
func NewModelScorer(c Classifier) (*RiskScorer, error) {
	if c == nil {
		return nil, errors.New("model scorer requires a classifier")
	}
	return &RiskScorer{classifier: c, method: valueobject.ScoringMethodModel}, nil
}

// NewHeuristicRiskScorer returns a scorer in the heuristic state.
func NewHeuristicRiskScorer(h *HeuristicScorer) *RiskScorer {
	if h == nil {
		h = NewHeuristicScorer()
	}
	return &RiskScorer{heuristic: h, method: valueobject.ScoringMethodHeuristic}
}

// Method reports the variant.
func (s *RiskScorer) Method() valueobject.ScoringMethod {
	return s.method
}

// NeedsVector reports whether Score requires a transformed feature vector.
func (s *RiskScorer) NeedsVector() bool {
	return s.method.IsModel()
}

// InputDim is the classifier's input width, or 0 in the heuristic state.
func (s *RiskScorer) InputDim() int {
	if s.classifier == nil {
		return 0
	}
	return s.classifier.InputDim()
}

// Score produces a probability in [0, 1].
func (s *RiskScorer) Score(in ScoreInput) (RiskOutput, error) {
	if !s.method.IsModel() {
		out := s.heuristic.Score(in.Record)
		return RiskOutput{
			Method:      s.method,
			Factors:     out.Factors,
			Probability: out.Probability,
		}, nil
	}

	p, err := s.classifier.PredictProba(in.Vector)
	if err != nil {
		return RiskOutput{}, fmt.Errorf("classifier: %w", err)
	}
	return RiskOutput{
		Method:      s.method,
		Probability: valueobject.ClampProbability(p),
	}, nil
}
