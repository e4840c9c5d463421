package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
)

// InferenceContext is the immutable result of start-up loading. It is shared
// by every request without locking.
type InferenceContext struct {
	loadedAt     time.Time
	preprocessor *service.Preprocessor
	scorer       *service.RiskScorer
	transformErr error
	scorerErr    error
	reportID     string
}

// NewInferenceContext assembles a context directly. Bootstrap is the normal
// constructor; this one exists for callers that already hold the parts.
// A nil scorer selects the heuristic.
func NewInferenceContext(p *service.Preprocessor, scorer *service.RiskScorer, transformErr, scorerErr error) *InferenceContext {
	if scorer == nil {
		scorer = service.NewHeuristicRiskScorer(nil)
	}
	return &InferenceContext{
		loadedAt:     time.Now().UTC(),
		preprocessor: p,
		scorer:       scorer,
		transformErr: transformErr,
		scorerErr:    scorerErr,
	}
}

// Preprocessor returns the loaded transform, or nil.
func (c *InferenceContext) Preprocessor() *service.Preprocessor { return c.preprocessor }

// Scorer returns the selected scorer. It is never nil.
func (c *InferenceContext) Scorer() *service.RiskScorer { return c.scorer }

// TransformLoaded reports whether the preprocessing transform is available.
func (c *InferenceContext) TransformLoaded() bool { return c.preprocessor != nil }

// ScorerState reports which scorer variant is active.
func (c *InferenceContext) ScorerState() valueobject.ScoringMethod { return c.scorer.Method() }

// TransformErr is the reason the transform is unavailable, if any.
func (c *InferenceContext) TransformErr() error { return c.transformErr }

// ScorerErr is the reason the classifier is unavailable, if any.
func (c *InferenceContext) ScorerErr() error { return c.scorerErr }

// LoadedAt is when loading finished.
func (c *InferenceContext) LoadedAt() time.Time { return c.loadedAt }

// ReportID identifies the startup report, if one was produced.
func (c *InferenceContext) ReportID() string { return c.reportID }

// unavailable builds the error returned when predictions cannot be served.
func (c *InferenceContext) unavailable() error {
	cause := c.transformErr
	if cause == nil {
		cause = &service.TransformError{Err: errors.New("not loaded")}
	}
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, cause)
}
