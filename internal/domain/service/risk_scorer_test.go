package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
)

type stubClassifier struct {
	err error
	dim int
	p   float64
}

func (s stubClassifier) InputDim() int { return s.dim }

func (s stubClassifier) PredictProba(features []float64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(features) != s.dim {
		return 0, service.ErrInputWidth
	}
	return s.p, nil
}

func TestRiskScorer_Heuristic(t *testing.T) {
	s := service.NewHeuristicRiskScorer(nil)
	assert.Equal(t, valueobject.ScoringMethodHeuristic, s.Method())
	assert.False(t, s.NeedsVector())
	assert.Zero(t, s.InputDim())

	out, err := s.Score(service.ScoreInput{Record: highRisk(t)})
	require.NoError(t, err)
	assert.Equal(t, 0.95, out.Probability)
	assert.Equal(t, valueobject.ScoringMethodHeuristic, out.Method)
	assert.NotEmpty(t, out.Factors)
}

func TestRiskScorer_Model(t *testing.T) {
	s, err := service.NewModelScorer(stubClassifier{dim: 23, p: 0.42})
	require.NoError(t, err)
	assert.True(t, s.NeedsVector())
	assert.Equal(t, 23, s.InputDim())

	vec := newSamplePreprocessor(t).Transform(highRisk(t))
	out, err := s.Score(service.ScoreInput{Record: highRisk(t), Vector: vec})
	require.NoError(t, err)
	assert.Equal(t, 0.42, out.Probability)
	assert.Equal(t, valueobject.ScoringMethodModel, out.Method)
	assert.Empty(t, out.Factors)
}

func TestRiskScorer_ModelClampsOutput(t *testing.T) {
	s, err := service.NewModelScorer(stubClassifier{dim: 1, p: 1.3})
	require.NoError(t, err)
	out, err := s.Score(service.ScoreInput{Vector: []float64{0}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Probability)
}

func TestRiskScorer_ModelErrors(t *testing.T) {
	_, err := service.NewModelScorer(nil)
	assert.Error(t, err)

	s, err := service.NewModelScorer(stubClassifier{dim: 23})
	require.NoError(t, err)
	_, err = s.Score(service.ScoreInput{Vector: []float64{1, 2}})
	assert.ErrorIs(t, err, service.ErrInputWidth)

	boom := errors.New("boom")
	s, err = service.NewModelScorer(stubClassifier{dim: 1, err: boom})
	require.NoError(t, err)
	_, err = s.Score(service.ScoreInput{Vector: []float64{1}})
	assert.ErrorIs(t, err, boom)
}
