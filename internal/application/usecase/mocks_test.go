package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/pkg/events"
)

// --- Mock implementations ---

type mockArtifactStore struct {
	prep          *service.Preprocessor
	prepErr       error
	classifier    service.Classifier
	classifierErr error
	saved         map[string]*service.Preprocessor
	saveErr       error
}

func (m *mockArtifactStore) LoadPreprocessor(_ context.Context, path string) (*service.Preprocessor, port.ArtifactInfo, error) {
	if m.prepErr != nil {
		return nil, port.ArtifactInfo{}, m.prepErr
	}
	if m.prep == nil {
		return nil, port.ArtifactInfo{}, errors.New("open " + path + ": no such file or directory")
	}
	return m.prep, port.ArtifactInfo{Path: path, Checksum: "prep-sum"}, nil
}

func (m *mockArtifactStore) LoadClassifier(_ context.Context, path string) (service.Classifier, port.ArtifactInfo, error) {
	if m.classifierErr != nil {
		return nil, port.ArtifactInfo{}, m.classifierErr
	}
	if m.classifier == nil {
		return nil, port.ArtifactInfo{}, errors.New("open " + path + ": no such file or directory")
	}
	return m.classifier, port.ArtifactInfo{Path: path, Checksum: "model-sum"}, nil
}

func (m *mockArtifactStore) SavePreprocessor(_ context.Context, path string, p *service.Preprocessor) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string]*service.Preprocessor)
	}
	m.saved[path] = p
	return nil
}

type mockReportRepository struct {
	saved   []*model.StartupReport
	saveErr error
}

func (m *mockReportRepository) Save(_ context.Context, r *model.StartupReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockReportRepository) ListRecent(_ context.Context, _ int) ([]*model.StartupReport, error) {
	return m.saved, nil
}

type mockEventPublisher struct {
	published  []events.DomainEvent
	publishErr error
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, evts...)
	return nil
}

type mockMetrics struct {
	mu          sync.Mutex
	predictions []string
	rejections  []string
}

func (m *mockMetrics) RecordPrediction(_ context.Context, method, tier string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions = append(m.predictions, method+"/"+tier)
}

func (m *mockMetrics) RecordRejection(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections = append(m.rejections, reason)
}

// --- Fixtures ---

func samplePreprocessor(t *testing.T) *service.Preprocessor {
	t.Helper()
	p, err := service.NewPreprocessor(
		[]service.NumericColumn{
			{Name: "age", Median: 45, Mean: 43.23, Scale: 22.61},
			{Name: "avg_glucose_level", Median: 91.885, Mean: 106.15, Scale: 45.28},
			{Name: "bmi", Median: 28.1, Mean: 28.89, Scale: 7.85},
		},
		[]service.CategoricalColumn{
			{Name: "gender", Categories: []string{"Female", "Male", "Other"}},
			{Name: "hypertension", Categories: []string{"0", "1"}},
			{Name: "heart_disease", Categories: []string{"0", "1"}},
			{Name: "ever_married", Categories: []string{"No", "Yes"}},
			{Name: "work_type", Categories: []string{"Govt_job", "Never_worked", "Private", "Self-employed", "children"}},
			{Name: "Residence_type", Categories: []string{"Rural", "Urban"}},
			{Name: "smoking_status", Categories: []string{"Unknown", "formerly smoked", "never smoked", "smokes"}},
		},
	)
	require.NoError(t, err)
	return p
}

// ageClassifier is a single sigmoid unit driven only by the scaled age.
func ageClassifier(t *testing.T, inputDim int) *service.NeuralClassifier {
	t.Helper()
	w := make([][]float64, inputDim)
	for i := range w {
		w[i] = []float64{0}
	}
	w[0][0] = 3
	c, err := service.NewNeuralClassifier(inputDim, []service.Layer{
		service.DenseLayer{Activation: service.ActivationSigmoid, Weights: w, Bias: []float64{-1}},
	})
	require.NoError(t, err)
	return c
}
