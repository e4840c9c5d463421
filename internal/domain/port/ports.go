package port

import (
	"context"
	"time"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/pkg/events"
)

// ArtifactInfo describes a loaded artifact file.
type ArtifactInfo struct {
	Path     string
	Checksum string
}

// ArtifactStore loads and saves the fitted transform and the trained classifier.
type ArtifactStore interface {
	// LoadPreprocessor reads and validates a transform artifact.
	LoadPreprocessor(ctx context.Context, path string) (*service.Preprocessor, ArtifactInfo, error)

	// LoadClassifier reads and validates a classifier artifact.
	LoadClassifier(ctx context.Context, path string) (service.Classifier, ArtifactInfo, error)

	// SavePreprocessor writes a transform artifact.
	SavePreprocessor(ctx context.Context, path string, p *service.Preprocessor) error
}

// StartupReportRepository defines the persistence port for startup reports.
type StartupReportRepository interface {
	// Save persists a completed startup report.
	Save(ctx context.Context, report *model.StartupReport) error

	// ListRecent returns the most recent reports, newest first.
	ListRecent(ctx context.Context, limit int) ([]*model.StartupReport, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// PredictionMetrics records prediction outcomes for monitoring.
type PredictionMetrics interface {
	RecordPrediction(ctx context.Context, method, tier string, latency time.Duration)
	RecordRejection(ctx context.Context, reason string)
}
