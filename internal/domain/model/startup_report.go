package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/strokeguard/strokeguard/internal/domain/event"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
	"github.com/strokeguard/strokeguard/pkg/events"
)

// ArtifactStatus records the outcome of loading one artifact.
type ArtifactStatus struct {
	Path     string
	Checksum string
	Error    string
	Loaded   bool
}

func artifactStatus(path, checksum string, err error) ArtifactStatus {
	s := ArtifactStatus{Path: path, Checksum: checksum, Loaded: err == nil}
	if err != nil {
		s.Error = err.Error()
		s.Checksum = ""
	}
	return s
}

// StartupReport is the aggregate root describing what one process loaded at
// start-up. It is written once and never updated.
type StartupReport struct {
	completedAt time.Time
	startedAt   time.Time
	instance    string
	scorerState valueobject.ScoringMethod
	transform   ArtifactStatus
	classifier  ArtifactStatus
	events      events.EventCollector
	inputWidth  int
	id          uuid.UUID
}

// NewStartupReport begins a report for the named instance (usually the hostname).
func NewStartupReport(instance string) *StartupReport {
	return &StartupReport{
		id:        uuid.New(),
		instance:  instance,
		startedAt: time.Now().UTC(),
	}
}

// RecordTransform notes the result of loading the preprocessing transform.
// width is the transform's output width and is ignored on error.
func (r *StartupReport) RecordTransform(path, checksum string, width int, err error) {
	r.transform = artifactStatus(path, checksum, err)
	if err == nil {
		r.inputWidth = width
	}
}

// RecordClassifier notes the result of loading the classifier.
func (r *StartupReport) RecordClassifier(path, checksum string, err error) {
	r.classifier = artifactStatus(path, checksum, err)
}

// Complete fixes the selected scorer and emits lifecycle events. It may be
// called only once.
func (r *StartupReport) Complete(state valueobject.ScoringMethod) error {
	if !r.completedAt.IsZero() {
		return errors.New("startup report already completed")
	}
	r.scorerState = state
	r.completedAt = time.Now().UTC()

	id := r.id.String()
	r.events.Record(event.NewStartupCompleted(
		id, r.instance,
		r.transform.Loaded, r.classifier.Loaded,
		state.String(), r.inputWidth, r.completedAt,
	))

	if !state.IsModel() {
		reason := r.classifier.Error
		if reason == "" {
			reason = "classifier not loaded"
		}
		r.events.Record(event.NewScorerDegraded(id, r.instance, r.classifier.Path, reason, r.completedAt))
	}
	return nil
}

// ReconstructStartupReport rebuilds a report from persisted data (no events).
func ReconstructStartupReport(
	id uuid.UUID,
	instance string,
	transform, classifier ArtifactStatus,
	scorerState valueobject.ScoringMethod,
	inputWidth int,
	startedAt, completedAt time.Time,
) *StartupReport {
	return &StartupReport{
		id:          id,
		instance:    instance,
		transform:   transform,
		classifier:  classifier,
		scorerState: scorerState,
		inputWidth:  inputWidth,
		startedAt:   startedAt,
		completedAt: completedAt,
	}
}

// --- Accessors ---

func (r *StartupReport) ID() uuid.UUID                          { return r.id }
func (r *StartupReport) Instance() string                       { return r.instance }
func (r *StartupReport) Transform() ArtifactStatus              { return r.transform }
func (r *StartupReport) Classifier() ArtifactStatus             { return r.classifier }
func (r *StartupReport) ScorerState() valueobject.ScoringMethod { return r.scorerState }
func (r *StartupReport) InputWidth() int                        { return r.inputWidth }
func (r *StartupReport) StartedAt() time.Time                   { return r.startedAt }
func (r *StartupReport) CompletedAt() time.Time                 { return r.completedAt }

// DomainEvents returns all accumulated domain events and clears them.
func (r *StartupReport) DomainEvents() []events.DomainEvent {
	return r.events.ClearEvents()
}
