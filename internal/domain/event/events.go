package event

import (
	"time"

	"github.com/strokeguard/strokeguard/pkg/events"
)

const (
	// AggregateTypeStartupReport is the aggregate type for lifecycle events.
	AggregateTypeStartupReport = "StartupReport"

	// EventTypeStartupCompleted is emitted once artifact loading has finished.
	EventTypeStartupCompleted = "inference.startup.completed"

	// EventTypeScorerDegraded is emitted when the classifier could not be
	// loaded and the heuristic scorer was selected instead.
	EventTypeScorerDegraded = "inference.scorer.degraded"
)

// StartupCompleted is published after every process start.
type StartupCompleted struct {
	events.BaseEvent
	ReportID        string    `json:"report_id"`
	Instance        string    `json:"instance"`
	TransformLoaded bool      `json:"transform_loaded"`
	ModelLoaded     bool      `json:"model_loaded"`
	ScorerState     string    `json:"scorer_state"`
	InputWidth      int       `json:"input_width"`
	CompletedAt     time.Time `json:"completed_at"`
}

// NewStartupCompleted creates a StartupCompleted event.
func NewStartupCompleted(
	reportID, instance string,
	transformLoaded, modelLoaded bool,
	scorerState string,
	inputWidth int,
	completedAt time.Time,
) StartupCompleted {
	return StartupCompleted{
		BaseEvent:       events.NewBaseEvent(EventTypeStartupCompleted, reportID, AggregateTypeStartupReport),
		ReportID:        reportID,
		Instance:        instance,
		TransformLoaded: transformLoaded,
		ModelLoaded:     modelLoaded,
		ScorerState:     scorerState,
		InputWidth:      inputWidth,
		CompletedAt:     completedAt,
	}
}

// ScorerDegraded is published when the service starts in heuristic mode.
type ScorerDegraded struct {
	events.BaseEvent
	ReportID   string    `json:"report_id"`
	Instance   string    `json:"instance"`
	ModelPath  string    `json:"model_path"`
	Reason     string    `json:"reason"`
	DegradedAt time.Time `json:"degraded_at"`
}

// NewScorerDegraded creates a ScorerDegraded event.
func NewScorerDegraded(reportID, instance, modelPath, reason string, degradedAt time.Time) ScorerDegraded {
	return ScorerDegraded{
		BaseEvent:  events.NewBaseEvent(EventTypeScorerDegraded, reportID, AggregateTypeStartupReport),
		ReportID:   reportID,
		Instance:   instance,
		ModelPath:  modelPath,
		Reason:     reason,
		DegradedAt: degradedAt,
	}
}
