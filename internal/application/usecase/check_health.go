package usecase

import (
	"context"
	"sort"

	"github.com/strokeguard/strokeguard/internal/application/dto"
)

// ServiceMessage is the banner shown at the root path.
const ServiceMessage = "Stroke Prediction API"

// DependencyCheck probes an optional backing service.
type DependencyCheck func(ctx context.Context) error

// CheckHealth reports what the process loaded at start-up.
type CheckHealth struct {
	ictx *InferenceContext
	deps map[string]DependencyCheck
}

// NewCheckHealth creates a new CheckHealth use case.
func NewCheckHealth(ictx *InferenceContext) *CheckHealth {
	return &CheckHealth{ictx: ictx, deps: map[string]DependencyCheck{}}
}

// WithDependency adds a named probe to the health report. Dependencies are
// optional, so a failing probe never changes readiness.
func (uc *CheckHealth) WithDependency(name string, check DependencyCheck) *CheckHealth {
	uc.deps[name] = check
	return uc
}

// Execute returns the health report. It never fails.
func (uc *CheckHealth) Execute(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{
		TransformLoaded: uc.ictx.TransformLoaded(),
		ScorerState:     uc.ictx.ScorerState().String(),
		ModelLoaded:     uc.ictx.ScorerState().IsModel(),
		LoadedAt:        uc.ictx.LoadedAt(),
	}
	if p := uc.ictx.Preprocessor(); p != nil {
		resp.InputWidth = p.Width()
	}
	if err := uc.ictx.TransformErr(); err != nil {
		resp.TransformError = err.Error()
	}
	if err := uc.ictx.ScorerErr(); err != nil {
		resp.ScorerError = err.Error()
	}
	if len(uc.deps) > 0 {
		resp.Dependencies = uc.probe(ctx)
	}
	return resp
}

func (uc *CheckHealth) probe(ctx context.Context) map[string]string {
	names := make([]string, 0, len(uc.deps))
	for name := range uc.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(names))
	for _, name := range names {
		if err := uc.deps[name](ctx); err != nil {
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	return out
}

// Ready reports whether predictions can be served.
func (uc *CheckHealth) Ready() bool {
	return uc.ictx.TransformLoaded()
}

// Status returns the service banner.
func (uc *CheckHealth) Status() dto.StatusResponse {
	status := "running"
	if !uc.Ready() {
		status = "degraded"
	}
	return dto.StatusResponse{
		Message:            ServiceMessage,
		Status:             status,
		PreprocessorLoaded: uc.ictx.TransformLoaded(),
		ModelLoaded:        uc.ictx.ScorerState().IsModel(),
	}
}
