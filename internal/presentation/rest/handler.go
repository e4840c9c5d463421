package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
	"github.com/strokeguard/strokeguard/internal/domain/model"
)

// Handler serves the inference HTTP API.
type Handler struct {
	predict   *usecase.PredictRisk
	health    *usecase.CheckHealth
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates a new HTTP handler.
func NewHandler(predict *usecase.PredictRisk, health *usecase.CheckHealth, logger *slog.Logger) *Handler {
	return &Handler{
		predict:   predict,
		health:    health,
		logger:    logger,
		startTime: time.Now(),
	}
}

// RouteOptions configures RegisterRoutes.
type RouteOptions struct {
	// Metrics serves GET /metrics when non-nil.
	Metrics http.Handler
	// Predict wraps POST /predict only, e.g. with AuthMiddleware.
	Predict []Middleware
}

// RegisterRoutes registers the API on the provided ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, opts RouteOptions) {
	mux.Handle("POST /predict", Chain(http.HandlerFunc(h.Predict), opts.Predict...))
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	mux.HandleFunc("GET /{$}", h.Root)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}
}

// Predict scores one patient record.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	raw, err := readRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.predict.Execute(r.Context(), raw)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := model.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
		return
	}
	if errors.Is(err, usecase.ErrServiceUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "preprocessing transform not loaded")
		return
	}
	h.logger.ErrorContext(r.Context(), "prediction failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// Health reports which artifacts are loaded. It always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Execute(r.Context()))
}

// Healthz handles liveness probe requests.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz answers 200 once the transform is loaded and 503 otherwise.
func (h *Handler) Readyz(w http.ResponseWriter, _ *http.Request) {
	if !h.health.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Root serves the service banner.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Status())
}
