package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
	"github.com/strokeguard/strokeguard/internal/domain/model"
)

// Compile-time assertion that InferenceHandler implements InferenceServiceServer.
var _ InferenceServiceServer = (*InferenceHandler)(nil)

// InferenceHandler implements the gRPC InferenceServiceServer interface.
type InferenceHandler struct {
	UnimplementedInferenceServiceServer
	predict *usecase.PredictRisk
	health  *usecase.CheckHealth
	logger  *slog.Logger
}

// NewInferenceHandler creates a new gRPC handler for the inference service.
func NewInferenceHandler(predict *usecase.PredictRisk, health *usecase.CheckHealth, logger *slog.Logger) *InferenceHandler {
	return &InferenceHandler{
		predict: predict,
		health:  health,
		logger:  logger,
	}
}

// Predict scores one raw patient record.
func (h *InferenceHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if req.Record == nil {
		return nil, status.Error(codes.InvalidArgument, "record is required")
	}

	resp, err := h.predict.Execute(ctx, req.Record)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// Health reports which artifacts are loaded.
func (h *InferenceHandler) Health(ctx context.Context, _ *HealthRequest) (*HealthResponse, error) {
	resp := h.health.Execute(ctx)
	return &resp, nil
}

func (h *InferenceHandler) toStatus(ctx context.Context, err error) error {
	if ve, ok := model.AsValidationError(err); ok {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	if errors.Is(err, usecase.ErrServiceUnavailable) {
		return status.Error(codes.Unavailable, "preprocessing transform not loaded")
	}
	h.logger.ErrorContext(ctx, "prediction failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
