package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strokeguard/strokeguard/internal/application/dto"
	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/domain/service"
)

// Rejection reasons passed to PredictionMetrics.
const (
	RejectValidation  = "validation"
	RejectUnavailable = "unavailable"
	RejectInternal    = "internal"
)

// PredictRisk is the use case for scoring one raw patient record.
type PredictRisk struct {
	ictx    *InferenceContext
	metrics port.PredictionMetrics
	logger  *slog.Logger
	opts    model.ValidateOptions
}

// NewPredictRisk creates a new PredictRisk use case. metrics may be nil.
func NewPredictRisk(
	ictx *InferenceContext,
	opts model.ValidateOptions,
	metrics port.PredictionMetrics,
	logger *slog.Logger,
) *PredictRisk {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PredictRisk{
		ictx:    ictx,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}
}

// Execute validates raw, scores it and shapes the response.
//
// Errors:
//   - *model.ValidationError for bad input;
//   - ErrServiceUnavailable (wrapping the *service.TransformError) when the
//     transform is not loaded, in either scorer state;
//   - a wrapped classifier error otherwise.
func (uc *PredictRisk) Execute(ctx context.Context, raw map[string]any) (dto.PredictionResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "PredictRisk.Execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("strokeguard.record.fields", len(raw))),
	)
	defer span.End()
	start := time.Now()

	// 1. Validate.
	rec, err := model.ValidateRecord(raw, uc.opts)
	if err != nil {
		uc.metrics.RecordRejection(ctx, RejectValidation)
		span.SetStatus(codes.Error, "validation failed")
		return dto.PredictionResponse{}, err
	}

	// 2. The transform is required in both scorer states.
	prep := uc.ictx.Preprocessor()
	if prep == nil {
		uc.metrics.RecordRejection(ctx, RejectUnavailable)
		span.SetStatus(codes.Error, "transform unavailable")
		return dto.PredictionResponse{}, uc.ictx.unavailable()
	}

	// 3. Score.
	scorer := uc.ictx.Scorer()
	in := service.ScoreInput{Record: rec}
	if scorer.NeedsVector() {
		in.Vector = prep.Transform(rec)
	}
	out, err := scorer.Score(in)
	if err != nil {
		uc.metrics.RecordRejection(ctx, RejectInternal)
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring failed")
		uc.logger.ErrorContext(ctx, "scoring failed", "method", scorer.Method().String(), "error", err)
		return dto.PredictionResponse{}, fmt.Errorf("failed to score record: %w", err)
	}

	// 4. Shape.
	resp := dto.FromRiskOutput(out)
	uc.metrics.RecordPrediction(ctx, resp.Method, resp.RiskTier, time.Since(start))
	span.SetAttributes(
		attribute.String("strokeguard.method", resp.Method),
		attribute.String("strokeguard.risk_tier", resp.RiskTier),
	)

	return resp, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(context.Context, string, string, time.Duration) {}
func (nopMetrics) RecordRejection(context.Context, string)                        {}
