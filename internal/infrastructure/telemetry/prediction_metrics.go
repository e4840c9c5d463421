package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/strokeguard/strokeguard/internal/domain/port"
)

// MeterName scopes every instrument recorded by the inference service.
const MeterName = "github.com/strokeguard/strokeguard/inference"

// PredictionMetrics implements port.PredictionMetrics with OpenTelemetry
// instruments. Exported through the Prometheus reader they appear as
// strokeguard_predictions_total, strokeguard_prediction_rejections_total and
// strokeguard_prediction_duration_seconds.
type PredictionMetrics struct {
	predictions metric.Int64Counter
	rejections  metric.Int64Counter
	latency     metric.Float64Histogram
}

var _ port.PredictionMetrics = (*PredictionMetrics)(nil)

// NewPredictionMetrics registers the prediction instruments on meter.
func NewPredictionMetrics(meter metric.Meter) (*PredictionMetrics, error) {
	predictions, err := meter.Int64Counter("strokeguard_predictions",
		metric.WithDescription("Predictions served, by scoring method and risk tier."),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: predictions counter: %w", err)
	}

	rejections, err := meter.Int64Counter("strokeguard_prediction_rejections",
		metric.WithDescription("Prediction requests that did not produce a result, by reason."),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: rejections counter: %w", err)
	}

	latency, err := meter.Float64Histogram("strokeguard_prediction_duration",
		metric.WithDescription("Time spent validating, transforming and scoring one record."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: latency histogram: %w", err)
	}

	return &PredictionMetrics{predictions: predictions, rejections: rejections, latency: latency}, nil
}

// RecordPrediction counts a successful prediction and its latency.
func (m *PredictionMetrics) RecordPrediction(ctx context.Context, method, tier string, latency time.Duration) {
	m.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("risk_tier", tier),
	))
	m.latency.Record(ctx, latency.Seconds(), metric.WithAttributes(attribute.String("method", method)))
}

// RecordRejection counts a request that failed before producing a result.
func (m *PredictionMetrics) RecordRejection(ctx context.Context, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
