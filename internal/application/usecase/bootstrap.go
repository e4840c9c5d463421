package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
)

const tracerName = "github.com/strokeguard/strokeguard/internal/application/usecase"

// BootstrapConfig names the artifacts to load.
type BootstrapConfig struct {
	TransformPath string
	ModelPath     string
	// Instance identifies this process in startup reports.
	Instance string
}

// Bootstrap loads the artifacts once and selects the scorer variant.
type Bootstrap struct {
	store     port.ArtifactStore
	reports   port.StartupReportRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewBootstrap creates a Bootstrap. reports and publisher are optional.
func NewBootstrap(
	store port.ArtifactStore,
	reports port.StartupReportRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *Bootstrap {
	return &Bootstrap{
		store:     store,
		reports:   reports,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute never fails: every load problem is logged and reflected in the
// returned context.
func (b *Bootstrap) Execute(ctx context.Context, cfg BootstrapConfig) *InferenceContext {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Bootstrap.Execute",
		trace.WithAttributes(
			attribute.String("strokeguard.transform_path", cfg.TransformPath),
			attribute.String("strokeguard.model_path", cfg.ModelPath),
		),
	)
	defer span.End()

	report := model.NewStartupReport(cfg.Instance)

	// 1. Transform.
	prep, info, err := b.store.LoadPreprocessor(ctx, cfg.TransformPath)
	var transformErr error
	if err != nil {
		var te *service.TransformError
		if !errors.As(err, &te) {
			te = &service.TransformError{Path: cfg.TransformPath, Err: err}
		}
		transformErr = te
		prep = nil
		b.logger.Error("preprocessing transform unavailable, predictions will be refused",
			"path", cfg.TransformPath, "error", transformErr)
		report.RecordTransform(cfg.TransformPath, "", 0, transformErr)
	} else {
		b.logger.Info("preprocessing transform loaded",
			"path", info.Path, "width", prep.Width(), "checksum", info.Checksum)
		report.RecordTransform(info.Path, info.Checksum, prep.Width(), nil)
	}

	// 2. Classifier.
	scorer, modelInfo, scorerErr := b.selectScorer(ctx, cfg.ModelPath, prep)
	report.RecordClassifier(cfg.ModelPath, modelInfo.Checksum, scorerErr)

	if err := report.Complete(scorer.Method()); err != nil {
		b.logger.Error("failed to complete startup report", "error", err)
	}

	span.SetAttributes(
		attribute.Bool("strokeguard.transform_loaded", prep != nil),
		attribute.String("strokeguard.scorer_state", scorer.Method().String()),
	)
	if transformErr != nil {
		span.SetStatus(codes.Error, transformErr.Error())
	}

	b.record(ctx, report)

	ictx := NewInferenceContext(prep, scorer, transformErr, scorerErr)
	ictx.reportID = report.ID().String()
	return ictx
}

func (b *Bootstrap) selectScorer(ctx context.Context, path string, prep *service.Preprocessor) (*service.RiskScorer, port.ArtifactInfo, error) {
	heuristic := service.NewHeuristicRiskScorer(service.NewHeuristicScorer())

	classifier, info, err := b.store.LoadClassifier(ctx, path)
	if err != nil {
		b.logger.Warn("classifier unavailable, falling back to heuristic scoring",
			"path", path, "error", err)
		return heuristic, port.ArtifactInfo{}, err
	}

	if prep != nil && classifier.InputDim() != prep.Width() {
		err := fmt.Errorf("%w: classifier expects %d features, transform yields %d",
			service.ErrInputWidth, classifier.InputDim(), prep.Width())
		b.logger.Warn("classifier incompatible with transform, falling back to heuristic scoring",
			"path", path, "error", err)
		return heuristic, port.ArtifactInfo{}, err
	}

	scorer, err := service.NewModelScorer(classifier)
	if err != nil {
		b.logger.Warn("classifier rejected, falling back to heuristic scoring", "path", path, "error", err)
		return heuristic, port.ArtifactInfo{}, err
	}

	b.logger.Info("classifier loaded", "path", info.Path, "input_dim", classifier.InputDim(), "checksum", info.Checksum)
	return scorer, info, nil
}

// record persists the report and publishes its events. Both are best effort.
func (b *Bootstrap) record(ctx context.Context, report *model.StartupReport) {
	evts := report.DomainEvents()

	if b.reports != nil {
		if err := b.reports.Save(ctx, report); err != nil {
			b.logger.Warn("failed to save startup report", "report_id", report.ID(), "error", err)
		}
	}

	if b.publisher != nil && len(evts) > 0 {
		if err := b.publisher.Publish(ctx, evts...); err != nil {
			b.logger.Warn("failed to publish startup events", "report_id", report.ID(), "error", err)
		}
	}

	state := report.ScorerState()
	if state == valueobject.ScoringMethodHeuristic {
		b.logger.Warn("service running in heuristic mode", "report_id", report.ID())
	}
}
