package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/strokeguard/strokeguard/internal/application/dto"
	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/domain/service"
)

// FitTransform fits a preprocessing transform from raw training rows and
// writes it as an artifact.
type FitTransform struct {
	store  port.ArtifactStore
	logger *slog.Logger
}

// NewFitTransform creates a new FitTransform use case.
func NewFitTransform(store port.ArtifactStore, logger *slog.Logger) *FitTransform {
	return &FitTransform{store: store, logger: logger}
}

// Execute validates rows, fits on the valid ones and saves the result to path.
func (uc *FitTransform) Execute(ctx context.Context, rows []map[string]any, path string) (dto.FitReport, error) {
	records := make([]model.FeatureRecord, 0, len(rows))
	skipped := 0
	for i, raw := range rows {
		rec, err := model.ValidateRecord(raw, model.ValidateOptions{})
		if err != nil {
			skipped++
			uc.logger.Debug("skipping invalid training row", "row", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return dto.FitReport{}, errors.New("no valid training rows")
	}

	prep, err := service.FitPreprocessor(records)
	if err != nil {
		return dto.FitReport{}, fmt.Errorf("failed to fit transform: %w", err)
	}

	if err := uc.store.SavePreprocessor(ctx, path, prep); err != nil {
		return dto.FitReport{}, fmt.Errorf("failed to save transform: %w", err)
	}

	uc.logger.Info("transform fitted", "path", path, "rows", len(records), "skipped", skipped, "width", prep.Width())

	return dto.FitReport{
		Path:         path,
		Rows:         len(records),
		Skipped:      skipped,
		Width:        prep.Width(),
		FeatureNames: prep.FeatureNames(),
	}, nil
}
