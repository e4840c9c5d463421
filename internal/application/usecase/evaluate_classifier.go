package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/strokeguard/strokeguard/internal/application/dto"
	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/service"
)

// EvaluateClassifier scores a labelled dataset with the active scorer and
// reports ROC AUC, the confusion matrix and per-class metrics.
type EvaluateClassifier struct {
	ictx   *InferenceContext
	logger *slog.Logger
}

// NewEvaluateClassifier creates a new EvaluateClassifier use case.
func NewEvaluateClassifier(ictx *InferenceContext, logger *slog.Logger) *EvaluateClassifier {
	return &EvaluateClassifier{ictx: ictx, logger: logger}
}

// Execute evaluates rows. Rows that fail validation are skipped and counted.
func (uc *EvaluateClassifier) Execute(ctx context.Context, rows []dto.LabeledRow) (dto.EvaluationReport, error) {
	prep := uc.ictx.Preprocessor()
	if prep == nil {
		return dto.EvaluationReport{}, uc.ictx.unavailable()
	}
	scorer := uc.ictx.Scorer()

	labels := make([]int, 0, len(rows))
	probs := make([]float64, 0, len(rows))
	skipped := 0

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return dto.EvaluationReport{}, err
		}
		if row.Label != 0 && row.Label != 1 {
			skipped++
			uc.logger.Debug("skipping row with invalid label", "row", i, "label", row.Label)
			continue
		}
		rec, err := model.ValidateRecord(row.Raw, model.ValidateOptions{})
		if err != nil {
			skipped++
			uc.logger.Debug("skipping invalid row", "row", i, "error", err)
			continue
		}
		in := service.ScoreInput{Record: rec}
		if scorer.NeedsVector() {
			in.Vector = prep.Transform(rec)
		}
		out, err := scorer.Score(in)
		if err != nil {
			return dto.EvaluationReport{}, fmt.Errorf("failed to score row %d: %w", i, err)
		}
		labels = append(labels, row.Label)
		probs = append(probs, out.Probability)
	}

	if len(labels) == 0 {
		return dto.EvaluationReport{}, errors.New("no valid rows to evaluate")
	}

	auc, err := service.ROCAUC(labels, probs)
	if err != nil {
		return dto.EvaluationReport{}, fmt.Errorf("failed to compute roc auc: %w", err)
	}
	cm, err := service.ConfusionAt(labels, probs, service.DecisionThreshold)
	if err != nil {
		return dto.EvaluationReport{}, err
	}

	return dto.EvaluationReport{
		Method:    scorer.Method().String(),
		ROCAUC:    auc,
		Accuracy:  cm.Accuracy(),
		Threshold: service.DecisionThreshold,
		Evaluated: len(labels),
		Skipped:   skipped,
		Confusion: dto.ConfusionMatrix{
			TrueNegatives:  cm.TN,
			FalsePositives: cm.FP,
			FalseNegatives: cm.FN,
			TruePositives:  cm.TP,
		},
		Classes: map[string]dto.ClassMetrics{
			"0": classMetrics(cm.Negative()),
			"1": classMetrics(cm.Positive()),
		},
	}, nil
}

func classMetrics(s service.ClassScores) dto.ClassMetrics {
	return dto.ClassMetrics{Precision: s.Precision, Recall: s.Recall, F1: s.F1, Support: s.Support}
}
