package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/internal/domain/valueobject"
	pgpkg "github.com/strokeguard/strokeguard/pkg/postgres"
)

const (
	kindTransform  = "transform"
	kindClassifier = "classifier"
)

// StartupReportRepository implements port.StartupReportRepository using PostgreSQL.
type StartupReportRepository struct {
	pool *pgxpool.Pool
}

var _ port.StartupReportRepository = (*StartupReportRepository)(nil)

// NewStartupReportRepository creates a new PostgreSQL-backed report repository.
func NewStartupReportRepository(pool *pgxpool.Pool) *StartupReportRepository {
	return &StartupReportRepository{pool: pool}
}

// Save persists a startup report and both artifact load rows in one transaction.
func (r *StartupReportRepository) Save(ctx context.Context, report *model.StartupReport) error {
	return pgpkg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO startup_reports (
				id, instance, scorer_state, input_width, started_at, completed_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			report.ID(),
			report.Instance(),
			report.ScorerState().String(),
			report.InputWidth(),
			report.StartedAt(),
			report.CompletedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save startup report: %w", err)
		}

		for kind, status := range map[string]model.ArtifactStatus{
			kindTransform:  report.Transform(),
			kindClassifier: report.Classifier(),
		} {
			if err := insertArtifactLoad(ctx, tx, report.ID(), kind, status); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertArtifactLoad(ctx context.Context, q pgpkg.Querier, reportID uuid.UUID, kind string, s model.ArtifactStatus) error {
	_, err := q.Exec(ctx,
		`INSERT INTO artifact_loads (report_id, kind, path, checksum, loaded, error) VALUES ($1, $2, $3, $4, $5, $6)`,
		reportID, kind, s.Path, s.Checksum, s.Loaded, s.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s load: %w", kind, err)
	}
	return nil
}

// ListRecent returns the most recent reports, newest first.
func (r *StartupReportRepository) ListRecent(ctx context.Context, limit int) ([]*model.StartupReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.instance, r.scorer_state, r.input_width, r.started_at, r.completed_at,
			t.path, t.checksum, t.loaded, t.error,
			c.path, c.checksum, c.loaded, c.error
		FROM startup_reports r
		JOIN artifact_loads t ON t.report_id = r.id AND t.kind = 'transform'
		JOIN artifact_loads c ON c.report_id = r.id AND c.kind = 'classifier'
		ORDER BY r.completed_at DESC, r.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query startup reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.StartupReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating startup reports: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.Row) (*model.StartupReport, error) {
	var (
		id                     uuid.UUID
		instance, state        string
		inputWidth             int
		startedAt, completedAt time.Time
		transform, classifier  model.ArtifactStatus
	)
	if err := row.Scan(
		&id, &instance, &state, &inputWidth, &startedAt, &completedAt,
		&transform.Path, &transform.Checksum, &transform.Loaded, &transform.Error,
		&classifier.Path, &classifier.Checksum, &classifier.Loaded, &classifier.Error,
	); err != nil {
		return nil, fmt.Errorf("failed to scan startup report: %w", err)
	}

	scorerState, err := valueobject.ScoringMethodFromString(state)
	if err != nil {
		return nil, fmt.Errorf("invalid scorer state in database: %w", err)
	}

	return model.ReconstructStartupReport(
		id, instance, transform, classifier, scorerState, inputWidth, startedAt, completedAt,
	), nil
}
