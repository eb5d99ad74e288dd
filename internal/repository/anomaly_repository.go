package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// AnomalyRepository persists detected anomalies.
type AnomalyRepository interface {
	// RecentUnresolvedExists reports whether an unresolved anomaly of the
	// same (organization, type) was created at or after since.
	RecentUnresolvedExists(ctx context.Context, orgID string, anomalyType domain.AnomalyType, since time.Time) (bool, error)
	Insert(ctx context.Context, anomaly *domain.Anomaly) error
	ListForOrg(ctx context.Context, orgID string, includeResolved bool, limit int) ([]domain.Anomaly, error)
	Resolve(ctx context.Context, id string) error
}

type anomalyRepository struct {
	pool *pgxpool.Pool
}

// NewAnomalyRepository instantiates repository.
func NewAnomalyRepository(pool *pgxpool.Pool) AnomalyRepository {
	return &anomalyRepository{pool: pool}
}

func (r *anomalyRepository) RecentUnresolvedExists(ctx context.Context, orgID string, anomalyType domain.AnomalyType, since time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM anomalies
            WHERE organization_id=$1 AND anomaly_type=$2 AND resolved=FALSE AND created_at >= $3
        )`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, orgID, anomalyType, since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *anomalyRepository) Insert(ctx context.Context, anomaly *domain.Anomaly) error {
	const query = `
        INSERT INTO anomalies (id, organization_id, branch_id, anomaly_type, severity, title,
            description, metric_value, threshold_value, resolved, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,FALSE,$10)`
	_, err := r.pool.Exec(ctx, query,
		anomaly.ID,
		anomaly.OrganizationID,
		anomaly.BranchID,
		anomaly.Type,
		anomaly.Severity,
		anomaly.Title,
		anomaly.Description,
		anomaly.MetricValue,
		anomaly.ThresholdValue,
		anomaly.CreatedAt,
	)
	return err
}

func (r *anomalyRepository) ListForOrg(ctx context.Context, orgID string, includeResolved bool, limit int) ([]domain.Anomaly, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, organization_id, branch_id, anomaly_type, severity, title, description,
               metric_value, threshold_value, resolved, resolved_at, created_at
        FROM anomalies
        WHERE organization_id=$1`
	if !includeResolved {
		query += " AND resolved=FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT $2"

	rows, err := r.pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Anomaly
	for rows.Next() {
		var anomaly domain.Anomaly
		if err := rows.Scan(
			&anomaly.ID,
			&anomaly.OrganizationID,
			&anomaly.BranchID,
			&anomaly.Type,
			&anomaly.Severity,
			&anomaly.Title,
			&anomaly.Description,
			&anomaly.MetricValue,
			&anomaly.ThresholdValue,
			&anomaly.Resolved,
			&anomaly.ResolvedAt,
			&anomaly.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, anomaly)
	}
	return result, rows.Err()
}

func (r *anomalyRepository) Resolve(ctx context.Context, id string) error {
	const query = `
        UPDATE anomalies SET resolved=TRUE, resolved_at=NOW()
        WHERE id=$1 AND resolved=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
