package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// OrganizationRepository reads the tenant roster for the detector sweep.
type OrganizationRepository interface {
	ListActive(ctx context.Context) ([]domain.Organization, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository instantiates repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) ListActive(ctx context.Context) ([]domain.Organization, error) {
	const query = `
        SELECT id, name, active FROM organizations
        WHERE active=TRUE
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Active); err != nil {
			return nil, err
		}
		result = append(result, org)
	}
	return result, rows.Err()
}
