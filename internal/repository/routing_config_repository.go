package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// RoutingConfigRepository persists the per-organization routing policy.
type RoutingConfigRepository interface {
	// GetByOrg returns pgx.ErrNoRows when the organization never saved
	// a config; callers substitute the default policy.
	GetByOrg(ctx context.Context, orgID string) (*domain.RoutingConfig, error)
	Upsert(ctx context.Context, cfg *domain.RoutingConfig) error
}

type routingConfigRepository struct {
	pool *pgxpool.Pool
}

// NewRoutingConfigRepository instantiates repository.
func NewRoutingConfigRepository(pool *pgxpool.Pool) RoutingConfigRepository {
	return &routingConfigRepository{pool: pool}
}

func (r *routingConfigRepository) GetByOrg(ctx context.Context, orgID string) (*domain.RoutingConfig, error) {
	const query = `
        SELECT organization_id, strategy, load_balance_weight, active
        FROM routing_configs WHERE organization_id=$1`
	var cfg domain.RoutingConfig
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(
		&cfg.OrganizationID,
		&cfg.Strategy,
		&cfg.LoadBalanceWeight,
		&cfg.Active,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *routingConfigRepository) Upsert(ctx context.Context, cfg *domain.RoutingConfig) error {
	const query = `
        INSERT INTO routing_configs (organization_id, strategy, load_balance_weight, active, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (organization_id)
        DO UPDATE SET strategy=EXCLUDED.strategy, load_balance_weight=EXCLUDED.load_balance_weight,
            active=EXCLUDED.active, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		cfg.OrganizationID,
		cfg.Strategy,
		cfg.LoadBalanceWeight,
		cfg.Active,
	)
	return err
}
