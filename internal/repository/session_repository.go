package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// SessionRepository reads agent presence sessions.
type SessionRepository interface {
	// ActiveForBranch returns the branch's active sessions in login order.
	ActiveForBranch(ctx context.Context, branchID string) ([]domain.AgentSession, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) ActiveForBranch(ctx context.Context, branchID string) ([]domain.AgentSession, error) {
	const query = `
        SELECT id, agent_id, branch_id, station_id, active, created_at
        FROM agent_sessions
        WHERE branch_id=$1 AND active=TRUE
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AgentSession
	for rows.Next() {
		var session domain.AgentSession
		if err := rows.Scan(
			&session.ID,
			&session.AgentID,
			&session.BranchID,
			&session.StationID,
			&session.Active,
			&session.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}
