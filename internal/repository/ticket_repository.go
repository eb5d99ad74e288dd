package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// TicketRepository exposes the read-only ticket queries the engine
// needs. Ticket lifecycle writes belong to the external store.
type TicketRepository interface {
	// ListForBranchSince returns branch tickets created at or after
	// since, optionally restricted to the given statuses.
	ListForBranchSince(ctx context.Context, branchID string, since time.Time, statuses []domain.TicketStatus) ([]domain.Ticket, error)
	// ServingCountByAgent counts each agent's in-flight tickets for a branch.
	ServingCountByAgent(ctx context.Context, branchID string) (map[string]int, error)
	// WaitSamplesSince returns wait durations (seconds) of tickets called
	// or completed at or after since, skipping null waits.
	WaitSamplesSince(ctx context.Context, orgID string, since time.Time) ([]int, error)
	// ListForOrgCreatedSince returns organization tickets created at or
	// after since.
	ListForOrgCreatedSince(ctx context.Context, orgID string, since time.Time) ([]domain.Ticket, error)
	// RatingsSince returns ratings of completed tickets rated at or
	// after since, skipping null ratings.
	RatingsSince(ctx context.Context, orgID string, since time.Time) ([]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, organization_id, branch_id, service_id, agent_id, status, priority,
               created_at, called_at, completed_at, wait_seconds, service_seconds, rating, sentiment`

func (r *ticketRepository) ListForBranchSince(ctx context.Context, branchID string, since time.Time, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	args := []any{branchID, since}
	clause := ""
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clause = fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE branch_id=$1 AND created_at >= $2%s
        ORDER BY created_at`, ticketColumns, clause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ServingCountByAgent(ctx context.Context, branchID string) (map[string]int, error) {
	const query = `
        SELECT agent_id, COUNT(*) FROM tickets
        WHERE branch_id=$1 AND status=$2 AND agent_id IS NOT NULL
        GROUP BY agent_id`
	rows, err := r.pool.Query(ctx, query, branchID, domain.TicketStatusServing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var agentID string
		var count int
		if err := rows.Scan(&agentID, &count); err != nil {
			return nil, err
		}
		counts[agentID] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) WaitSamplesSince(ctx context.Context, orgID string, since time.Time) ([]int, error) {
	const query = `
        SELECT wait_seconds FROM tickets
        WHERE organization_id=$1 AND wait_seconds IS NOT NULL
          AND (called_at >= $2 OR completed_at >= $2)`
	rows, err := r.pool.Query(ctx, query, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInts(rows)
}

func (r *ticketRepository) ListForOrgCreatedSince(ctx context.Context, orgID string, since time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE organization_id=$1 AND created_at >= $2
        ORDER BY created_at`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) RatingsSince(ctx context.Context, orgID string, since time.Time) ([]int, error) {
	const query = `
        SELECT rating FROM tickets
        WHERE organization_id=$1 AND status=$2 AND rating IS NOT NULL
          AND completed_at >= $3`
	rows, err := r.pool.Query(ctx, query, orgID, domain.TicketStatusCompleted, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInts(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.OrganizationID,
			&ticket.BranchID,
			&ticket.ServiceID,
			&ticket.AgentID,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
			&ticket.CalledAt,
			&ticket.CompletedAt,
			&ticket.WaitSeconds,
			&ticket.ServiceSeconds,
			&ticket.Rating,
			&ticket.Sentiment,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanInts(rows pgx.Rows) ([]int, error) {
	var result []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
