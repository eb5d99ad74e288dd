package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// SkillRepository reads and writes agent skill ratings.
type SkillRepository interface {
	// ActiveForService returns active skills for the given agents scoped
	// to one service, ordered by proficiency descending. Ties keep the
	// store's natural secondary order; the first row wins downstream.
	ActiveForService(ctx context.Context, agentIDs []string, serviceID string) ([]domain.AgentSkill, error)
	ListForAgent(ctx context.Context, agentID string) ([]domain.AgentSkill, error)
	Upsert(ctx context.Context, skill *domain.AgentSkill) error
}

type skillRepository struct {
	pool *pgxpool.Pool
}

// NewSkillRepository instantiates repository.
func NewSkillRepository(pool *pgxpool.Pool) SkillRepository {
	return &skillRepository{pool: pool}
}

func (r *skillRepository) ActiveForService(ctx context.Context, agentIDs []string, serviceID string) ([]domain.AgentSkill, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}
	args := []any{serviceID}
	placeholders := make([]string, len(agentIDs))
	for i, id := range agentIDs {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`
        SELECT id, agent_id, service_id, proficiency, active
        FROM agent_skills
        WHERE service_id=$1 AND active=TRUE AND agent_id IN (%s)
        ORDER BY proficiency DESC`, strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSkills(rows)
}

func (r *skillRepository) ListForAgent(ctx context.Context, agentID string) ([]domain.AgentSkill, error) {
	const query = `
        SELECT id, agent_id, service_id, proficiency, active
        FROM agent_skills
        WHERE agent_id=$1
        ORDER BY proficiency DESC`
	rows, err := r.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSkills(rows)
}

func (r *skillRepository) Upsert(ctx context.Context, skill *domain.AgentSkill) error {
	const query = `
        INSERT INTO agent_skills (agent_id, service_id, proficiency, active)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (agent_id, service_id)
        DO UPDATE SET proficiency=EXCLUDED.proficiency, active=EXCLUDED.active
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		skill.AgentID,
		skill.ServiceID,
		skill.Proficiency,
		skill.Active,
	).Scan(&skill.ID)
}

func scanSkills(rows pgx.Rows) ([]domain.AgentSkill, error) {
	var result []domain.AgentSkill
	for rows.Next() {
		var skill domain.AgentSkill
		if err := rows.Scan(
			&skill.ID,
			&skill.AgentID,
			&skill.ServiceID,
			&skill.Proficiency,
			&skill.Active,
		); err != nil {
			return nil, err
		}
		result = append(result, skill)
	}
	return result, rows.Err()
}
