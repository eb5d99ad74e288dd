package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/events"
	"github.com/queuewise/queue-intel/internal/observability"
	"github.com/queuewise/queue-intel/internal/repository"
	apperrors "github.com/queuewise/queue-intel/pkg/util"
)

// RoutingService decides which agent should receive the next ticket.
// It is a pure decision function over current store state: the caller
// owns the actual ticket assignment write, which is also where races
// between concurrent routing calls resolve.
type RoutingService struct {
	sessions   repository.SessionRepository
	skills     repository.SkillRepository
	tickets    repository.TicketRepository
	configs    repository.RoutingConfigRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// RoutingDependencies bundles repositories.
type RoutingDependencies struct {
	SessionRepo repository.SessionRepository
	SkillRepo   repository.SkillRepository
	TicketRepo  repository.TicketRepository
	ConfigRepo  repository.RoutingConfigRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewRoutingService creates the service.
func NewRoutingService(deps RoutingDependencies) *RoutingService {
	return &RoutingService{
		sessions:   deps.SessionRepo,
		skills:     deps.SkillRepo,
		tickets:    deps.TicketRepo,
		configs:    deps.ConfigRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// RouteTicket selects the best available agent and station for a
// routing request. A nil agent with reason "no active agents" is a
// valid result, not an error.
func (s *RoutingService) RouteTicket(ctx context.Context, orgID, branchID, serviceID string) (domain.RoutingResult, error) {
	cfg, err := s.GetRoutingConfig(ctx, orgID)
	if err != nil {
		return domain.RoutingResult{}, err
	}

	sessions, err := s.sessions.ActiveForBranch(ctx, branchID)
	if err != nil {
		return domain.RoutingResult{}, apperrors.MapError(err)
	}
	if len(sessions) == 0 {
		s.metrics.RecordRoutingDecision("no_agents")
		return domain.NoAgentsResult(), nil
	}

	loads, err := s.tickets.ServingCountByAgent(ctx, branchID)
	if err != nil {
		return domain.RoutingResult{}, apperrors.MapError(err)
	}
	maxLoad := 0
	for _, session := range sessions {
		if loads[session.AgentID] > maxLoad {
			maxLoad = loads[session.AgentID]
		}
	}

	sessionByAgent := make(map[string]*domain.AgentSession, len(sessions))
	agentIDs := make([]string, 0, len(sessions))
	for i := range sessions {
		session := &sessions[i]
		if _, seen := sessionByAgent[session.AgentID]; !seen {
			sessionByAgent[session.AgentID] = session
			agentIDs = append(agentIDs, session.AgentID)
		}
	}

	var chosen *domain.AgentSession
	var reason, rule string

	if cfg.Strategy == domain.StrategySkillBased || cfg.Strategy == domain.StrategyHybrid {
		skills, err := s.skills.ActiveForService(ctx, agentIDs, serviceID)
		if err != nil {
			return domain.RoutingResult{}, apperrors.MapError(err)
		}
		if len(skills) > 0 {
			if cfg.Strategy == domain.StrategySkillBased {
				// rows arrive proficiency-descending; the first one wins
				top := skills[0]
				chosen = sessionByAgent[top.AgentID]
				reason = fmt.Sprintf("skill based: proficiency %d", top.Proficiency)
				rule = "skill_based"
			} else {
				chosen, reason = pickHybrid(skills, sessionByAgent, loads, maxLoad, cfg.LoadBalanceWeight)
				rule = "hybrid"
			}
		}
	}

	if chosen == nil && (cfg.Strategy == domain.StrategyLeastBusy || cfg.Strategy == domain.StrategyHybrid) {
		best := &sessions[0]
		for i := 1; i < len(sessions); i++ {
			if loads[sessions[i].AgentID] < loads[best.AgentID] {
				best = &sessions[i]
			}
		}
		chosen = best
		reason = fmt.Sprintf("least busy: %d serving", loads[best.AgentID])
		rule = "least_busy"
	}

	if chosen == nil {
		// round robin degrades to first available: there is no
		// persisted rotation cursor
		chosen = &sessions[0]
		reason = "first available agent"
		rule = "first_available"
	}

	s.metrics.RecordRoutingDecision(rule)
	result := domain.RoutingResult{
		AgentID:   &chosen.AgentID,
		StationID: &chosen.StationID,
		Reason:    reason,
	}
	s.publishRouted(ctx, orgID, branchID, serviceID, result)
	return result, nil
}

// pickHybrid blends competence and congestion: a skilled-but-overloaded
// agent may lose to a competent-and-free one when the weight is high.
func pickHybrid(skills []domain.AgentSkill, sessionByAgent map[string]*domain.AgentSession, loads map[string]int, maxLoad int, weight float64) (*domain.AgentSession, string) {
	denominator := float64(maxLoad)
	if denominator < 1 {
		denominator = 1
	}

	var chosen *domain.AgentSession
	var bestScore float64
	var bestSkill domain.AgentSkill
	for _, skill := range skills {
		session, ok := sessionByAgent[skill.AgentID]
		if !ok {
			continue
		}
		normalizedLoad := float64(loads[skill.AgentID]) / denominator
		score := float64(skill.Proficiency) * (1 - normalizedLoad*weight)
		if chosen == nil || score > bestScore {
			chosen = session
			bestScore = score
			bestSkill = skill
		}
	}
	if chosen == nil {
		return nil, ""
	}
	reason := fmt.Sprintf("hybrid: proficiency %d, load %d, score %.2f",
		bestSkill.Proficiency, loads[bestSkill.AgentID], bestScore)
	return chosen, reason
}

// GetRoutingConfig returns the organization's routing policy, falling
// back to the round-robin default when none was ever saved.
func (s *RoutingService) GetRoutingConfig(ctx context.Context, orgID string) (domain.RoutingConfig, error) {
	cfg, err := s.configs.GetByOrg(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultRoutingConfig(orgID), nil
		}
		return domain.RoutingConfig{}, apperrors.MapError(err)
	}
	if !cfg.Active {
		return domain.DefaultRoutingConfig(orgID), nil
	}
	return *cfg, nil
}

// SaveRoutingConfig validates and upserts the routing policy.
func (s *RoutingService) SaveRoutingConfig(ctx context.Context, cfg domain.RoutingConfig) (domain.RoutingConfig, error) {
	if !cfg.Strategy.Valid() {
		return domain.RoutingConfig{}, apperrors.NewValidationError("unknown routing strategy", map[string]any{"strategy": cfg.Strategy})
	}
	if cfg.LoadBalanceWeight < 0 || cfg.LoadBalanceWeight > 1 {
		return domain.RoutingConfig{}, apperrors.NewValidationError("load_balance_weight must be between 0 and 1", map[string]any{"load_balance_weight": cfg.LoadBalanceWeight})
	}
	cfg.Active = true
	if err := s.configs.Upsert(ctx, &cfg); err != nil {
		return domain.RoutingConfig{}, apperrors.MapError(err)
	}
	return cfg, nil
}

// ListAgentSkills returns all skill ratings for one agent.
func (s *RoutingService) ListAgentSkills(ctx context.Context, agentID string) ([]domain.AgentSkill, error) {
	skills, err := s.skills.ListForAgent(ctx, agentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return skills, nil
}

// SaveAgentSkill upserts a skill rating, silently clamping proficiency
// into [1,10].
func (s *RoutingService) SaveAgentSkill(ctx context.Context, skill domain.AgentSkill) (domain.AgentSkill, error) {
	skill.Proficiency = domain.ClampProficiency(skill.Proficiency)
	if err := s.skills.Upsert(ctx, &skill); err != nil {
		return domain.AgentSkill{}, apperrors.MapError(err)
	}
	return skill, nil
}

func (s *RoutingService) publishRouted(ctx context.Context, orgID, branchID, serviceID string, result domain.RoutingResult) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventTicketRouted,
		OrganizationID: orgID,
		Timestamp:      time.Now(),
		Payload: events.TicketRoutedPayload{
			BranchID:  branchID,
			ServiceID: serviceID,
			AgentID:   result.AgentID,
			StationID: result.StationID,
			Reason:    result.Reason,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
