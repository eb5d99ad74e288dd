package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/observability"
)

func newRoutingService(sessions *fakeSessionRepo, skills *fakeSkillRepo, tickets *fakeTicketRepo, configs *fakeConfigRepo) *RoutingService {
	return NewRoutingService(RoutingDependencies{
		SessionRepo: sessions,
		SkillRepo:   skills,
		TicketRepo:  tickets,
		ConfigRepo:  configs,
		Logger:      zap.NewNop(),
		Metrics:     observability.NewMetrics(),
	})
}

func session(agentID, stationID string) domain.AgentSession {
	return domain.AgentSession{
		ID:        "session-" + agentID,
		AgentID:   agentID,
		BranchID:  "branch-1",
		StationID: stationID,
		Active:    true,
	}
}

func TestRouteTicketNoActiveSessions(t *testing.T) {
	svc := newRoutingService(&fakeSessionRepo{}, &fakeSkillRepo{}, &fakeTicketRepo{}, &fakeConfigRepo{})

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	assert.Nil(t, result.AgentID)
	assert.Nil(t, result.StationID)
	assert.Equal(t, "no active agents", result.Reason)
}

func TestRouteTicketDefaultsToFirstAvailable(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: []domain.AgentSession{
		session("agent-a", "station-1"),
		session("agent-b", "station-2"),
	}}
	// no saved config: round robin degrades to first available
	svc := newRoutingService(sessions, &fakeSkillRepo{}, &fakeTicketRepo{}, &fakeConfigRepo{})

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	require.NotNil(t, result.AgentID)
	assert.Equal(t, "agent-a", *result.AgentID)
	assert.Equal(t, "station-1", *result.StationID)
	assert.Equal(t, "first available agent", result.Reason)
}

func TestRouteTicketLeastBusy(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: []domain.AgentSession{
		session("agent-a", "station-1"),
		session("agent-b", "station-2"),
		session("agent-c", "station-3"),
	}}
	tickets := &fakeTicketRepo{servingCounts: map[string]int{
		"agent-a": 2,
		"agent-b": 1,
		"agent-c": 1,
	}}
	configs := &fakeConfigRepo{cfg: &domain.RoutingConfig{
		OrganizationID: "org-1",
		Strategy:       domain.StrategyLeastBusy,
		Active:         true,
	}}
	svc := newRoutingService(sessions, &fakeSkillRepo{}, tickets, configs)

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	require.NotNil(t, result.AgentID)
	// first encountered minimum wins the tie between b and c
	assert.Equal(t, "agent-b", *result.AgentID)
	assert.Equal(t, "least busy: 1 serving", result.Reason)
}

func TestRouteTicketSkillBasedPicksHighestProficiency(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: []domain.AgentSession{
		session("agent-a", "station-1"),
		session("agent-b", "station-2"),
	}}
	skills := &fakeSkillRepo{skills: []domain.AgentSkill{
		{AgentID: "agent-a", ServiceID: "service-1", Proficiency: 4, Active: true},
		{AgentID: "agent-b", ServiceID: "service-1", Proficiency: 9, Active: true},
	}}
	configs := &fakeConfigRepo{cfg: &domain.RoutingConfig{
		OrganizationID: "org-1",
		Strategy:       domain.StrategySkillBased,
		Active:         true,
	}}
	svc := newRoutingService(sessions, skills, &fakeTicketRepo{}, configs)

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	require.NotNil(t, result.AgentID)
	assert.Equal(t, "agent-b", *result.AgentID)
	assert.Equal(t, "skill based: proficiency 9", result.Reason)
}

func TestRouteTicketSkillBasedNoSkillsKeepsFirstAvailable(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: []domain.AgentSession{
		session("agent-a", "station-1"),
	}}
	configs := &fakeConfigRepo{cfg: &domain.RoutingConfig{
		OrganizationID: "org-1",
		Strategy:       domain.StrategySkillBased,
		Active:         true,
	}}
	svc := newRoutingService(sessions, &fakeSkillRepo{}, &fakeTicketRepo{}, configs)

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	require.NotNil(t, result.AgentID)
	assert.Equal(t, "agent-a", *result.AgentID)
	assert.Equal(t, "first available agent", result.Reason)
}

func TestRouteTicketHybridBlendsSkillAndLoad(t *testing.T) {
	// loads 0 and 2, weight 0.5, proficiencies 8 and 5:
	// scoreA = 8*(1-0*0.5) = 8, scoreB = 5*(1-1*0.5) = 2.5
	sessions := &fakeSessionRepo{sessions: []domain.AgentSession{
		session("agent-a", "station-1"),
		session("agent-b", "station-2"),
	}}
	skills := &fakeSkillRepo{skills: []domain.AgentSkill{
		{AgentID: "agent-a", ServiceID: "service-1", Proficiency: 8, Active: true},
		{AgentID: "agent-b", ServiceID: "service-1", Proficiency: 5, Active: true},
	}}
	tickets := &fakeTicketRepo{servingCounts: map[string]int{
		"agent-b": 2,
	}}
	configs := &fakeConfigRepo{cfg: &domain.RoutingConfig{
		OrganizationID:    "org-1",
		Strategy:          domain.StrategyHybrid,
		LoadBalanceWeight: 0.5,
		Active:            true,
	}}
	svc := newRoutingService(sessions, skills, tickets, configs)

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	require.NotNil(t, result.AgentID)
	assert.Equal(t, "agent-a", *result.AgentID)
	assert.Equal(t, "station-1", *result.StationID)
	assert.Equal(t, "hybrid: proficiency 8, load 0, score 8.00", result.Reason)
}

func TestRouteTicketHybridWithoutSkillsFallsBackToLeastBusy(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: []domain.AgentSession{
		session("agent-a", "station-1"),
		session("agent-b", "station-2"),
	}}
	tickets := &fakeTicketRepo{servingCounts: map[string]int{
		"agent-a": 3,
	}}
	configs := &fakeConfigRepo{cfg: &domain.RoutingConfig{
		OrganizationID:    "org-1",
		Strategy:          domain.StrategyHybrid,
		LoadBalanceWeight: 0.5,
		Active:            true,
	}}
	svc := newRoutingService(sessions, &fakeSkillRepo{}, tickets, configs)

	result, err := svc.RouteTicket(context.Background(), "org-1", "branch-1", "service-1")
	require.NoError(t, err)
	require.NotNil(t, result.AgentID)
	assert.Equal(t, "agent-b", *result.AgentID)
	assert.Equal(t, "least busy: 0 serving", result.Reason)
}

func TestHybridScoreMonotonicInLoad(t *testing.T) {
	// for fixed proficiency and weight, more load never raises the score
	sessionsByAgent := map[string]*domain.AgentSession{
		"agent-a": {AgentID: "agent-a", StationID: "station-1"},
	}
	skills := []domain.AgentSkill{{AgentID: "agent-a", ServiceID: "service-1", Proficiency: 7, Active: true}}

	previous := 1e12
	for load := 0; load <= 10; load++ {
		_, reason := pickHybrid(skills, sessionsByAgent, map[string]int{"agent-a": load}, 10, 0.8)
		var proficiency, gotLoad int
		var score float64
		_, err := fmt.Sscanf(reason, "hybrid: proficiency %d, load %d, score %f", &proficiency, &gotLoad, &score)
		require.NoError(t, err)
		assert.LessOrEqual(t, score, previous)
		previous = score
	}
}

func TestGetRoutingConfigDefaults(t *testing.T) {
	svc := newRoutingService(&fakeSessionRepo{}, &fakeSkillRepo{}, &fakeTicketRepo{}, &fakeConfigRepo{})

	cfg, err := svc.GetRoutingConfig(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyRoundRobin, cfg.Strategy)
	assert.Equal(t, 0.5, cfg.LoadBalanceWeight)
}

func TestSaveRoutingConfigRejectsUnknownStrategy(t *testing.T) {
	configs := &fakeConfigRepo{}
	svc := newRoutingService(&fakeSessionRepo{}, &fakeSkillRepo{}, &fakeTicketRepo{}, configs)

	_, err := svc.SaveRoutingConfig(context.Background(), domain.RoutingConfig{
		OrganizationID: "org-1",
		Strategy:       domain.RoutingStrategy("fastest_first"),
	})
	require.Error(t, err)
	assert.Empty(t, configs.saved)
}

func TestSaveRoutingConfigRejectsWeightOutOfRange(t *testing.T) {
	configs := &fakeConfigRepo{}
	svc := newRoutingService(&fakeSessionRepo{}, &fakeSkillRepo{}, &fakeTicketRepo{}, configs)

	for _, weight := range []float64{-0.1, 1.1} {
		_, err := svc.SaveRoutingConfig(context.Background(), domain.RoutingConfig{
			OrganizationID:    "org-1",
			Strategy:          domain.StrategyHybrid,
			LoadBalanceWeight: weight,
		})
		require.Error(t, err)
	}
	assert.Empty(t, configs.saved)
}

func TestSaveAgentSkillClampsProficiency(t *testing.T) {
	tests := map[string]struct {
		input    int
		expected int
	}{
		"above range": {input: 15, expected: 10},
		"below range": {input: -2, expected: 1},
		"in range":    {input: 7, expected: 7},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			skills := &fakeSkillRepo{}
			svc := newRoutingService(&fakeSessionRepo{}, skills, &fakeTicketRepo{}, &fakeConfigRepo{})

			saved, err := svc.SaveAgentSkill(context.Background(), domain.AgentSkill{
				AgentID:     "agent-a",
				ServiceID:   "service-1",
				Proficiency: tc.input,
				Active:      true,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, saved.Proficiency)
		})
	}
}
