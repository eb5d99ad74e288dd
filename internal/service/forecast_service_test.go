package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/observability"
)

// fixedNow is a Tuesday noon; forecast tests target the same weekday.
var fixedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newForecastService(tickets *fakeTicketRepo, forecasts *fakeForecastRepo) *ForecastService {
	svc := NewForecastService(ForecastDependencies{
		TicketRepo:   tickets,
		ForecastRepo: forecasts,
		Logger:       zap.NewNop(),
		Metrics:      observability.NewMetrics(),
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func historyTicket(branchID string, createdAt time.Time) domain.Ticket {
	return domain.Ticket{
		ID:             "t-" + createdAt.Format("20060102T150405"),
		OrganizationID: "org-1",
		BranchID:       branchID,
		ServiceID:      "service-1",
		Status:         domain.TicketStatusCompleted,
		CreatedAt:      createdAt,
	}
}

func repeatTickets(branchID string, createdAt time.Time, count int) []domain.Ticket {
	tickets := make([]domain.Ticket, 0, count)
	for i := 0; i < count; i++ {
		ticket := historyTicket(branchID, createdAt.Add(time.Duration(i)*time.Minute))
		tickets = append(tickets, ticket)
	}
	return tickets
}

func TestForecastWeightedSameWeekdayModel(t *testing.T) {
	// target weekday has tickets only in week 0 hour 9 (4 tickets) and
	// week 2 hour 9 (2 tickets): weighted sum 4*0.4 + 2*0.2 = 2.0 over
	// total weight 0.6, so hour 9 predicts round(3.33) = 3
	tickets := &fakeTicketRepo{}
	tickets.branchTickets = append(tickets.branchTickets,
		repeatTickets("branch-1", fixedNow.Add(-3*time.Hour), 4)...) // today 09:00, week 0
	tickets.branchTickets = append(tickets.branchTickets,
		repeatTickets("branch-1", fixedNow.AddDate(0, 0, -14).Add(-3*time.Hour), 2)...) // two Tuesdays back, week 2
	forecasts := newFakeForecastRepo()
	svc := newForecastService(tickets, forecasts)

	forecast, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, forecast.Hourly[9].Predicted)
	assert.Equal(t, 3, forecast.TotalPredicted)
	for hour, cell := range forecast.Hourly {
		if hour != 9 {
			assert.Zero(t, cell.Predicted, "hour %d", hour)
		}
	}
	assert.Nil(t, forecast.TotalActual)
}

func TestForecastIgnoresOtherWeekdays(t *testing.T) {
	tickets := &fakeTicketRepo{}
	// Monday tickets must not leak into a Tuesday forecast
	tickets.branchTickets = repeatTickets("branch-1", fixedNow.AddDate(0, 0, -1).Add(-3*time.Hour), 6)
	forecasts := newFakeForecastRepo()
	svc := newForecastService(tickets, forecasts)

	forecast, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	assert.Zero(t, forecast.TotalPredicted)
}

func TestForecastEmptyHistoryShortCircuits(t *testing.T) {
	tickets := &fakeTicketRepo{}
	forecasts := newFakeForecastRepo()
	svc := newForecastService(tickets, forecasts)

	forecast, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	assert.Zero(t, forecast.TotalPredicted)
	assert.Len(t, forecast.Hourly, 24)
	// nothing cached: the branch recomputes once history appears
	assert.Zero(t, forecasts.upserts)
	assert.False(t, forecasts.computed[forecastFakeKey("branch-1", fixedNow)])
}

func TestForecastCacheHitNeverRecomputes(t *testing.T) {
	tickets := &fakeTicketRepo{}
	tickets.branchTickets = repeatTickets("branch-1", fixedNow.Add(-3*time.Hour), 4)
	forecasts := newFakeForecastRepo()
	svc := newForecastService(tickets, forecasts)

	first, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	require.Equal(t, 1, tickets.branchCalls)

	second, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, tickets.branchCalls, "cache hit must not touch history")
	assert.Equal(t, first, second)
}

func TestForecastTotalActualSumsOnlyObservedHours(t *testing.T) {
	forecasts := newFakeForecastRepo()
	key := forecastFakeKey("branch-1", fixedNow)
	forecasts.computed[key] = true
	forecasts.cells[key] = []domain.ForecastCell{
		{BranchID: "branch-1", Date: fixedNow, Hour: 9, Predicted: 3, Actual: intPtr(5)},
		{BranchID: "branch-1", Date: fixedNow, Hour: 10, Predicted: 2},
		{BranchID: "branch-1", Date: fixedNow, Hour: 11, Predicted: 1, Actual: intPtr(2)},
	}
	svc := newForecastService(&fakeTicketRepo{}, forecasts)

	forecast, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 6, forecast.TotalPredicted)
	require.NotNil(t, forecast.TotalActual)
	assert.Equal(t, 7, *forecast.TotalActual)
}

func TestForecastTotalEqualsHourlySum(t *testing.T) {
	tickets := &fakeTicketRepo{}
	tickets.branchTickets = append(tickets.branchTickets,
		repeatTickets("branch-1", fixedNow.Add(-3*time.Hour), 8)...)
	tickets.branchTickets = append(tickets.branchTickets,
		repeatTickets("branch-1", fixedNow.Add(-5*time.Hour), 3)...)
	tickets.branchTickets = append(tickets.branchTickets,
		repeatTickets("branch-1", fixedNow.AddDate(0, 0, -7).Add(-3*time.Hour), 2)...)
	forecasts := newFakeForecastRepo()
	svc := newForecastService(tickets, forecasts)

	forecast, err := svc.GetForecast(context.Background(), "org-1", "branch-1", fixedNow)
	require.NoError(t, err)
	sum := 0
	for _, hour := range forecast.Hourly {
		sum += hour.Predicted
	}
	assert.Equal(t, sum, forecast.TotalPredicted)
}

func TestStaffingRecommendations(t *testing.T) {
	forecasts := newFakeForecastRepo()
	key := forecastFakeKey("branch-1", fixedNow)
	forecasts.computed[key] = true
	forecasts.cells[key] = []domain.ForecastCell{
		{BranchID: "branch-1", Date: fixedNow, Hour: 9, Predicted: 4},
		{BranchID: "branch-1", Date: fixedNow, Hour: 10, Predicted: 20},
		{BranchID: "branch-1", Date: fixedNow, Hour: 11, Predicted: 40},
	}
	svc := newForecastService(&fakeTicketRepo{}, forecasts)

	recommendations, err := svc.GetStaffingRecommendations(context.Background(), "org-1", "branch-1", fixedNow, 10, 15)
	require.NoError(t, err)
	require.Len(t, recommendations, 3)

	// 60/10 = 6 tickets per agent per hour
	assert.Equal(t, domain.StaffingRecommendation{Hour: 9, PredictedTickets: 4, RecommendedAgents: 1, DemandLevel: "low demand"}, recommendations[0])
	assert.Equal(t, domain.StaffingRecommendation{Hour: 10, PredictedTickets: 20, RecommendedAgents: 4, DemandLevel: "high demand"}, recommendations[1])
	assert.Equal(t, domain.StaffingRecommendation{Hour: 11, PredictedTickets: 40, RecommendedAgents: 7, DemandLevel: "very high demand"}, recommendations[2])
}

func TestStaffingAgentsNonDecreasingInPredicted(t *testing.T) {
	previous := 0
	for predicted := 1; predicted <= 60; predicted++ {
		forecasts := newFakeForecastRepo()
		key := forecastFakeKey("branch-1", fixedNow)
		forecasts.computed[key] = true
		forecasts.cells[key] = []domain.ForecastCell{
			{BranchID: "branch-1", Date: fixedNow, Hour: 9, Predicted: float64(predicted)},
		}
		svc := newForecastService(&fakeTicketRepo{}, forecasts)

		recommendations, err := svc.GetStaffingRecommendations(context.Background(), "org-1", "branch-1", fixedNow, 10, 15)
		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.GreaterOrEqual(t, recommendations[0].RecommendedAgents, 1)
		assert.GreaterOrEqual(t, recommendations[0].RecommendedAgents, previous)
		previous = recommendations[0].RecommendedAgents
	}
}
