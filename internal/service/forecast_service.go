package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/cache"
	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/events"
	"github.com/queuewise/queue-intel/internal/observability"
	"github.com/queuewise/queue-intel/internal/repository"
	apperrors "github.com/queuewise/queue-intel/pkg/util"
)

// week weights for the same-weekday model, indexed by week number;
// week numbers past the table clamp to the last entry.
var weekWeights = [4]float64{0.4, 0.3, 0.2, 0.1}

const defaultAvgServiceMinutes = 10

// ForecastService predicts hourly ticket volume per branch and derives
// staffing recommendations. Reads are cache-first; recomputation seeds
// the persisted cells through idempotent upserts, so concurrent callers
// converge on the same values.
type ForecastService struct {
	tickets     repository.TicketRepository
	forecasts   repository.ForecastRepository
	hotCache    cache.ForecastCache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	historyDays int
	now         func() time.Time
}

// ForecastDependencies bundles repositories.
type ForecastDependencies struct {
	TicketRepo   repository.TicketRepository
	ForecastRepo repository.ForecastRepository
	HotCache     cache.ForecastCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	HistoryDays  int
}

// NewForecastService creates the service.
func NewForecastService(deps ForecastDependencies) *ForecastService {
	historyDays := deps.HistoryDays
	if historyDays <= 0 {
		historyDays = 28
	}
	return &ForecastService{
		tickets:     deps.TicketRepo,
		forecasts:   deps.ForecastRepo,
		hotCache:    deps.HotCache,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		historyDays: historyDays,
		now:         time.Now,
	}
}

// GetForecast returns the 24-hour predicted/actual profile for a branch
// and date. Cache layers, in order: redis hot cache, persisted cells
// behind the computed marker, recomputation from history.
func (s *ForecastService) GetForecast(ctx context.Context, orgID, branchID string, date time.Time) (*domain.DailyForecast, error) {
	if s.hotCache != nil {
		if cached, ok := s.hotCache.Get(ctx, branchID, date); ok {
			return cached, nil
		}
	}

	computed, err := s.forecasts.IsComputed(ctx, branchID, date)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if computed {
		cells, err := s.forecasts.CellsForDate(ctx, branchID, date)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		forecast := assembleForecast(branchID, date, cells)
		if s.hotCache != nil {
			s.hotCache.Set(ctx, forecast)
		}
		return forecast, nil
	}

	forecast, cells, err := s.computeForecast(ctx, branchID, date)
	if err != nil {
		return nil, err
	}

	// seed the cache for subsequent calls on the same target date; an
	// entirely empty history writes nothing so the branch recomputes
	// once data appears
	if cells != nil {
		if err := s.forecasts.UpsertCells(ctx, cells); err != nil {
			return nil, apperrors.MapError(err)
		}
		if err := s.forecasts.MarkComputed(ctx, branchID, date); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if s.hotCache != nil {
		s.hotCache.Set(ctx, forecast)
	}
	s.metrics.RecordForecastComputation()
	s.logger.Debug("forecast recomputed",
		zap.String("branch_id", branchID),
		zap.String("date", forecast.Date),
		zap.Int("total_predicted", forecast.TotalPredicted))
	s.publishComputed(ctx, orgID, forecast)
	return forecast, nil
}

// computeForecast rebuilds the profile from a trailing same-weekday
// history window. The returned cells hold the non-zero predictions to
// persist; they are nil when no history exists at all.
func (s *ForecastService) computeForecast(ctx context.Context, branchID string, date time.Time) (*domain.DailyForecast, []domain.ForecastCell, error) {
	now := s.now()
	since := now.AddDate(0, 0, -s.historyDays)
	history, err := s.tickets.ListForBranchSince(ctx, branchID, since, domain.MaterializedStatuses)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	targetDay := date.Weekday()
	// bucket materialized demand by (week number, hour); only the
	// target weekday participates
	buckets := make(map[int]map[int]int)
	matched := false
	for _, ticket := range history {
		if ticket.CreatedAt.Weekday() != targetDay {
			continue
		}
		week := int(now.Sub(ticket.CreatedAt).Hours() / (24 * 7))
		if week < 0 {
			week = 0
		}
		hours, ok := buckets[week]
		if !ok {
			hours = make(map[int]int)
			buckets[week] = hours
		}
		hours[ticket.CreatedAt.Hour()]++
		matched = true
	}

	if !matched {
		return emptyForecast(branchID, date), nil, nil
	}

	hourly := make([]domain.HourlyForecast, 24)
	var cells []domain.ForecastCell
	total := 0
	for hour := 0; hour < 24; hour++ {
		weightedSum := 0.0
		totalWeight := 0.0
		for week, hours := range buckets {
			count, ok := hours[hour]
			if !ok {
				continue
			}
			weight := weekWeight(week)
			weightedSum += float64(count) * weight
			totalWeight += weight
		}
		predicted := 0
		if totalWeight > 0 {
			predicted = int(math.Round(weightedSum / totalWeight))
		}
		hourly[hour] = domain.HourlyForecast{Hour: hour, Predicted: predicted}
		total += predicted
		if predicted > 0 {
			cells = append(cells, domain.ForecastCell{
				BranchID:  branchID,
				Date:      domain.DateKey(date),
				Hour:      hour,
				Predicted: float64(predicted),
			})
		}
	}

	forecast := &domain.DailyForecast{
		BranchID:       branchID,
		Date:           domain.DateKey(date).Format("2006-01-02"),
		Hourly:         hourly,
		TotalPredicted: total,
	}
	return forecast, cells, nil
}

// GetStaffingRecommendations derives per-hour agent counts from the
// forecast. slaTargetMinutes is accepted for future SLA-aware staffing
// and currently unused.
func (s *ForecastService) GetStaffingRecommendations(ctx context.Context, orgID, branchID string, date time.Time, avgServiceMinutes, slaTargetMinutes int) ([]domain.StaffingRecommendation, error) {
	if avgServiceMinutes <= 0 {
		avgServiceMinutes = defaultAvgServiceMinutes
	}

	forecast, err := s.GetForecast(ctx, orgID, branchID, date)
	if err != nil {
		return nil, err
	}

	ticketsPerAgent := 60 / avgServiceMinutes
	if ticketsPerAgent < 1 {
		ticketsPerAgent = 1
	}

	var recommendations []domain.StaffingRecommendation
	for _, hour := range forecast.Hourly {
		if hour.Predicted <= 0 {
			continue
		}
		agents := int(math.Ceil(float64(hour.Predicted) / float64(ticketsPerAgent)))
		if agents < 1 {
			agents = 1
		}
		recommendations = append(recommendations, domain.StaffingRecommendation{
			Hour:              hour.Hour,
			PredictedTickets:  hour.Predicted,
			RecommendedAgents: agents,
			DemandLevel:       demandLevel(hour.Predicted),
		})
	}
	return recommendations, nil
}

func weekWeight(week int) float64 {
	if week >= len(weekWeights) {
		return weekWeights[len(weekWeights)-1]
	}
	return weekWeights[week]
}

func demandLevel(predicted int) string {
	switch {
	case predicted <= 5:
		return "low demand"
	case predicted <= 15:
		return "moderate demand"
	case predicted <= 30:
		return "high demand"
	default:
		return "very high demand"
	}
}

// assembleForecast builds the display profile from persisted cells;
// hours absent from the cache read as zero predictions.
func assembleForecast(branchID string, date time.Time, cells []domain.ForecastCell) *domain.DailyForecast {
	forecast := emptyForecast(branchID, date)
	var actualTotal int
	hasActual := false
	for _, cell := range cells {
		if cell.Hour < 0 || cell.Hour > 23 {
			continue
		}
		predicted := int(math.Round(cell.Predicted))
		forecast.Hourly[cell.Hour] = domain.HourlyForecast{
			Hour:      cell.Hour,
			Predicted: predicted,
			Actual:    cell.Actual,
		}
		forecast.TotalPredicted += predicted
		if cell.Actual != nil {
			actualTotal += *cell.Actual
			hasActual = true
		}
	}
	if hasActual {
		forecast.TotalActual = &actualTotal
	}
	return forecast
}

func emptyForecast(branchID string, date time.Time) *domain.DailyForecast {
	hourly := make([]domain.HourlyForecast, 24)
	for hour := range hourly {
		hourly[hour] = domain.HourlyForecast{Hour: hour}
	}
	return &domain.DailyForecast{
		BranchID: branchID,
		Date:     domain.DateKey(date).Format("2006-01-02"),
		Hourly:   hourly,
	}
}

func (s *ForecastService) publishComputed(ctx context.Context, orgID string, forecast *domain.DailyForecast) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventForecastComputed,
		OrganizationID: orgID,
		Timestamp:      s.now(),
		Payload: events.ForecastComputedPayload{
			BranchID:       forecast.BranchID,
			Date:           forecast.Date,
			TotalPredicted: forecast.TotalPredicted,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
