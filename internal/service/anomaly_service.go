package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/events"
	"github.com/queuewise/queue-intel/internal/observability"
	"github.com/queuewise/queue-intel/internal/repository"
	apperrors "github.com/queuewise/queue-intel/pkg/util"
)

// Threshold tables per metric. The stored threshold_value is always the
// medium tier: a reference point, not the tier that fired.
var (
	waitTimeThresholds = domain.Thresholds{Medium: 20, High: 35, Critical: 50}
	noShowThresholds   = domain.Thresholds{Medium: 15, High: 25, Critical: 40}
	csatThresholds     = domain.Thresholds{Medium: 70, High: 50, Critical: 30}
	spikeThresholds    = domain.Thresholds{Medium: 1.5, High: 2.0, Critical: 3.0}
)

const (
	waitTimeWindow     = 4 * time.Hour
	dedupWindow        = 4 * time.Hour
	minWaitSamples     = 3
	minNoShowSamples   = 5
	minCSATSamples     = 5
	satisfiedRatingMin = 4
)

// SweepResult summarizes one detector pass.
type SweepResult struct {
	Detected int `json:"detected"`
	Checked  int `json:"checked"`
}

// AnomalyService sweeps every active organization and persists newly
// detected operational anomalies with deduplication. Safe to invoke
// concurrently with itself: the dedup check-then-insert is not
// transactional, which is an accepted race at the sweep's coarse
// cadence.
type AnomalyService struct {
	orgs       repository.OrganizationRepository
	tickets    repository.TicketRepository
	anomalies  repository.AnomalyRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	workers    int
	now        func() time.Time
}

// AnomalyDependencies bundles repositories.
type AnomalyDependencies struct {
	OrgRepo     repository.OrganizationRepository
	TicketRepo  repository.TicketRepository
	AnomalyRepo repository.AnomalyRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Workers     int
}

// NewAnomalyService creates the service.
func NewAnomalyService(deps AnomalyDependencies) *AnomalyService {
	workers := deps.Workers
	if workers <= 0 {
		workers = 4
	}
	return &AnomalyService{
		orgs:       deps.OrgRepo,
		tickets:    deps.TicketRepo,
		anomalies:  deps.AnomalyRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		workers:    workers,
		now:        time.Now,
	}
}

// DetectAnomalies evaluates four independent metrics for every active
// organization. A single organization's failure never aborts the sweep.
func (s *AnomalyService) DetectAnomalies(ctx context.Context) (SweepResult, error) {
	orgs, err := s.orgs.ListActive(ctx)
	if err != nil {
		return SweepResult{}, apperrors.MapError(err)
	}

	var (
		mu       sync.Mutex
		detected int
	)
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for _, org := range orgs {
		wg.Add(1)
		sem <- struct{}{}
		go func(org domain.Organization) {
			defer wg.Done()
			defer func() { <-sem }()
			count := s.sweepOrganization(ctx, org.ID)
			mu.Lock()
			detected += count
			mu.Unlock()
		}(org)
	}
	wg.Wait()

	result := SweepResult{Detected: detected, Checked: len(orgs)}
	s.logger.Info("anomaly sweep finished",
		zap.Int("checked", result.Checked),
		zap.Int("detected", result.Detected))
	return result, nil
}

// sweepOrganization runs the four metric checks independently; a failed
// query skips that metric only.
func (s *AnomalyService) sweepOrganization(ctx context.Context, orgID string) int {
	detected := 0
	checks := []func(context.Context, string) (*domain.Anomaly, error){
		s.checkWaitTime,
		s.checkNoShowRate,
		s.checkSatisfaction,
		s.checkTrafficSpike,
	}
	for _, check := range checks {
		candidate, err := check(ctx, orgID)
		if err != nil {
			s.logger.Warn("metric check failed",
				zap.String("organization_id", orgID),
				zap.Error(err))
			continue
		}
		if candidate == nil {
			continue
		}
		inserted, err := s.persist(ctx, candidate)
		if err != nil {
			s.logger.Warn("anomaly insert failed",
				zap.String("organization_id", orgID),
				zap.String("type", string(candidate.Type)),
				zap.Error(err))
			continue
		}
		if inserted {
			detected++
		}
	}
	return detected
}

func (s *AnomalyService) checkWaitTime(ctx context.Context, orgID string) (*domain.Anomaly, error) {
	samples, err := s.tickets.WaitSamplesSince(ctx, orgID, s.now().Add(-waitTimeWindow))
	if err != nil {
		return nil, err
	}
	if len(samples) < minWaitSamples {
		return nil, nil
	}
	totalSeconds := 0
	for _, sample := range samples {
		totalSeconds += sample
	}
	avgMinutes := float64(totalSeconds) / float64(len(samples)) / 60

	severity := waitTimeThresholds.ClassifyAscending(avgMinutes)
	if severity == domain.SeverityLow {
		return nil, nil
	}
	return s.newAnomaly(orgID, domain.AnomalyHighWaitTime, severity,
		"High average wait time",
		fmt.Sprintf("Average wait over the last 4 hours is %.1f minutes across %d tickets.", avgMinutes, len(samples)),
		avgMinutes, waitTimeThresholds.Medium), nil
}

func (s *AnomalyService) checkNoShowRate(ctx context.Context, orgID string) (*domain.Anomaly, error) {
	today, err := s.tickets.ListForOrgCreatedSince(ctx, orgID, domain.DateKey(s.now()))
	if err != nil {
		return nil, err
	}
	if len(today) < minNoShowSamples {
		return nil, nil
	}
	noShows := 0
	for _, ticket := range today {
		if ticket.Status == domain.TicketStatusNoShow {
			noShows++
		}
	}
	rate := float64(noShows) / float64(len(today)) * 100

	severity := noShowThresholds.ClassifyAscending(rate)
	if severity == domain.SeverityLow {
		return nil, nil
	}
	return s.newAnomaly(orgID, domain.AnomalyHighNoShow, severity,
		"High no-show rate",
		fmt.Sprintf("%.1f%% of today's %d tickets were no-shows.", rate, len(today)),
		rate, noShowThresholds.Medium), nil
}

func (s *AnomalyService) checkSatisfaction(ctx context.Context, orgID string) (*domain.Anomaly, error) {
	ratings, err := s.tickets.RatingsSince(ctx, orgID, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	if len(ratings) < minCSATSamples {
		return nil, nil
	}
	satisfied := 0
	for _, rating := range ratings {
		if rating >= satisfiedRatingMin {
			satisfied++
		}
	}
	csat := float64(satisfied) / float64(len(ratings)) * 100

	severity := csatThresholds.ClassifyDescending(csat)
	if severity == domain.SeverityLow {
		return nil, nil
	}
	return s.newAnomaly(orgID, domain.AnomalyLowCSAT, severity,
		"Low customer satisfaction",
		fmt.Sprintf("CSAT over the last 7 days is %.1f%% across %d rated tickets.", csat, len(ratings)),
		csat, csatThresholds.Medium), nil
}

func (s *AnomalyService) checkTrafficSpike(ctx context.Context, orgID string) (*domain.Anomaly, error) {
	week, err := s.tickets.ListForOrgCreatedSince(ctx, orgID, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	if len(week) == 0 {
		return nil, nil
	}
	todayStart := domain.DateKey(s.now())
	todayCount := 0
	for _, ticket := range week {
		if !ticket.CreatedAt.Before(todayStart) {
			todayCount++
		}
	}
	dailyAvg := float64(len(week)) / 7
	multiplier := float64(todayCount) / dailyAvg

	severity := spikeThresholds.ClassifyAscending(multiplier)
	if severity == domain.SeverityLow {
		return nil, nil
	}
	return s.newAnomaly(orgID, domain.AnomalyTrafficSpike, severity,
		"Traffic spike",
		fmt.Sprintf("Today's %d tickets are %.1fx the 7-day daily average of %.1f.", todayCount, multiplier, dailyAvg),
		multiplier, spikeThresholds.Medium), nil
}

// persist inserts the candidate unless an unresolved anomaly of the
// same (organization, type) already exists within the dedup window.
func (s *AnomalyService) persist(ctx context.Context, anomaly *domain.Anomaly) (bool, error) {
	exists, err := s.anomalies.RecentUnresolvedExists(ctx, anomaly.OrganizationID, anomaly.Type, s.now().Add(-dedupWindow))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.anomalies.Insert(ctx, anomaly); err != nil {
		return false, err
	}
	s.metrics.RecordAnomaly(string(anomaly.Type))
	s.publishDetected(ctx, anomaly)
	return true, nil
}

func (s *AnomalyService) newAnomaly(orgID string, anomalyType domain.AnomalyType, severity domain.AnomalySeverity, title, description string, value, threshold float64) *domain.Anomaly {
	return &domain.Anomaly{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Type:           anomalyType,
		Severity:       severity,
		Title:          title,
		Description:    description,
		MetricValue:    value,
		ThresholdValue: threshold,
		CreatedAt:      s.now(),
	}
}

// ListAnomalies returns an organization's recent anomalies.
func (s *AnomalyService) ListAnomalies(ctx context.Context, orgID string, includeResolved bool, limit int) ([]domain.Anomaly, error) {
	anomalies, err := s.anomalies.ListForOrg(ctx, orgID, includeResolved, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return anomalies, nil
}

// ResolveAnomaly marks an anomaly resolved. This is the operator
// action; the detector never auto-clears findings.
func (s *AnomalyService) ResolveAnomaly(ctx context.Context, id string) error {
	if err := s.anomalies.Resolve(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AnomalyService) publishDetected(ctx context.Context, anomaly *domain.Anomaly) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventAnomalyDetected,
		OrganizationID: anomaly.OrganizationID,
		Timestamp:      s.now(),
		Payload: events.AnomalyDetectedPayload{
			AnomalyID:   anomaly.ID,
			Type:        anomaly.Type,
			Severity:    anomaly.Severity,
			Title:       anomaly.Title,
			MetricValue: anomaly.MetricValue,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
