package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/queuewise/queue-intel/internal/domain"
)

// In-memory fakes for the store contracts. Each fake keeps its data as
// plain slices and applies the same filters the SQL would.

type fakeTicketRepo struct {
	branchTickets []domain.Ticket
	servingCounts map[string]int
	waitSamples   []int
	orgTickets    []domain.Ticket
	ratings       []int

	branchErr  error
	servingErr error
	waitErr    error
	orgErr     error
	ratingsErr error

	branchCalls int
}

func (f *fakeTicketRepo) ListForBranchSince(_ context.Context, branchID string, since time.Time, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	f.branchCalls++
	if f.branchErr != nil {
		return nil, f.branchErr
	}
	allowed := make(map[domain.TicketStatus]bool, len(statuses))
	for _, status := range statuses {
		allowed[status] = true
	}
	var result []domain.Ticket
	for _, ticket := range f.branchTickets {
		if ticket.BranchID != branchID || ticket.CreatedAt.Before(since) {
			continue
		}
		if len(statuses) > 0 && !allowed[ticket.Status] {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) ServingCountByAgent(context.Context, string) (map[string]int, error) {
	if f.servingErr != nil {
		return nil, f.servingErr
	}
	if f.servingCounts == nil {
		return map[string]int{}, nil
	}
	return f.servingCounts, nil
}

func (f *fakeTicketRepo) WaitSamplesSince(context.Context, string, time.Time) ([]int, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return f.waitSamples, nil
}

func (f *fakeTicketRepo) ListForOrgCreatedSince(_ context.Context, orgID string, since time.Time) ([]domain.Ticket, error) {
	if f.orgErr != nil {
		return nil, f.orgErr
	}
	var result []domain.Ticket
	for _, ticket := range f.orgTickets {
		if ticket.OrganizationID != orgID || ticket.CreatedAt.Before(since) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) RatingsSince(context.Context, string, time.Time) ([]int, error) {
	if f.ratingsErr != nil {
		return nil, f.ratingsErr
	}
	return f.ratings, nil
}

type fakeSessionRepo struct {
	sessions []domain.AgentSession
	err      error
}

func (f *fakeSessionRepo) ActiveForBranch(context.Context, string) ([]domain.AgentSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

type fakeSkillRepo struct {
	skills []domain.AgentSkill
	saved  []domain.AgentSkill
	err    error
}

func (f *fakeSkillRepo) ActiveForService(_ context.Context, agentIDs []string, serviceID string) ([]domain.AgentSkill, error) {
	if f.err != nil {
		return nil, f.err
	}
	candidates := make(map[string]bool, len(agentIDs))
	for _, id := range agentIDs {
		candidates[id] = true
	}
	var result []domain.AgentSkill
	for _, skill := range f.skills {
		if skill.ServiceID == serviceID && skill.Active && candidates[skill.AgentID] {
			result = append(result, skill)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Proficiency > result[j].Proficiency
	})
	return result, nil
}

func (f *fakeSkillRepo) ListForAgent(_ context.Context, agentID string) ([]domain.AgentSkill, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []domain.AgentSkill
	for _, skill := range f.skills {
		if skill.AgentID == agentID {
			result = append(result, skill)
		}
	}
	return result, nil
}

func (f *fakeSkillRepo) Upsert(_ context.Context, skill *domain.AgentSkill) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *skill)
	return nil
}

type fakeConfigRepo struct {
	cfg   *domain.RoutingConfig
	saved []domain.RoutingConfig
	err   error
}

func (f *fakeConfigRepo) GetByOrg(context.Context, string) (*domain.RoutingConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg == nil {
		return nil, pgx.ErrNoRows
	}
	return f.cfg, nil
}

func (f *fakeConfigRepo) Upsert(_ context.Context, cfg *domain.RoutingConfig) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *cfg)
	return nil
}

type fakeForecastRepo struct {
	cells    map[string][]domain.ForecastCell
	computed map[string]bool
	upserts  int
}

func newFakeForecastRepo() *fakeForecastRepo {
	return &fakeForecastRepo{
		cells:    make(map[string][]domain.ForecastCell),
		computed: make(map[string]bool),
	}
}

func forecastFakeKey(branchID string, date time.Time) string {
	return branchID + "|" + domain.DateKey(date).Format("2006-01-02")
}

func (f *fakeForecastRepo) CellsForDate(_ context.Context, branchID string, date time.Time) ([]domain.ForecastCell, error) {
	return f.cells[forecastFakeKey(branchID, date)], nil
}

func (f *fakeForecastRepo) UpsertCells(_ context.Context, cells []domain.ForecastCell) error {
	f.upserts++
	for _, cell := range cells {
		key := forecastFakeKey(cell.BranchID, cell.Date)
		replaced := false
		for i := range f.cells[key] {
			if f.cells[key][i].Hour == cell.Hour {
				f.cells[key][i] = cell
				replaced = true
			}
		}
		if !replaced {
			f.cells[key] = append(f.cells[key], cell)
		}
	}
	return nil
}

func (f *fakeForecastRepo) IsComputed(_ context.Context, branchID string, date time.Time) (bool, error) {
	return f.computed[forecastFakeKey(branchID, date)], nil
}

func (f *fakeForecastRepo) MarkComputed(_ context.Context, branchID string, date time.Time) error {
	f.computed[forecastFakeKey(branchID, date)] = true
	return nil
}

type fakeAnomalyRepo struct {
	existing  []domain.Anomaly
	inserted  []domain.Anomaly
	insertErr error
}

func (f *fakeAnomalyRepo) RecentUnresolvedExists(_ context.Context, orgID string, anomalyType domain.AnomalyType, since time.Time) (bool, error) {
	for _, anomaly := range append(f.existing, f.inserted...) {
		if anomaly.OrganizationID == orgID && anomaly.Type == anomalyType &&
			!anomaly.Resolved && !anomaly.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAnomalyRepo) Insert(_ context.Context, anomaly *domain.Anomaly) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *anomaly)
	return nil
}

func (f *fakeAnomalyRepo) ListForOrg(_ context.Context, orgID string, includeResolved bool, limit int) ([]domain.Anomaly, error) {
	var result []domain.Anomaly
	for _, anomaly := range append(f.existing, f.inserted...) {
		if anomaly.OrganizationID != orgID {
			continue
		}
		if !includeResolved && anomaly.Resolved {
			continue
		}
		result = append(result, anomaly)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (f *fakeAnomalyRepo) Resolve(_ context.Context, id string) error {
	for i := range f.inserted {
		if f.inserted[i].ID == id && !f.inserted[i].Resolved {
			f.inserted[i].Resolved = true
			return nil
		}
	}
	for i := range f.existing {
		if f.existing[i].ID == id && !f.existing[i].Resolved {
			f.existing[i].Resolved = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeOrgRepo struct {
	orgs []domain.Organization
	err  error
}

func (f *fakeOrgRepo) ListActive(context.Context) ([]domain.Organization, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orgs, nil
}

func strPtr(s string) *string {
	return &s
}

func intPtr(v int) *int {
	return &v
}
