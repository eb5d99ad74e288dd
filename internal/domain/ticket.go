package domain

import "time"

// TicketStatus enumerates lifecycle states for queue tickets. The
// lifecycle itself is owned by the ticket store; the engine only reads.
type TicketStatus string

const (
	TicketStatusWaiting     TicketStatus = "waiting"
	TicketStatusCalled      TicketStatus = "called"
	TicketStatusServing     TicketStatus = "serving"
	TicketStatusCompleted   TicketStatus = "completed"
	TicketStatusCancelled   TicketStatus = "cancelled"
	TicketStatusNoShow      TicketStatus = "no_show"
	TicketStatusTransferred TicketStatus = "transferred"
)

// MaterializedStatuses are the statuses counted as real demand when
// forecasting: cancellations and no-shows never materialized.
var MaterializedStatuses = []TicketStatus{
	TicketStatusCompleted,
	TicketStatusServing,
	TicketStatusWaiting,
	TicketStatusCalled,
}

// Ticket is a single customer visit at a branch.
type Ticket struct {
	ID             string
	OrganizationID string
	BranchID       string
	ServiceID      string
	AgentID        *string
	Status         TicketStatus
	Priority       int
	CreatedAt      time.Time
	CalledAt       *time.Time
	CompletedAt    *time.Time
	WaitSeconds    *int
	ServiceSeconds *int
	Rating         *int
	Sentiment      *string
}
