package events

import (
	"time"

	"github.com/queuewise/queue-intel/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketRouted     EventType = "ticket_routed"
	EventForecastComputed EventType = "forecast_computed"
	EventAnomalyDetected  EventType = "anomaly_detected"
)

// Event represents a domain event emitted by services. Publication is
// fire-and-forget; no service waits on handler outcomes.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// TicketRoutedPayload payload.
type TicketRoutedPayload struct {
	BranchID  string  `json:"branch_id"`
	ServiceID string  `json:"service_id"`
	AgentID   *string `json:"agent_id,omitempty"`
	StationID *string `json:"station_id,omitempty"`
	Reason    string  `json:"reason"`
}

// ForecastComputedPayload payload.
type ForecastComputedPayload struct {
	BranchID       string `json:"branch_id"`
	Date           string `json:"date"`
	TotalPredicted int    `json:"total_predicted"`
}

// AnomalyDetectedPayload payload.
type AnomalyDetectedPayload struct {
	AnomalyID   string                 `json:"anomaly_id"`
	Type        domain.AnomalyType     `json:"type"`
	Severity    domain.AnomalySeverity `json:"severity"`
	Title       string                 `json:"title"`
	MetricValue float64                `json:"metric_value"`
}
