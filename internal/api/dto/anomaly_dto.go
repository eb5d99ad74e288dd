package dto

import (
	"time"

	"github.com/queuewise/queue-intel/internal/domain"
)

// AnomalyResponse response.
type AnomalyResponse struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	BranchID       *string                `json:"branch_id"`
	Type           domain.AnomalyType     `json:"type"`
	Severity       domain.AnomalySeverity `json:"severity"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	MetricValue    float64                `json:"metric_value"`
	ThresholdValue float64                `json:"threshold_value"`
	Resolved       bool                   `json:"resolved"`
	ResolvedAt     *time.Time             `json:"resolved_at"`
	CreatedAt      time.Time              `json:"created_at"`
}

// SweepResponse response.
type SweepResponse struct {
	Detected int `json:"detected"`
	Checked  int `json:"checked"`
}
