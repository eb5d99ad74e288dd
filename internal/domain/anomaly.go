package domain

import "time"

// AnomalyType identifies which operational metric fired.
type AnomalyType string

const (
	AnomalyHighWaitTime AnomalyType = "high_wait_time"
	AnomalyHighNoShow   AnomalyType = "high_no_show"
	AnomalyLowCSAT      AnomalyType = "low_csat"
	AnomalyTrafficSpike AnomalyType = "traffic_spike"
)

// AnomalySeverity ranks how far a metric sits from its baseline.
type AnomalySeverity string

const (
	SeverityLow      AnomalySeverity = "low"
	SeverityMedium   AnomalySeverity = "medium"
	SeverityHigh     AnomalySeverity = "high"
	SeverityCritical AnomalySeverity = "critical"
)

// Anomaly is a detected operational issue. BranchID nil means the
// finding is organization-wide. Resolution is an operator action;
// the detector never clears anomalies on its own.
type Anomaly struct {
	ID             string
	OrganizationID string
	BranchID       *string
	Type           AnomalyType
	Severity       AnomalySeverity
	Title          string
	Description    string
	MetricValue    float64
	ThresholdValue float64
	Resolved       bool
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// Thresholds is a three-tier severity table for one metric.
type Thresholds struct {
	Medium   float64
	High     float64
	Critical float64
}

// ClassifyAscending applies "higher is worse" semantics: severity
// escalates as the value passes each tier, and is monotonic in the
// value for a fixed table.
func (t Thresholds) ClassifyAscending(value float64) AnomalySeverity {
	switch {
	case value >= t.Critical:
		return SeverityCritical
	case value >= t.High:
		return SeverityHigh
	case value >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ClassifyDescending applies "lower is worse" semantics, used for
// satisfaction where small values are the bad ones.
func (t Thresholds) ClassifyDescending(value float64) AnomalySeverity {
	switch {
	case value <= t.Critical:
		return SeverityCritical
	case value <= t.High:
		return SeverityHigh
	case value <= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
