package domain

import "time"

// ForecastCell is one (branch, date, hour) prediction. Predicted is
// stored as a float and rounded for display; Actual is filled in later
// by the store once the hour has passed.
type ForecastCell struct {
	BranchID  string
	Date      time.Time
	Hour      int
	Predicted float64
	Actual    *int
}

// HourlyForecast is the display form of a cell.
type HourlyForecast struct {
	Hour      int  `json:"hour"`
	Predicted int  `json:"predicted"`
	Actual    *int `json:"actual"`
}

// DailyForecast is the 24-hour profile for one branch and date.
// TotalActual stays nil until at least one hour has an observed count.
type DailyForecast struct {
	BranchID       string           `json:"branch_id"`
	Date           string           `json:"date"`
	Hourly         []HourlyForecast `json:"hourly"`
	TotalPredicted int              `json:"total_predicted"`
	TotalActual    *int             `json:"total_actual"`
}

// StaffingRecommendation is derived from a forecast, never persisted.
type StaffingRecommendation struct {
	Hour              int    `json:"hour"`
	PredictedTickets  int    `json:"predicted_tickets"`
	RecommendedAgents int    `json:"recommended_agents"`
	DemandLevel       string `json:"demand_level"`
}

// DateKey normalizes a timestamp to its calendar date in UTC.
func DateKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
