package dto

import "github.com/queuewise/queue-intel/internal/domain"

// DailyForecastResponse response. The domain type already carries
// display-ready JSON tags; this alias keeps the handler surface uniform.
type DailyForecastResponse = domain.DailyForecast

// StaffingResponse response.
type StaffingResponse struct {
	BranchID        string                          `json:"branch_id"`
	Date            string                          `json:"date"`
	Recommendations []domain.StaffingRecommendation `json:"recommendations"`
}
