package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/queuewise/queue-intel/internal/api/dto"
	"github.com/queuewise/queue-intel/internal/service"
	apperrors "github.com/queuewise/queue-intel/pkg/util"
)

// ForecastHandler serves demand forecasts and staffing tables.
type ForecastHandler struct {
	service *service.ForecastService
}

// NewForecastHandler constructs handler.
func NewForecastHandler(forecastService *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: forecastService}
}

// GetForecast GET /v1/organizations/:orgId/branches/:branchId/forecast.
func (h *ForecastHandler) GetForecast(c *fiber.Ctx) error {
	date, err := parseDateQuery(c)
	if err != nil {
		return err
	}
	forecast, err := h.service.GetForecast(c.UserContext(), c.Params("orgId"), c.Params("branchId"), date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": forecast})
}

// GetStaffing GET /v1/organizations/:orgId/branches/:branchId/staffing.
func (h *ForecastHandler) GetStaffing(c *fiber.Ctx) error {
	date, err := parseDateQuery(c)
	if err != nil {
		return err
	}
	avgServiceMinutes := parseIntQuery(c, "avg_service_minutes", 10)
	slaTargetMinutes := parseIntQuery(c, "sla_target_minutes", 15)

	recommendations, err := h.service.GetStaffingRecommendations(
		c.UserContext(), c.Params("orgId"), c.Params("branchId"), date, avgServiceMinutes, slaTargetMinutes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffingResponse{
		BranchID:        c.Params("branchId"),
		Date:            date.Format("2006-01-02"),
		Recommendations: recommendations,
	}})
}

func parseDateQuery(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": raw})
	}
	return date, nil
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
