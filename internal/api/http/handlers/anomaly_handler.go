package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/queuewise/queue-intel/internal/api/dto"
	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/service"
)

// AnomalyHandler serves sweep, listing and resolution endpoints.
type AnomalyHandler struct {
	service *service.AnomalyService
}

// NewAnomalyHandler constructs handler.
func NewAnomalyHandler(anomalyService *service.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{service: anomalyService}
}

// Sweep POST /v1/anomalies/sweep.
func (h *AnomalyHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.service.DetectAnomalies(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		Detected: result.Detected,
		Checked:  result.Checked,
	}})
}

// List GET /v1/organizations/:orgId/anomalies.
func (h *AnomalyHandler) List(c *fiber.Ctx) error {
	includeResolved := c.QueryBool("include_resolved", false)
	limit := c.QueryInt("limit", 50)

	anomalies, err := h.service.ListAnomalies(c.UserContext(), c.Params("orgId"), includeResolved, limit)
	if err != nil {
		return err
	}
	items := make([]dto.AnomalyResponse, 0, len(anomalies))
	for _, anomaly := range anomalies {
		items = append(items, anomalyResponse(anomaly))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Resolve POST /v1/anomalies/:id/resolve.
func (h *AnomalyHandler) Resolve(c *fiber.Ctx) error {
	if err := h.service.ResolveAnomaly(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"resolved": true}})
}

func anomalyResponse(anomaly domain.Anomaly) dto.AnomalyResponse {
	return dto.AnomalyResponse{
		ID:             anomaly.ID,
		OrganizationID: anomaly.OrganizationID,
		BranchID:       anomaly.BranchID,
		Type:           anomaly.Type,
		Severity:       anomaly.Severity,
		Title:          anomaly.Title,
		Description:    anomaly.Description,
		MetricValue:    anomaly.MetricValue,
		ThresholdValue: anomaly.ThresholdValue,
		Resolved:       anomaly.Resolved,
		ResolvedAt:     anomaly.ResolvedAt,
		CreatedAt:      anomaly.CreatedAt,
	}
}
