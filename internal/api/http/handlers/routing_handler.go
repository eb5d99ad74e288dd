package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/queuewise/queue-intel/internal/api/dto"
	"github.com/queuewise/queue-intel/internal/domain"
	"github.com/queuewise/queue-intel/internal/service"
	apperrors "github.com/queuewise/queue-intel/pkg/util"
)

// RoutingHandler manages routing decision and configuration endpoints.
type RoutingHandler struct {
	service *service.RoutingService
}

// NewRoutingHandler constructs handler.
func NewRoutingHandler(routingService *service.RoutingService) *RoutingHandler {
	return &RoutingHandler{service: routingService}
}

// Decide POST /v1/routing/decision.
func (h *RoutingHandler) Decide(c *fiber.Ctx) error {
	var req dto.RouteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OrganizationID == "" || req.BranchID == "" || req.ServiceID == "" {
		return apperrors.NewValidationError("organization_id, branch_id, service_id required", nil)
	}

	result, err := h.service.RouteTicket(c.UserContext(), req.OrganizationID, req.BranchID, req.ServiceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RoutingResultResponse{
		AgentID:   result.AgentID,
		StationID: result.StationID,
		Reason:    result.Reason,
	}})
}

// GetConfig GET /v1/organizations/:orgId/routing/config.
func (h *RoutingHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.service.GetRoutingConfig(c.UserContext(), c.Params("orgId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": routingConfigResponse(cfg)})
}

// SaveConfig PUT /v1/organizations/:orgId/routing/config.
func (h *RoutingHandler) SaveConfig(c *fiber.Ctx) error {
	var req dto.RoutingConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cfg, err := h.service.SaveRoutingConfig(c.UserContext(), domain.RoutingConfig{
		OrganizationID:    c.Params("orgId"),
		Strategy:          req.Strategy,
		LoadBalanceWeight: req.LoadBalanceWeight,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": routingConfigResponse(cfg)})
}

// ListSkills GET /v1/agents/:agentId/skills.
func (h *RoutingHandler) ListSkills(c *fiber.Ctx) error {
	skills, err := h.service.ListAgentSkills(c.UserContext(), c.Params("agentId"))
	if err != nil {
		return err
	}
	items := make([]dto.AgentSkillResponse, 0, len(skills))
	for _, skill := range skills {
		items = append(items, agentSkillResponse(skill))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SaveSkill PUT /v1/agents/:agentId/skills.
func (h *RoutingHandler) SaveSkill(c *fiber.Ctx) error {
	var req dto.AgentSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceID == "" {
		return apperrors.NewValidationError("service_id required", nil)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	skill, err := h.service.SaveAgentSkill(c.UserContext(), domain.AgentSkill{
		AgentID:     c.Params("agentId"),
		ServiceID:   req.ServiceID,
		Proficiency: req.Proficiency,
		Active:      active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agentSkillResponse(skill)})
}

func routingConfigResponse(cfg domain.RoutingConfig) dto.RoutingConfigResponse {
	return dto.RoutingConfigResponse{
		OrganizationID:    cfg.OrganizationID,
		Strategy:          cfg.Strategy,
		LoadBalanceWeight: cfg.LoadBalanceWeight,
	}
}

func agentSkillResponse(skill domain.AgentSkill) dto.AgentSkillResponse {
	return dto.AgentSkillResponse{
		ID:          skill.ID,
		AgentID:     skill.AgentID,
		ServiceID:   skill.ServiceID,
		Proficiency: skill.Proficiency,
		Active:      skill.Active,
	}
}
