package dto

import "github.com/queuewise/queue-intel/internal/domain"

// RouteTicketRequest payload.
type RouteTicketRequest struct {
	OrganizationID string `json:"organization_id"`
	BranchID       string `json:"branch_id"`
	ServiceID      string `json:"service_id"`
}

// RoutingResultResponse response.
type RoutingResultResponse struct {
	AgentID   *string `json:"agent_id"`
	StationID *string `json:"station_id"`
	Reason    string  `json:"reason"`
}

// RoutingConfigRequest payload.
type RoutingConfigRequest struct {
	Strategy          domain.RoutingStrategy `json:"strategy"`
	LoadBalanceWeight float64                `json:"load_balance_weight"`
}

// RoutingConfigResponse response.
type RoutingConfigResponse struct {
	OrganizationID    string                 `json:"organization_id"`
	Strategy          domain.RoutingStrategy `json:"strategy"`
	LoadBalanceWeight float64                `json:"load_balance_weight"`
}

// AgentSkillRequest payload.
type AgentSkillRequest struct {
	ServiceID   string `json:"service_id"`
	Proficiency int    `json:"proficiency"`
	Active      *bool  `json:"active"`
}

// AgentSkillResponse response.
type AgentSkillResponse struct {
	ID          string `json:"id"`
	AgentID     string `json:"agent_id"`
	ServiceID   string `json:"service_id"`
	Proficiency int    `json:"proficiency"`
	Active      bool   `json:"active"`
}
