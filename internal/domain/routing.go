package domain

// RoutingStrategy selects how the next agent is picked for a ticket.
type RoutingStrategy string

const (
	StrategyRoundRobin RoutingStrategy = "round_robin"
	StrategyLeastBusy  RoutingStrategy = "least_busy"
	StrategySkillBased RoutingStrategy = "skill_based"
	StrategyHybrid     RoutingStrategy = "hybrid"
)

// Valid reports whether the strategy is a known enum member.
func (s RoutingStrategy) Valid() bool {
	switch s {
	case StrategyRoundRobin, StrategyLeastBusy, StrategySkillBased, StrategyHybrid:
		return true
	}
	return false
}

// RoutingConfig is the per-organization routing policy singleton.
// LoadBalanceWeight is only consulted by the hybrid strategy.
type RoutingConfig struct {
	OrganizationID    string
	Strategy          RoutingStrategy
	LoadBalanceWeight float64
	Active            bool
}

// DefaultRoutingConfig is the policy applied when an organization has
// never saved one.
func DefaultRoutingConfig(orgID string) RoutingConfig {
	return RoutingConfig{
		OrganizationID:    orgID,
		Strategy:          StrategyRoundRobin,
		LoadBalanceWeight: 0.5,
		Active:            true,
	}
}

// RoutingResult is the outcome of one routing decision. A nil AgentID
// with reason "no active agents" is a valid result, not an error.
type RoutingResult struct {
	AgentID   *string
	StationID *string
	Reason    string
}

// NoAgentsResult signals that no routing is possible right now.
func NoAgentsResult() RoutingResult {
	return RoutingResult{Reason: "no active agents"}
}
