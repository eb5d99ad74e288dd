package domain

// AgentSkill rates an agent's proficiency for one service. Uniqueness
// is per (agent, service).
type AgentSkill struct {
	ID          string
	AgentID     string
	ServiceID   string
	Proficiency int
	Active      bool
}

// ClampProficiency forces a proficiency into the valid [1,10] range.
// Out-of-range input is clamped, not rejected.
func ClampProficiency(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}
