package domain

import "time"

// AgentSession is an agent's presence at a station within a branch.
// Only sessions with Active=true are routing candidates.
type AgentSession struct {
	ID        string
	AgentID   string
	BranchID  string
	StationID string
	Active    bool
	CreatedAt time.Time
}
