package runs

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle state of an AgentRun.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusWaiting   Status = "WAITING"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusDeferred  Status = "DEFERRED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusDeferred, StatusCancelled:
		return true
	default:
		return false
	}
}

// Trigger records what caused a run to be dispatched.
type Trigger string

const (
	TriggerAPI      Trigger = "API"
	TriggerSchedule Trigger = "SCHEDULE"
	TriggerResume   Trigger = "RESUME"
)

// AgentRun is one execution attempt of a supervisor or worker conversation.
type AgentRun struct {
	bun.BaseModel `bun:"table:agent_runs,alias:r"`

	ID         string     `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	AgentID    string     `bun:"agent_id,notnull,type:uuid" json:"agentId"`
	ThreadID   string     `bun:"thread_id,notnull,type:uuid" json:"threadId"`
	OwnerID    string     `bun:"owner_id,notnull,type:uuid" json:"ownerId"`
	Status     Status     `bun:"status,notnull,default:'RUNNING'" json:"status"`
	Trigger    Trigger    `bun:"trigger,notnull,default:'API'" json:"trigger"`
	StartedAt  time.Time  `bun:"started_at,nullzero,notnull,default:current_timestamp" json:"startedAt"`
	FinishedAt *time.Time `bun:"finished_at" json:"finishedAt,omitempty"`
	Error      string     `bun:"error,nullzero" json:"error,omitempty"`
}
