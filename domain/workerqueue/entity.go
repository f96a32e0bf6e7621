package workerqueue

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle state of a WorkerJob.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// IsTerminal reports whether status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimeout:
		return true
	default:
		return false
	}
}

// WorkerJob is one unit of work queued to be executed by the dispatcher.
type WorkerJob struct {
	bun.BaseModel `bun:"table:worker_jobs,alias:wj"`

	ID               string         `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	OwnerID          string         `bun:"owner_id,notnull,type:uuid" json:"ownerId"`
	SupervisorRunID  string         `bun:"supervisor_run_id,nullzero,type:uuid" json:"supervisorRunId,omitempty"`
	Task             string         `bun:"task,notnull" json:"task"`
	Model            string         `bun:"model,notnull" json:"model"`
	Config           map[string]any `bun:"config,type:jsonb" json:"config,omitempty"`
	Status           Status         `bun:"status,notnull,default:'queued'" json:"status"`
	WorkerID         string         `bun:"worker_id,nullzero" json:"workerId,omitempty"`
	StartedAt        *time.Time     `bun:"started_at" json:"startedAt,omitempty"`
	FinishedAt       *time.Time     `bun:"finished_at" json:"finishedAt,omitempty"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Error            string         `bun:"error,nullzero" json:"error,omitempty"`
	TraceID          string         `bun:"trace_id,nullzero" json:"traceId,omitempty"`
}
