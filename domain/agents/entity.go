package agents

import (
	"time"

	"github.com/uptrace/bun"
)

// Kind distinguishes a supervisor agent (one per owner, long-lived) from
// a worker agent spawned to execute a single task.
type Kind string

const (
	KindSupervisor Kind = "supervisor"
	KindWorker     Kind = "worker"
)

// Agent is a named, typed agent configuration owned by a user.
type Agent struct {
	bun.BaseModel `bun:"table:agents,alias:ag"`

	ID                string    `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	OwnerID           string    `bun:"owner_id,notnull,type:uuid" json:"ownerId"`
	Kind              Kind      `bun:"kind,notnull" json:"kind"`
	Model             string    `bun:"model,notnull" json:"model"`
	SystemInstruction string    `bun:"system_instruction,notnull,default:''" json:"systemInstruction"`
	TaskInstruction   string    `bun:"task_instruction,notnull,default:''" json:"taskInstruction"`
	AllowedTools      []string  `bun:"allowed_tools,array" json:"allowedTools,omitempty"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}
