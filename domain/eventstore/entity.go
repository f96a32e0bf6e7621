package eventstore

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a persisted AgentRunEvent, durable record of one step of a
// run's lifecycle so a reconnecting SSE client can replay it.
type Event struct {
	bun.BaseModel `bun:"table:agent_run_events,alias:e"`

	ID        int64          `bun:"id,pk,autoincrement" json:"id"`
	RunID     string         `bun:"run_id,notnull,type:uuid" json:"runId"`
	EventType string         `bun:"event_type,notnull" json:"eventType"`
	Payload   map[string]any `bun:"payload,type:jsonb,notnull,default:'{}'" json:"payload"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
