package eventbus

import (
	"time"

	"github.com/cipher982/zerg/pkg/sse"
)

// Event is one message delivered to live subscribers. RunID is empty
// for events that are not run-scoped (there are none in this domain —
// every canonical event type carries a run_id).
type Event struct {
	Type      sse.EventType  `json:"type"`
	RunID     string         `json:"runId"`
	OwnerID   string         `json:"ownerId"`
	Payload   map[string]any `json:"payload"`
	EventID   int64          `json:"eventId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Handler receives events published on the bus. It must not block; slow
// work belongs on the handler's own goroutine/queue.
type Handler func(Event)
