package eventbus

import (
	"context"
	"fmt"

	"github.com/cipher982/zerg/domain/eventstore"
	"github.com/cipher982/zerg/pkg/sse"
)

// Publisher commits an event to the Event Store before fanning it out
// on the Bus, satisfying the ordering invariant that a client which
// observes a live event must also be able to replay it after
// reconnecting: the row must exist before the publish happens.
type Publisher struct {
	store *eventstore.Store
	bus   *Bus
}

func NewPublisher(store *eventstore.Store, bus *Bus) *Publisher {
	return &Publisher{store: store, bus: bus}
}

// Emit persists then publishes a run-scoped event, returning its
// assigned event store id.
func (p *Publisher) Emit(ctx context.Context, runID, ownerID string, eventType sse.EventType, payload map[string]any) (int64, error) {
	id, err := p.store.Append(ctx, runID, string(eventType), payload)
	if err != nil {
		return 0, fmt.Errorf("persist event: %w", err)
	}

	p.bus.Publish(Event{
		Type:    eventType,
		RunID:   runID,
		OwnerID: ownerID,
		Payload: payload,
		EventID: id,
	})
	return id, nil
}
