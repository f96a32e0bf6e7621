package eventstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Store durably records every event emitted for a run so reconnecting
// clients can replay it. Reads use short-lived sessions only — never a
// handle held across an SSE yield.
type Store struct {
	db bun.IDB
}

func NewStore(db bun.IDB) *Store {
	return &Store{db: db}
}

// Append atomically persists one event and returns its assigned,
// strictly-increasing id. Append takes no lock of its own: ids come
// from the BIGSERIAL sequence, so concurrent Appends for the same
// run_id are ordered by the order in which the sequence assigned them.
func (s *Store) Append(ctx context.Context, runID, eventType string, payload map[string]any) (int64, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	ev := &Event{RunID: runID, EventType: eventType, Payload: payload}
	if _, err := s.db.NewInsert().Model(ev).Returning("id").Exec(ctx); err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return ev.ID, nil
}

// EventsAfter returns events for runID with id strictly greater than
// afterID, in id order. When includeTokens is false, supervisor_token
// events are filtered out server-side.
func (s *Store) EventsAfter(ctx context.Context, runID string, afterID int64, includeTokens bool) ([]*Event, error) {
	q := s.db.NewSelect().
		Model((*Event)(nil)).
		Where("run_id = ?", runID).
		Where("id > ?", afterID).
		Order("id ASC")

	if !includeTokens {
		q = q.Where("event_type != ?", "supervisor_token")
	}

	var events []*Event
	if err := q.Scan(ctx, &events); err != nil {
		return nil, fmt.Errorf("load events after %d: %w", afterID, err)
	}
	return events, nil
}
