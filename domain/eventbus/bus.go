package eventbus

import (
	"log/slog"
	"sync"

	"github.com/cipher982/zerg/pkg/logger"
	"github.com/cipher982/zerg/pkg/sse"
)

// Bus is an in-process publish/subscribe fan-out of typed events. It
// persists nothing — that is the Event Store's job. Delivery to a
// single subscriber is serialized (each delivery runs on its own
// goroutine and holds that subscriber's lock, so a handler never runs
// concurrently with itself; the order in which waiting deliveries take
// the lock is not defined); delivery across subscribers is concurrent,
// and a panicking handler is recovered and logged so it never blocks
// its siblings.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[sse.EventType][]*subscription
	log         *slog.Logger
}

type subscription struct {
	id      int64
	handler Handler
	mu      sync.Mutex // serializes deliveries to this subscriber
}

func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[sse.EventType][]*subscription),
		log:         log.With(logger.Scope("eventbus")),
	}
}

// Subscribe registers handler for eventType and returns an unsubscribe
// function.
func (b *Bus) Subscribe(eventType sse.EventType, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := nextSubID()
	sub := &subscription{id: id, handler: handler}
	b.subscribers[eventType] = append(b.subscribers[eventType], sub)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// GetSubscriberCount returns how many handlers are subscribed to a
// specific event type.
func (b *Bus) GetSubscriberCount(eventType sse.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

// GetTotalSubscriberCount returns the subscriber count across all event
// types, counting one subscriber once per type it's registered under.
func (b *Bus) GetTotalSubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0
	for _, subs := range b.subscribers {
		total += len(subs)
	}
	return total
}

// Publish delivers event to every subscriber of event.Type, one
// goroutine per subscriber so a slow or blocking handler never delays
// its siblings.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := append([]*subscription(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		go b.deliver(sub, event)
	}
}

func (b *Bus) deliver(sub *subscription, event Event) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				slog.Any("recovered", r),
				slog.String("event_type", string(event.Type)),
				slog.String("run_id", event.RunID),
			)
		}
	}()
	sub.handler(event)
}

var subIDCounter int64
var subIDMu sync.Mutex

func nextSubID() int64 {
	subIDMu.Lock()
	defer subIDMu.Unlock()
	subIDCounter++
	return subIDCounter
}
