package eventbus

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipher982/zerg/pkg/sse"
)

func newTestBus() *Bus {
	return NewBus(slog.Default())
}

func TestSubscribePublishDelivers(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{})

	unsub := bus.Subscribe(sse.EventSupervisorStarted, func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		close(done)
	})
	defer unsub()

	bus.Publish(Event{Type: sse.EventSupervisorStarted, RunID: "run-1"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "run-1", received[0].RunID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus()

	var calls int
	var mu sync.Mutex
	unsub := bus.Subscribe(sse.EventError, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	unsub()

	bus.Publish(Event{Type: sse.EventError})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestSubscriberCounts(t *testing.T) {
	bus := newTestBus()
	assert.Equal(t, 0, bus.GetSubscriberCount(sse.EventWorkerHeartbeat))

	unsub1 := bus.Subscribe(sse.EventWorkerHeartbeat, func(Event) {})
	unsub2 := bus.Subscribe(sse.EventWorkerHeartbeat, func(Event) {})
	defer unsub1()
	defer unsub2()

	assert.Equal(t, 2, bus.GetSubscriberCount(sse.EventWorkerHeartbeat))
	assert.Equal(t, 2, bus.GetTotalSubscriberCount())
}

func TestPanickingHandlerDoesNotBlockSiblings(t *testing.T) {
	bus := newTestBus()

	done := make(chan struct{})
	unsub1 := bus.Subscribe(sse.EventWorkerComplete, func(Event) {
		panic("boom")
	})
	unsub2 := bus.Subscribe(sse.EventWorkerComplete, func(Event) {
		close(done)
	})
	defer unsub1()
	defer unsub2()

	bus.Publish(Event{Type: sse.EventWorkerComplete})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sibling handler never ran")
	}
}
