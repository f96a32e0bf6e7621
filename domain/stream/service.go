// Package stream implements the SSE Replay+Live Stream: a resumable
// `/stream/runs/{run_id}` endpoint and a legacy, non-resumable
// `/supervisor/events` endpoint, both backed by the same replay-then-live
// algorithm.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cipher982/zerg/domain/eventbus"
	"github.com/cipher982/zerg/domain/eventstore"
	"github.com/cipher982/zerg/domain/runs"
	"github.com/cipher982/zerg/domain/workerqueue"
	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/pkg/apperror"
	"github.com/cipher982/zerg/pkg/logger"
	"github.com/cipher982/zerg/pkg/sse"
)

// canonicalEventTypes is every event type the bus carries. The stream
// subscribes to all of them up front so subscription always precedes
// history replay, regardless of which types a given run happens to emit.
var canonicalEventTypes = []sse.EventType{
	sse.EventSupervisorStarted,
	sse.EventSupervisorThinking,
	sse.EventSupervisorToken,
	sse.EventSupervisorComplete,
	sse.EventSupervisorDeferred,
	sse.EventSupervisorHeartbeat,
	sse.EventWorkerSpawned,
	sse.EventWorkerStarted,
	sse.EventWorkerComplete,
	sse.EventWorkerSummaryReady,
	sse.EventWorkerToolStarted,
	sse.EventWorkerToolCompleted,
	sse.EventWorkerToolFailed,
	sse.EventWorkerHeartbeat,
	sse.EventError,
}

// eventChanBuffer bounds how far a slow client can fall behind the bus
// before its events are dropped. A dropped live event is logged and
// skipped; the stream stays open, and the client receives that event
// only if it later reconnects with a Last-Event-ID that precedes it and
// the eventstore replays it.
const eventChanBuffer = 64

type Service struct {
	runs   *runs.Service
	events *eventstore.Store
	bus    *eventbus.Bus
	queue  *workerqueue.Service
	cfg    *config.Config
	log    *slog.Logger
}

func NewService(runsSvc *runs.Service, events *eventstore.Store, bus *eventbus.Bus, queue *workerqueue.Service, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		runs:   runsSvc,
		events: events,
		bus:    bus,
		queue:  queue,
		cfg:    cfg,
		log:    log.With(logger.Scope("stream")),
	}
}

// Stream runs the six-step replay-then-live algorithm against w until
// the run reaches a terminal state with no pending workers, the client
// disconnects, or ctx is cancelled. legacy disables history replay,
// matching the non-resumable `/supervisor/events` contract.
func (s *Service) Stream(ctx context.Context, w *sse.Writer, ownerID, runID string, lastEventID int64, legacy bool) error {
	run, err := s.runs.GetOwned(ctx, runID, ownerID)
	if errors.Is(err, runs.ErrNotFound) {
		return apperror.ErrNotFound
	}
	if err != nil {
		return apperror.NewInternal("load run", err)
	}

	eventCh := make(chan eventbus.Event, eventChanBuffer)
	unsubs := make([]func(), 0, len(canonicalEventTypes))
	for _, et := range canonicalEventTypes {
		unsubs = append(unsubs, s.bus.Subscribe(et, func(ev eventbus.Event) {
			select {
			case eventCh <- ev:
			default:
				s.log.Warn("stream channel full, dropping live event",
					slog.String("run_id", runID), slog.String("event_type", string(ev.Type)))
			}
		}))
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	if err := w.Start(); err != nil {
		return err
	}

	supervisorDone := run.Status.IsTerminal()
	lastSent := lastEventID

	if !legacy {
		history, err := s.events.EventsAfter(ctx, runID, lastEventID, false)
		if err != nil {
			return apperror.NewInternal("replay events", err)
		}
		for _, ev := range history {
			if writeErr := w.WriteEventWithID(ev.ID, ev.EventType, sse.NewFrame(sse.EventType(ev.EventType), ev.Payload)); writeErr != nil {
				return nil
			}
			if ev.ID > lastSent {
				lastSent = ev.ID
			}
		}
	}

	pending, err := s.queue.PendingCount(ctx, runID)
	if err != nil {
		s.log.Warn("failed to load pending worker count", slog.String("error", err.Error()))
		pending = 0
	}
	if supervisorDone && pending == 0 {
		return nil
	}

	heartbeat := time.NewTicker(s.cfg.SSEHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if writeErr := w.WriteEventWithID(0, string(sse.EventSupervisorHeartbeat), sse.NewFrame(sse.EventSupervisorHeartbeat, map[string]any{"run_id": runID})); writeErr != nil {
				return nil
			}
		case ev := <-eventCh:
			if ev.RunID != runID || ev.OwnerID != ownerID {
				continue
			}
			if ev.EventID != 0 && ev.EventID <= lastSent {
				continue
			}

			done := false
			switch ev.Type {
			case sse.EventWorkerSpawned:
				pending++
			case sse.EventWorkerComplete, sse.EventWorkerSummaryReady:
				if pending > 0 {
					pending--
				}
			case sse.EventSupervisorComplete:
				supervisorDone = true
			case sse.EventSupervisorDeferred, sse.EventError:
				// A deferred run or a hard error ends the stream outright,
				// even if workers are still in flight — there is no
				// supervisor turn left that will ever consume their results.
				supervisorDone = true
				done = true
			}

			if writeErr := w.WriteEventWithID(ev.EventID, string(ev.Type), sse.NewFrame(ev.Type, ev.Payload)); writeErr != nil {
				return nil
			}
			if ev.EventID > lastSent {
				lastSent = ev.EventID
			}

			if done || (supervisorDone && pending == 0) {
				return nil
			}
		}
	}
}
