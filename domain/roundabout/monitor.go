// Package roundabout implements the stuck-worker watchdog described in
// component K: it never cancels a worker job itself, it only raises the
// alarm so an operator (or a future policy) can decide what to do.
package roundabout

import (
	"context"
	"log/slog"
	"time"

	"github.com/cipher982/zerg/domain/eventbus"
	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/pkg/logger"
	"github.com/cipher982/zerg/pkg/metrics"
	"github.com/cipher982/zerg/pkg/sse"
)

var progressEvents = []sse.EventType{
	sse.EventWorkerToolStarted,
	sse.EventWorkerToolCompleted,
	sse.EventWorkerToolFailed,
	sse.EventWorkerHeartbeat,
}

type Monitor struct {
	bus *eventbus.Bus
	cfg *config.Config
	log *slog.Logger
}

func NewMonitor(bus *eventbus.Bus, cfg *config.Config, log *slog.Logger) *Monitor {
	return &Monitor{bus: bus, cfg: cfg, log: log.With(logger.Scope("roundabout"))}
}

// Watch polls for progress on jobID until ctx is cancelled (the caller
// derives ctx from the job's own lifetime). Every relevant event resets
// the stall counter to zero; a counter that exceeds RoundaboutStallPolls
// is logged as a warning, never as a cancellation.
func (m *Monitor) Watch(ctx context.Context, runID, jobID string) {
	progress := make(chan struct{}, 16)
	var unsubs []func()
	for _, et := range progressEvents {
		unsubs = append(unsubs, m.bus.Subscribe(et, func(ev eventbus.Event) {
			if ev.RunID != runID {
				return
			}
			if id, _ := ev.Payload["job_id"].(string); id != jobID {
				return
			}
			select {
			case progress <- struct{}{}:
			default:
			}
		}))
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	ticker := time.NewTicker(m.cfg.RoundaboutTick)
	defer ticker.Stop()

	stalled := 0
	warned := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-progress:
			stalled = 0
			warned = false
		case <-ticker.C:
			stalled++
			if stalled > m.cfg.RoundaboutStallPolls && !warned {
				warned = true
				metrics.RoundaboutStallWarnings.Inc()
				m.log.Warn("worker job appears stuck",
					slog.String("run_id", runID),
					slog.String("job_id", jobID),
					slog.Int("polls_without_progress", stalled),
				)
			}
		}
	}
}
