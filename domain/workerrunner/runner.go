// Package workerrunner executes a single worker job to completion,
// reporting progress on the Event Bus so a subscribed stream can show
// the supervisor's delegate working in real time.
package workerrunner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cipher982/zerg/domain/eventbus"
	"github.com/cipher982/zerg/domain/workerqueue"
	"github.com/cipher982/zerg/pkg/llmclient"
	"github.com/cipher982/zerg/pkg/sse"
	"github.com/uptrace/bun"
)

// heartbeatInterval is independent of the stream layer's SSE idle
// heartbeat: this is a liveness signal emitted while the job itself is
// still executing, not a connection keepalive.
const heartbeatInterval = 30 * time.Second

const summaryMaxLen = 280

type Result struct {
	Summary string
}

type Runner struct {
	llm  *llmclient.Client
	bus  *eventbus.Publisher
	log  *slog.Logger
}

func New(llm *llmclient.Client, bus *eventbus.Publisher, log *slog.Logger) *Runner {
	return &Runner{llm: llm, bus: bus, log: log.With(slog.String("component", "workerrunner"))}
}

// Run executes job.Task through the LLM client and reports progress.
// db is accepted for tool implementations that need to read/write
// tenant state; the current tool set is stateless and Run does not use it.
func (r *Runner) Run(ctx context.Context, db *bun.DB, job *workerqueue.WorkerJob) (Result, error) {
	scoped := job.SupervisorRunID != ""

	stopHeartbeat := r.startHeartbeat(ctx, job)
	defer stopHeartbeat()

	if scoped {
		r.publish(ctx, job, sse.EventWorkerStarted, map[string]any{"job_id": job.ID})
		r.publish(ctx, job, sse.EventWorkerToolStarted, map[string]any{"job_id": job.ID, "task": job.Task})
	}

	turn, err := r.llm.Turn(ctx, llmclient.TurnRequest{
		ModelName:   job.Model,
		Instruction: "You are a worker agent. Complete the assigned task and report a concise result.",
		UserText:    job.Task,
	})
	if err != nil {
		if scoped {
			r.publish(ctx, job, sse.EventWorkerToolFailed, map[string]any{"job_id": job.ID, "error": err.Error()})
		}
		return Result{}, fmt.Errorf("worker turn: %w", err)
	}

	if scoped {
		r.publish(ctx, job, sse.EventWorkerToolCompleted, map[string]any{"job_id": job.ID})
	}

	summary := summarize(turn.Text)
	if scoped {
		r.publish(ctx, job, sse.EventWorkerSummaryReady, map[string]any{"job_id": job.ID, "summary": summary})
		r.publish(ctx, job, sse.EventWorkerComplete, map[string]any{"job_id": job.ID})
	}

	return Result{Summary: summary}, nil
}

func (r *Runner) startHeartbeat(ctx context.Context, job *workerqueue.WorkerJob) func() {
	if job.SupervisorRunID == "" {
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				r.publish(ctx, job, sse.EventWorkerHeartbeat, map[string]any{"job_id": job.ID})
			}
		}
	}()
	return func() { close(done) }
}

func (r *Runner) publish(ctx context.Context, job *workerqueue.WorkerJob, eventType sse.EventType, payload map[string]any) {
	if _, err := r.bus.Emit(ctx, job.SupervisorRunID, job.OwnerID, eventType, payload); err != nil {
		r.log.Warn("failed to publish worker event",
			slog.String("event_type", string(eventType)),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}

func summarize(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= summaryMaxLen {
		return text
	}
	return text[:summaryMaxLen] + "…"
}
