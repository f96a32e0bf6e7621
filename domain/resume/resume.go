// Package resume implements the Resume Controller: it wires a finished
// worker job's result back into the owning supervisor thread and
// re-enters the supervisor turn loop.
package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cipher982/zerg/domain/runs"
	"github.com/cipher982/zerg/domain/supervisor"
	"github.com/cipher982/zerg/domain/threads"
	"github.com/cipher982/zerg/pkg/logger"
)

// WorkerResult is the payload the dispatcher (or the internal resume
// webhook) hands back once a job finishes.
type WorkerResult struct {
	JobID   string
	Status  string
	Summary string
}

type Controller struct {
	runs       *runs.Service
	threads    *threads.Service
	supervisor *supervisor.Service
	log        *slog.Logger
}

func NewController(runsSvc *runs.Service, threadsSvc *threads.Service, supervisorSvc *supervisor.Service, log *slog.Logger) *Controller {
	return &Controller{runs: runsSvc, threads: threadsSvc, supervisor: supervisorSvc, log: log.With(logger.Scope("resume"))}
}

// Resume is a no-op unless runID is currently WAITING. It locates the
// assistant message that spawned workerResult.JobID (the tool_call_id),
// get-or-creates the corresponding tool ThreadMessage idempotently,
// flips the run back to RUNNING, and re-enters the supervisor loop.
func (c *Controller) Resume(ctx context.Context, runID string, result WorkerResult) (res *supervisor.Result, resumed bool, err error) {
	run, err := c.runs.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			return nil, false, fmt.Errorf("resume: run %s not found", runID)
		}
		return nil, false, fmt.Errorf("load run: %w", err)
	}

	if run.Status != runs.StatusWaiting {
		c.log.Debug("resume skipped: run not waiting",
			slog.String("run_id", runID), slog.String("status", string(run.Status)))
		return &supervisor.Result{RunID: runID, Status: run.Status}, false, nil
	}

	parent, err := c.threads.ResolveToolCallParent(ctx, run.ThreadID, result.JobID)
	if err != nil {
		return nil, false, fmt.Errorf("resolve tool call parent: %w", err)
	}

	toolCallID := result.JobID
	for _, tc := range parent.ToolCalls {
		if tc.ID == result.JobID {
			toolCallID = tc.ID
			break
		}
	}

	if _, err := c.threads.GetOrCreateToolMessage(ctx, run.ThreadID, toolCallID, result.Summary, parent.ID); err != nil {
		return nil, false, fmt.Errorf("record worker result: %w", err)
	}

	if _, err := c.runs.Transition(ctx, runID, runs.StatusRunning, ""); err != nil {
		return nil, false, fmt.Errorf("transition to running: %w", err)
	}

	res, err = c.supervisor.RunSupervisor(ctx, run.OwnerID, run.AgentID, run.ThreadID, runID)
	return res, true, err
}
