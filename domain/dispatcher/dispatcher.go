// Package dispatcher implements the Worker Dispatcher: a polling loop
// that claims queued worker jobs and hands each to the Worker Runner,
// keeping the in-flight gauge (metrics.DispatcherInFlight) up to date.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cipher982/zerg/domain/resume"
	"github.com/cipher982/zerg/domain/roundabout"
	"github.com/cipher982/zerg/domain/workerqueue"
	"github.com/cipher982/zerg/domain/workerrunner"
	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/internal/jobs"
	"github.com/cipher982/zerg/pkg/metrics"
	"github.com/uptrace/bun"
)

const runnerID = "dispatcher"

// Dispatcher wraps the generic jobs.Worker poll loop with the worker
// job queue's claim/complete semantics.
type Dispatcher struct {
	worker     *jobs.Worker
	queue      *workerqueue.Service
	runner     *workerrunner.Runner
	resume     *resume.Controller
	roundabout *roundabout.Monitor
	db         *bun.DB
	log        *slog.Logger
	cfg        *config.Config
}

func New(queue *workerqueue.Service, runner *workerrunner.Runner, resumeCtrl *resume.Controller, watchdog *roundabout.Monitor, db *bun.DB, cfg *config.Config, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{queue: queue, runner: runner, resume: resumeCtrl, roundabout: watchdog, db: db, cfg: cfg, log: log.With(slog.String("component", "dispatcher"))}

	workerCfg := jobs.WorkerConfig{
		Name:         "worker-dispatcher",
		PollInterval: cfg.DispatchTick,
		BatchSize:    cfg.WorkerMaxConcurrency,
	}
	d.worker = jobs.NewWorker(workerCfg, log, d.tick)
	return d
}

func (d *Dispatcher) Start(ctx context.Context) error {
	return d.worker.Start(ctx)
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	return d.worker.Stop(ctx)
}

// tick claims a batch of queued jobs and dispatches each to the runner
// on its own goroutine so one slow job never starves the rest of the batch.
func (d *Dispatcher) tick(ctx context.Context) error {
	claimed, err := d.queue.ClaimBatch(ctx, d.cfg.WorkerMaxConcurrency, runnerID)
	if err != nil {
		return fmt.Errorf("claim batch: %w", err)
	}
	for _, job := range claimed {
		job := job
		go d.run(context.WithoutCancel(ctx), job)
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context, job *workerqueue.WorkerJob) {
	log := d.log.With(slog.String("job_id", job.ID), slog.String("owner_id", job.OwnerID), slog.String("trace_id", job.TraceID))
	log.Info("dispatching worker job")

	metrics.DispatcherInFlight.Inc()
	defer metrics.DispatcherInFlight.Dec()

	if job.SupervisorRunID != "" {
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go d.roundabout.Watch(watchCtx, job.SupervisorRunID, job.ID)
	}

	result, err := d.runner.Run(ctx, d.db, job)
	if err != nil {
		log.Warn("worker job failed", slog.String("error", err.Error()))
		d.worker.IncrementFailure()
		if compErr := d.queue.Complete(ctx, job.ID, workerqueue.StatusFailed, err.Error(), runnerID); compErr != nil {
			log.Error("failed to record job failure", slog.String("error", compErr.Error()))
		}
		d.maybeResume(ctx, job, "failed", err.Error())
		return
	}

	if compErr := d.queue.Complete(ctx, job.ID, workerqueue.StatusSuccess, "", runnerID); compErr != nil {
		log.Error("failed to record job success", slog.String("error", compErr.Error()))
		return
	}
	d.worker.IncrementSuccess()
	log.Info("worker job complete", slog.Int("summary_len", len(result.Summary)))
	d.maybeResume(ctx, job, "success", result.Summary)
}

// maybeResume invokes the Resume Controller when a job was spawned by a
// supervisor run. Panics/errors here are logged only: a stuck WAITING
// run can still be resumed later via the internal webhook.
func (d *Dispatcher) maybeResume(ctx context.Context, job *workerqueue.WorkerJob, status, summary string) {
	if job.SupervisorRunID == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("resume panicked", slog.Any("recovered", r), slog.String("run_id", job.SupervisorRunID))
		}
	}()
	if _, _, err := d.resume.Resume(ctx, job.SupervisorRunID, resume.WorkerResult{
		JobID:   job.ID,
		Status:  status,
		Summary: summary,
	}); err != nil {
		d.log.Error("resume failed",
			slog.String("run_id", job.SupervisorRunID),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}
