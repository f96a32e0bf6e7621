// Package reaper resolves the open question of what happens when a
// worker process dies mid job: a cron tick scans worker_jobs for rows
// stuck in running past WorkerJobTimeout, marks them timeout, and -
// when the job was spawned by a supervisor run - resumes that run so
// it doesn't wait forever on a worker that is never coming back.
package reaper

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/cipher982/zerg/domain/resume"
	"github.com/cipher982/zerg/domain/workerqueue"
	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/pkg/logger"
)

type Reaper struct {
	queue  *workerqueue.Service
	resume *resume.Controller
	cfg    *config.Config
	log    *slog.Logger
	cron   *cron.Cron
}

func New(queue *workerqueue.Service, resumeCtrl *resume.Controller, cfg *config.Config, log *slog.Logger) *Reaper {
	return &Reaper{
		queue:  queue,
		resume: resumeCtrl,
		cfg:    cfg,
		log:    log.With(logger.Scope("reaper")),
		cron:   cron.New(),
	}
}

func (r *Reaper) Start(ctx context.Context) error {
	schedule := "@every " + r.cfg.WorkerJobTimeout.String()
	if _, err := r.cron.AddFunc(schedule, func() { r.run(context.Background()) }); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("stale job reaper started", slog.Duration("timeout", r.cfg.WorkerJobTimeout))
	return nil
}

func (r *Reaper) Stop(ctx context.Context) error {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}

func (r *Reaper) run(ctx context.Context) {
	jobs, err := r.queue.ReapStale(ctx, r.cfg.WorkerJobTimeout)
	if err != nil {
		r.log.Error("reap stale worker jobs failed", slog.String("error", err.Error()))
		return
	}
	if len(jobs) == 0 {
		return
	}
	r.log.Warn("reaped stale worker jobs", slog.Int("count", len(jobs)))

	for _, job := range jobs {
		if job.SupervisorRunID == "" {
			continue
		}
		if _, _, err := r.resume.Resume(ctx, job.SupervisorRunID, resume.WorkerResult{
			JobID:   job.ID,
			Status:  "timeout",
			Summary: "worker job timed out without completing",
		}); err != nil {
			r.log.Error("resume after reap failed",
				slog.String("run_id", job.SupervisorRunID),
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()))
		}
	}
}
