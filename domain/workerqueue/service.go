package workerqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service is the component E entrypoint used by the supervisor (to
// enqueue) and the dispatcher (to claim and complete).
type Service struct {
	repo     *Repository
	registry *Registry
	log      *slog.Logger
}

func NewService(repo *Repository, registry *Registry, log *slog.Logger) *Service {
	return &Service{repo: repo, registry: registry, log: log}
}

type EnqueueInput struct {
	OwnerID         string
	SupervisorRunID string
	Task            string
	Model           string
	Config          map[string]any
}

func (s *Service) Enqueue(ctx context.Context, in EnqueueInput) (*WorkerJob, error) {
	job := &WorkerJob{
		OwnerID:         in.OwnerID,
		SupervisorRunID: in.SupervisorRunID,
		Task:            in.Task,
		Model:           in.Model,
		Config:          in.Config,
		// assigned here rather than left to the otel span ID so a job is
		// traceable via logs even when no OTLP exporter is configured.
		TraceID: uuid.NewString(),
	}
	if err := s.repo.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	s.log.Info("worker job enqueued", slog.String("job_id", job.ID), slog.String("owner_id", job.OwnerID))
	return job, nil
}

// ClaimBatch claims up to limit queued jobs, but never more than
// runnerID still has registry capacity for: it marks one registry slot
// active per job before claiming, and releases the slots left unused
// when fewer jobs were queued (or the claim failed).
func (s *Service) ClaimBatch(ctx context.Context, limit int, runnerID string) ([]*WorkerJob, error) {
	reserved := 0
	for reserved < limit && s.registry.CanAcceptForRunner(runnerID) {
		s.registry.MarkActive(runnerID)
		reserved++
	}
	if reserved == 0 {
		return nil, nil
	}
	jobs, err := s.repo.ClaimBatch(ctx, reserved)
	for i := len(jobs); i < reserved; i++ {
		s.registry.ClearActive(runnerID)
	}
	if err != nil {
		return nil, fmt.Errorf("claim batch: %w", err)
	}
	return jobs, nil
}

func (s *Service) Complete(ctx context.Context, jobID string, status Status, errMsg, runnerID string) error {
	if err := s.repo.Complete(ctx, jobID, status, errMsg, runnerID); err != nil {
		return err
	}
	s.registry.ClearActive(runnerID)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*WorkerJob, error) {
	return s.repo.GetByID(ctx, id)
}

// PendingCount reports how many jobs spawned by runID have not yet
// reached a terminal status.
func (s *Service) PendingCount(ctx context.Context, runID string) (int, error) {
	return s.repo.CountActiveForRun(ctx, runID)
}

// ReapStale transitions jobs stuck in running past timeout to status
// timeout, returning the reaped rows so the caller can notify any
// waiting supervisor run. The in-memory registry is left alone: a
// reaped job's runner slot clears itself on the registry's own
// process-restart-resets-to-zero terms, same as any other runner that
// vanished without calling Complete.
func (s *Service) ReapStale(ctx context.Context, timeout time.Duration) ([]*WorkerJob, error) {
	return s.repo.ReapStale(ctx, timeout)
}
