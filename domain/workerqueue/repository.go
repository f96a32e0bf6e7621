package workerqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("worker job not found")

// Repository is the durable, Postgres-backed FIFO of worker jobs.
// Claiming is a single `FOR UPDATE SKIP LOCKED` CTE so multiple
// dispatcher replicas never claim the same row twice.
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Enqueue writes a new job row with status=queued.
func (r *Repository) Enqueue(ctx context.Context, job *WorkerJob) error {
	job.Status = StatusQueued
	if _, err := r.db.NewInsert().Model(job).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("enqueue worker job: %w", err)
	}
	return nil
}

// ClaimBatch selects the oldest queued jobs up to limit and transitions
// them to running in the same statement, returning the claimed rows.
func (r *Repository) ClaimBatch(ctx context.Context, limit int) ([]*WorkerJob, error) {
	if limit <= 0 {
		limit = 1
	}

	var jobs []*WorkerJob
	query := `
		WITH claimed AS (
			SELECT id FROM worker_jobs
			WHERE status = 'queued'
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT ?
		)
		UPDATE worker_jobs wj
		SET status = 'running', started_at = now()
		FROM claimed
		WHERE wj.id = claimed.id
		RETURNING wj.*`

	if err := r.db.NewRaw(query, limit).Scan(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("claim worker job batch: %w", err)
	}
	return jobs, nil
}

// Complete performs the terminal transition for a job: status, error
// (populated iff status is failed/timeout), finished_at, and the
// dispatcher-assigned worker_id.
func (r *Repository) Complete(ctx context.Context, jobID string, status Status, errMsg, workerID string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("complete called with non-terminal status %q", status)
	}
	res, err := r.db.NewUpdate().
		Model((*WorkerJob)(nil)).
		Set("status = ?", status).
		Set("error = ?", errMsg).
		Set("worker_id = ?", workerID).
		Set("finished_at = now()").
		Where("id = ?", jobID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("complete worker job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveForRun returns how many jobs spawned by runID are still
// queued or running.
func (r *Repository) CountActiveForRun(ctx context.Context, runID string) (int, error) {
	n, err := r.db.NewSelect().
		Model((*WorkerJob)(nil)).
		Where("supervisor_run_id = ?", runID).
		Where("status IN (?, ?)", StatusQueued, StatusRunning).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count active jobs for run: %w", err)
	}
	return n, nil
}

// ReapStale transitions running jobs whose started_at predates the given
// timeout to status=timeout, returning the reaped rows so the caller can
// notify any waiting supervisor run.
func (r *Repository) ReapStale(ctx context.Context, timeout time.Duration) ([]*WorkerJob, error) {
	var jobs []*WorkerJob
	err := r.db.NewRaw(`
		UPDATE worker_jobs
		SET status = 'timeout', error = 'job exceeded timeout', finished_at = now()
		WHERE status = 'running' AND started_at < now() - ?::interval
		RETURNING *`, fmt.Sprintf("%d seconds", int(timeout.Seconds()))).Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("reap stale worker jobs: %w", err)
	}
	return jobs, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*WorkerJob, error) {
	job := new(WorkerJob)
	err := r.db.NewSelect().Model(job).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get worker job by id: %w", err)
	}
	return job, nil
}
