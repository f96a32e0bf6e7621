package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// MetricsHandler exposes queue-depth and run-status counters for
// operators, grounded on the same raw-SQL-per-table idiom the teacher
// uses for its own job queues, re-pointed at worker_jobs and agent_runs.
type MetricsHandler struct {
	db *bun.DB
}

func NewMetricsHandler(db *bun.DB) *MetricsHandler {
	return &MetricsHandler{db: db}
}

type WorkerJobMetrics struct {
	Queued      int64 `bun:"queued" json:"queued"`
	Running     int64 `bun:"running" json:"running"`
	Success     int64 `bun:"success" json:"success"`
	Failed      int64 `bun:"failed" json:"failed"`
	Timeout     int64 `bun:"timeout" json:"timeout"`
	Total       int64 `bun:"total" json:"total"`
	LastHour    int64 `bun:"last_hour" json:"last_hour"`
	Last24Hours int64 `bun:"last_24_hours" json:"last_24_hours"`
}

type RunMetrics struct {
	Running   int64 `bun:"running" json:"running"`
	Waiting   int64 `bun:"waiting" json:"waiting"`
	Success   int64 `bun:"success" json:"success"`
	Failed    int64 `bun:"failed" json:"failed"`
	Deferred  int64 `bun:"deferred" json:"deferred"`
	Cancelled int64 `bun:"cancelled" json:"cancelled"`
	Total     int64 `bun:"total" json:"total"`
}

type QueueMetricsResponse struct {
	WorkerJobs WorkerJobMetrics `json:"worker_jobs"`
	Runs       RunMetrics       `json:"runs"`
	Timestamp  string           `json:"timestamp"`
}

// QueueMetrics returns a point-in-time snapshot of worker job queue
// depth and run status distribution.
func (h *MetricsHandler) QueueMetrics(c echo.Context) error {
	ctx := c.Request().Context()

	jobs, err := h.workerJobMetrics(ctx)
	if err != nil {
		return err
	}
	runs, err := h.runMetrics(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, QueueMetricsResponse{
		WorkerJobs: *jobs,
		Runs:       *runs,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *MetricsHandler) workerJobMetrics(ctx context.Context) (*WorkerJobMetrics, error) {
	var m WorkerJobMetrics
	err := h.db.NewRaw(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'queued') AS queued,
			COUNT(*) FILTER (WHERE status = 'running') AS running,
			COUNT(*) FILTER (WHERE status = 'success') AS success,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE status = 'timeout') AS timeout,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE created_at > now() - interval '1 hour') AS last_hour,
			COUNT(*) FILTER (WHERE created_at > now() - interval '24 hours') AS last_24_hours
		FROM worker_jobs`).Scan(ctx, &m)
	return &m, err
}

func (h *MetricsHandler) runMetrics(ctx context.Context) (*RunMetrics, error) {
	var m RunMetrics
	err := h.db.NewRaw(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'RUNNING') AS running,
			COUNT(*) FILTER (WHERE status = 'WAITING') AS waiting,
			COUNT(*) FILTER (WHERE status = 'SUCCESS') AS success,
			COUNT(*) FILTER (WHERE status = 'FAILED') AS failed,
			COUNT(*) FILTER (WHERE status = 'DEFERRED') AS deferred,
			COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled,
			COUNT(*) AS total
		FROM agent_runs`).Scan(ctx, &m)
	return &m, err
}
