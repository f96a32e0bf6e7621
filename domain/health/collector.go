package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/cipher982/zerg/pkg/metrics"
)

const collectionInterval = 15 * time.Second

// Collector polls queue depth and run status counts on an interval and
// republishes them as Prometheus gauges, the same periodic-poll shape the
// teacher uses for its own system health monitor.
type Collector struct {
	db     *bun.DB
	log    *slog.Logger
	ticker *time.Ticker
	stopCh chan struct{}
}

func NewCollector(db *bun.DB, log *slog.Logger) *Collector {
	return &Collector{db: db, log: log.With(slog.String("component", "metrics_collector"))}
}

func (c *Collector) Start(ctx context.Context) error {
	c.ticker = time.NewTicker(collectionInterval)
	c.stopCh = make(chan struct{})

	go func() {
		c.collect(ctx)
		for {
			select {
			case <-c.ticker.C:
				c.collect(ctx)
			case <-c.stopCh:
				return
			}
		}
	}()
	return nil
}

func (c *Collector) Stop(ctx context.Context) error {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	if c.stopCh != nil {
		close(c.stopCh)
	}
	return nil
}

func (c *Collector) collect(ctx context.Context) {
	var jobCounts []struct {
		Status string `bun:"status"`
		Count  int64  `bun:"count"`
	}
	if err := c.db.NewRaw(`SELECT status, COUNT(*) AS count FROM worker_jobs GROUP BY status`).Scan(ctx, &jobCounts); err != nil {
		c.log.Warn("collect worker job metrics failed", slog.String("error", err.Error()))
	} else {
		for _, row := range jobCounts {
			metrics.WorkerJobsByStatus.WithLabelValues(row.Status).Set(float64(row.Count))
		}
	}

	var runCounts []struct {
		Status string `bun:"status"`
		Count  int64  `bun:"count"`
	}
	if err := c.db.NewRaw(`SELECT status, COUNT(*) AS count FROM agent_runs GROUP BY status`).Scan(ctx, &runCounts); err != nil {
		c.log.Warn("collect run metrics failed", slog.String("error", err.Error()))
	} else {
		for _, row := range runCounts {
			metrics.RunsByStatus.WithLabelValues(row.Status).Set(float64(row.Count))
		}
	}
}
