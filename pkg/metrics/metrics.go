// Package metrics holds the process's Prometheus collectors. The
// by-status gauges are updated by domain/health's periodic collector
// rather than on the hot request path; DispatcherInFlight is updated by
// domain/dispatcher around each job and RoundaboutStallWarnings by
// domain/roundabout.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "zerg_worker_jobs",
		Help: "Current worker_jobs row count by status",
	}, []string{"status"})

	RunsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "zerg_agent_runs",
		Help: "Current agent_runs row count by status",
	}, []string{"status"})

	DispatcherInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zerg_dispatcher_in_flight",
		Help: "Worker jobs currently being executed by this dispatcher",
	})

	RoundaboutStallWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerg_roundabout_stall_warnings_total",
		Help: "Total number of stuck-worker warnings emitted by the roundabout watchdog",
	})
)
