package metrics

import (
	"time"

	"helpdesk-hq/custodian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics tracks the daemon's sweep scheduling.
//
// Metrics:
//   - custodian_lifecycle_runs_total: sweep runs by trigger
//   - custodian_lifecycle_skipped_ticks_total: ticks dropped under overlap
//   - custodian_lifecycle_sweep_in_progress: 1 while a sweep is running
//   - custodian_lifecycle_next_run_timestamp_seconds: next scheduled run
type SchedulerMetrics struct {
	runsTotal    *prometheus.CounterVec
	skippedTicks prometheus.Counter
	inProgress   prometheus.Gauge
	nextRun      prometheus.Gauge
}

// NewSchedulerMetrics creates and registers scheduler metrics.
func NewSchedulerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SchedulerMetrics {
	sm := &SchedulerMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total sweep runs by trigger",
			},
			[]string{"trigger"},
		),

		skippedTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "skipped_ticks_total",
				Help:      "Total schedule ticks skipped because a sweep was still running",
			},
		),

		inProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sweep_in_progress",
				Help:      "Whether a sweep is currently running (1=running, 0=idle)",
			},
		),

		nextRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "next_run_timestamp_seconds",
				Help:      "Unix time of the next scheduled sweep",
			},
		),
	}

	registry.MustRegister(
		sm.runsTotal,
		sm.skippedTicks,
		sm.inProgress,
		sm.nextRun,
	)

	return sm
}

// RecordRun counts a sweep run by trigger: "schedule", "startup", or
// "manual".
func (sm *SchedulerMetrics) RecordRun(trigger string) {
	sm.runsTotal.WithLabelValues(trigger).Inc()
}

// RecordSkippedTick counts one dropped schedule tick.
func (sm *SchedulerMetrics) RecordSkippedTick() {
	sm.skippedTicks.Inc()
}

// SetInProgress flips the in-progress gauge.
func (sm *SchedulerMetrics) SetInProgress(running bool) {
	if running {
		sm.inProgress.Set(1)
	} else {
		sm.inProgress.Set(0)
	}
}

// SetNextRun publishes the next scheduled run time. A zero time clears
// the gauge, which happens when the schedule is empty.
func (sm *SchedulerMetrics) SetNextRun(t time.Time) {
	if t.IsZero() {
		sm.nextRun.Set(0)
		return
	}
	sm.nextRun.Set(float64(t.Unix()))
}
