package metrics

import (
	"time"

	"helpdesk-hq/custodian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics tracks whole-run outcomes.
//
// Metrics:
//   - custodian_lifecycle_sweeps_total: run count by mode and result
//   - custodian_lifecycle_sweep_duration_seconds: run duration histogram
//   - custodian_lifecycle_partitions_total: partition outcomes
//   - custodian_lifecycle_last_sweep_timestamp_seconds: completion time
//   - custodian_lifecycle_last_sweep_clean: 1 when the last run was clean
type SweepMetrics struct {
	sweepsTotal     *prometheus.CounterVec
	sweepDuration   *prometheus.HistogramVec
	partitionsTotal *prometheus.CounterVec

	lastSweepTimestamp prometheus.Gauge
	lastSweepClean     prometheus.Gauge
}

// NewSweepMetrics creates and registers sweep metrics.
func NewSweepMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SweepMetrics {
	sm := &SweepMetrics{
		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sweeps_total",
				Help:      "Total number of sweep runs by mode and result",
			},
			[]string{"mode", "result"},
		),

		sweepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of sweep runs in seconds",
				Buckets:   cfg.SweepDurationBuckets,
			},
			[]string{"mode"},
		),

		partitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "partitions_total",
				Help:      "Total partitions seen by sweep outcome",
			},
			[]string{"outcome"},
		),

		lastSweepTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_sweep_timestamp_seconds",
				Help:      "Unix time of the most recent sweep completion",
			},
		),

		lastSweepClean: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_sweep_clean",
				Help:      "Whether the most recent sweep finished without faults (1=clean, 0=faulted)",
			},
		),
	}

	registry.MustRegister(
		sm.sweepsTotal,
		sm.sweepDuration,
		sm.partitionsTotal,
		sm.lastSweepTimestamp,
		sm.lastSweepClean,
	)

	return sm
}

// Record records one completed run.
//
// mode is "live" or "dry_run"; result is "clean", "faulted", or "noop".
func (sm *SweepMetrics) Record(mode, result string, duration time.Duration) {
	sm.sweepsTotal.WithLabelValues(mode, result).Inc()
	sm.sweepDuration.WithLabelValues(mode).Observe(duration.Seconds())
	sm.lastSweepTimestamp.SetToCurrentTime()
	if result == "faulted" {
		sm.lastSweepClean.Set(0)
	} else {
		sm.lastSweepClean.Set(1)
	}
}

// AddPartitions adds to the partition counter for one outcome:
// "evaluated", "eligible", "skipped", or "removed".
func (sm *SweepMetrics) AddPartitions(outcome string, n int) {
	if n > 0 {
		sm.partitionsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}
