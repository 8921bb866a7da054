package metrics

import (
	"helpdesk-hq/custodian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HoldMetrics tracks the legal-hold registry.
//
// Metrics:
//   - custodian_lifecycle_active_holds: entries currently in force
//   - custodian_lifecycle_hold_reloads_total: registry reloads by result
//   - custodian_lifecycle_hold_git_syncs_total: repository syncs by result
type HoldMetrics struct {
	active       prometheus.Gauge
	reloadsTotal *prometheus.CounterVec
	syncsTotal   *prometheus.CounterVec
}

// NewHoldMetrics creates and registers hold metrics.
func NewHoldMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HoldMetrics {
	hm := &HoldMetrics{
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_holds",
				Help:      "Number of legal hold entries currently in force",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "hold_reloads_total",
				Help:      "Total hold registry reload attempts by result",
			},
			[]string{"result"},
		),

		syncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "hold_git_syncs_total",
				Help:      "Total hold repository sync attempts by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		hm.active,
		hm.reloadsTotal,
		hm.syncsTotal,
	)

	return hm
}

// UpdateActive sets the active-hold gauge.
func (hm *HoldMetrics) UpdateActive(n int) {
	hm.active.Set(float64(n))
}

// RecordReload records one reload attempt. A failed reload leaves the
// previous hold set in force, so errors here mean stale holds, not
// missing ones.
func (hm *HoldMetrics) RecordReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	hm.reloadsTotal.WithLabelValues(result).Inc()
}

// RecordSync records one git sync attempt: "changed" when HEAD moved,
// "unchanged" when already current, "error" on failure.
func (hm *HoldMetrics) RecordSync(changed bool, err error) {
	result := "unchanged"
	switch {
	case err != nil:
		result = "error"
	case changed:
		result = "changed"
	}
	hm.syncsTotal.WithLabelValues(result).Inc()
}
