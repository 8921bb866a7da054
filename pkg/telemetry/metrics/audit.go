package metrics

import (
	"context"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks audit trail throughput.
//
// Metrics:
//   - custodian_lifecycle_audit_entries_total: entries by action/outcome
//   - custodian_lifecycle_audit_append_failures_total: failed appends
//
// Append failures matter operationally: a failed append freezes the file
// it covered, and a failure on the run-start entry aborts the run.
type AuditMetrics struct {
	entriesTotal   *prometheus.CounterVec
	appendFailures prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		entriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_entries_total",
				Help:      "Total audit entries appended by action and outcome",
			},
			[]string{"action", "outcome"},
		),

		appendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_append_failures_total",
				Help:      "Total audit append failures",
			},
		),
	}

	registry.MustRegister(
		am.entriesTotal,
		am.appendFailures,
	)

	return am
}

// RecordAppend records one append attempt.
func (am *AuditMetrics) RecordAppend(entry *audit.Entry, err error) {
	if err != nil {
		am.appendFailures.Inc()
		return
	}
	am.entriesTotal.WithLabelValues(string(entry.Action), string(entry.Outcome)).Inc()
}

// instrumentedSink wraps an audit sink and counts appends. Reads pass
// through untouched.
type instrumentedSink struct {
	audit.Sink
	metrics *AuditMetrics
}

// InstrumentSink wraps sink so every append is counted. When metrics are
// disabled the sink is returned unwrapped.
func (c *Collector) InstrumentSink(sink audit.Sink) audit.Sink {
	if !c.config.Enabled || sink == nil {
		return sink
	}
	return &instrumentedSink{Sink: sink, metrics: c.audit}
}

func (s *instrumentedSink) Append(ctx context.Context, entry *audit.Entry) error {
	err := s.Sink.Append(ctx, entry)
	s.metrics.RecordAppend(entry, err)
	return err
}
