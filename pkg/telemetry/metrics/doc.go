// Package metrics provides Prometheus metrics for the retention sweeper.
//
// # Overview
//
// The metrics package exposes sweep outcomes, file lifecycle counters,
// legal-hold registry activity, scheduler behavior, and audit-trail
// throughput in Prometheus exposition format. The daemon records one
// observation batch per sweep from the sweep report; everything else is
// recorded at the point where it happens.
//
// # Metric Categories
//
//   - Sweep metrics: run count, duration, partition outcomes
//   - File metrics: per-file outcomes, faults, archived bytes and sizes
//   - Hold metrics: active holds, registry reloads, git syncs
//   - Scheduler metrics: run triggers, skipped ticks, next-run time
//   - Audit metrics: entries appended and append failures
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//
//	// After each sweep:
//	collector.RecordSweep(report)
//
//	// Wired into the scheduler and hold registry:
//	collector.RecordSkippedTick()
//	collector.RecordRegistryReload(err)
//
//	// Wrapping the audit sink:
//	sink = collector.InstrumentSink(sink)
//
// # Prometheus Endpoint
//
// All metrics are exposed through Handler in standard exposition format:
//
//	# HELP custodian_lifecycle_sweeps_total Total number of sweep runs
//	# TYPE custodian_lifecycle_sweeps_total counter
//	custodian_lifecycle_sweeps_total{mode="live",result="clean"} 42
//
// Every label in this package draws from a closed vocabulary (modes,
// outcomes, fault kinds, audit actions), so cardinality is bounded by
// construction. Partition and file names never appear as label values;
// those live in the audit log.
package metrics
