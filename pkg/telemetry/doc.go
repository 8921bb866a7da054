// Package telemetry provides observability for Custodian.
//
// # Overview
//
// The telemetry subpackages implement structured logging, Prometheus
// metrics, OpenTelemetry tracing, and health check endpoints. They give
// operators visibility into sweeps without getting in the way of the
// lifecycle itself: every collector degrades to a no-op when its section
// of the configuration is disabled.
//
// # Components
//
//   - logging: structured slog logging with redaction of ticket text
//   - metrics: Prometheus metrics for sweeps, files, holds, and audit writes
//   - tracing: OpenTelemetry spans around runs, partitions, and files
//   - health: liveness and readiness endpoints for daemon mode
//
// # Usage
//
//	// Logging
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.Slog().Info("sweep finished", "files_deleted", 12)
//
//	// Metrics
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordSweep(report)
//
//	// Tracing
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	ctx, span := tracer.Start(ctx, "sweep.run")
//	defer span.End()
//
//	// Health
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("store", health.StoreCheck(st))
//
// # Redaction
//
// Ticket files carry whatever users typed into the intake wizard, so log
// lines that quote ticket content pass through the redactor first:
//
//   - IP addresses: 192.168.1.1 → 192.*.*.*
//   - Phone numbers: (555) 123-4567 → ***-***-****
//   - SSNs: 123-45-6789 → ***-**-****
//   - Values under sensitive keys (password, token, ...) → prefix + ***
//
// File names, partition dates, and digests are not redacted; they are the
// operational vocabulary of the audit trail.
package telemetry
