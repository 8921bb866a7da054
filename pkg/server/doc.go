// Package server provides the daemon's admin HTTP server.
//
// The admin server carries no application traffic. It exposes the
// operational surface of a running daemon: Prometheus metrics, liveness
// and readiness probes, and build information. It binds loopback by
// default; exposing it further is a deployment decision.
//
// # Routes
//
//   - GET /metrics: Prometheus exposition (path configurable)
//   - GET /healthz/live: liveness probe (path configurable)
//   - GET /healthz/ready: readiness probe (path configurable)
//   - GET /version: build information
//
// # Usage
//
//	srv := server.New(server.Options{
//	    Config:       &cfg.Daemon,
//	    Metrics:      collector.Handler(),
//	    MetricsPath:  cfg.Telemetry.Metrics.Path,
//	    Health:       checker,
//	    HealthConfig: &cfg.Telemetry.Health,
//	    Version:      health.VersionHandler(version, commit, buildTime),
//	})
//
//	// Blocks until ctx is canceled or Stop is called.
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # Graceful Shutdown
//
// Start returns after a graceful shutdown: the listener stops accepting,
// in-flight requests get up to DaemonConfig.ShutdownTimeout to finish,
// then connections are forced closed. Signal handling belongs to the
// daemon command, not this package; cancel the context to shut down.
package server
