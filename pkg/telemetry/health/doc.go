// Package health provides liveness and readiness probes for the daemon.
//
// # Overview
//
// The daemon's admin server exposes two probes. Liveness answers whether
// the process is up; readiness answers whether a sweep could actually
// run, by probing the dependencies a sweep needs: the ticket store, the
// archive sink, the audit sink, and the catalog.
//
// # Endpoints
//
//   - /healthz/live: liveness probe, always 200 while the process serves
//   - /healthz/ready: readiness probe, 503 when any dependency is down
//
// Paths are configurable through config.HealthConfig.
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("store", health.StoreCheck(st))
//	checker.RegisterCheck("archive", health.ArchiveCheck(sink))
//	checker.RegisterCheck("audit", health.AuditCheck(auditSink))
//	checker.RegisterCheck("catalog", health.CatalogCheck(cat))
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, &cfg.Telemetry.Health)
//
// # Liveness vs Readiness
//
// Liveness never runs dependency probes: a daemon with an unreachable
// archive mount is degraded, not dead, and restarting it would not fix
// the mount. Readiness runs every registered probe concurrently under a
// per-check timeout and reports 503 with per-dependency detail when any
// probe fails.
//
// # Example Responses
//
// Ready:
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "store":   {"status": "ok"},
//	        "archive": {"status": "ok"},
//	        "audit":   {"status": "ok"},
//	        "catalog": {"status": "ok"}
//	    },
//	    "timestamp": "2024-06-01T12:00:00Z"
//	}
//
// Degraded:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "store":   {"status": "ok"},
//	        "archive": {"status": "unhealthy", "message": "archive: permission denied"}
//	    },
//	    "timestamp": "2024-06-01T12:00:00Z"
//	}
package health
