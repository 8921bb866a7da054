package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"helpdesk-hq/custodian/pkg/config"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string `json:"version"`

	// Commit is the git commit hash.
	Commit string `json:"commit"`

	// BuildTime is when the binary was built.
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns the handler for the liveness probe. It always
// answers 200 while the process can serve HTTP.
//
// Example response:
//
//	{
//	    "status": "ok",
//	    "timestamp": "2024-06-01T12:00:00Z"
//	}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckLiveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// ReadinessHandler returns the handler for the readiness probe. It runs
// every registered dependency probe and answers:
//
//   - 200 OK: all dependencies usable, sweeps can run
//   - 503 Service Unavailable: at least one dependency is down
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "store":   {"status": "ok"},
//	        "archive": {"status": "unhealthy", "message": "archive: permission denied"}
//	    },
//	    "timestamp": "2024-06-01T12:00:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if status.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// VersionHandler returns the handler for the version endpoint.
//
// Example response:
//
//	{
//	    "version": "1.0.0",
//	    "commit": "abc123def456",
//	    "build_time": "2024-06-01T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}

// Register mounts the probe endpoints on mux at the configured paths. A
// nil config uses the defaults; a config with health disabled mounts
// nothing.
func Register(mux *http.ServeMux, checker *Checker, cfg *config.HealthConfig) {
	liveness := config.DefaultHealthLivenessPath
	readiness := config.DefaultHealthReadyPath
	if cfg != nil {
		if !cfg.Enabled {
			return
		}
		if cfg.LivenessPath != "" {
			liveness = cfg.LivenessPath
		}
		if cfg.ReadinessPath != "" {
			readiness = cfg.ReadinessPath
		}
	}

	mux.HandleFunc(liveness, checker.LivenessHandler())
	mux.HandleFunc(readiness, checker.ReadinessHandler())
}
