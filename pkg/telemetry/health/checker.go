package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CheckFunc probes one dependency. It returns nil when the dependency is
// usable, or an error describing why the daemon should not be considered
// ready.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single dependency probe.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the error text for unhealthy results.
	Message string `json:"message,omitempty"`

	// Duration is how long the probe took.
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// HealthStatus aggregates the daemon's health.
type HealthStatus struct {
	// Status is "ok" (liveness), "ready", or "degraded".
	Status string `json:"status"`

	// Checks holds per-dependency results on readiness responses.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the probe ran.
	Timestamp time.Time `json:"timestamp"`
}

// Checker runs registered dependency probes. The daemon registers one
// check per dependency a sweep needs: the ticket store, the archive
// sink, the audit sink, and the catalog.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// ErrCheckTimeout is reported when a probe exceeds the per-check timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers a probe under a dependency name, replacing any
// existing probe with the same name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// UnregisterCheck removes a probe.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// CheckLiveness answers the liveness probe: the process is up and can
// serve HTTP. It never runs dependency probes; a daemon wedged on a bad
// archive mount should be restarted by the readiness signal, not killed.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs every registered probe concurrently and aggregates
// the results. Any unhealthy dependency degrades the whole answer; a
// degraded daemon keeps running but should not be handed new work.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if len(checks) == 0 {
		return HealthStatus{
			Status:    "ready",
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult)
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := "ready"
	for _, result := range results {
		if result.Status == "unhealthy" {
			status = "degraded"
		}
	}

	return HealthStatus{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes one probe under the per-check timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:   "unhealthy",
				Message:  err.Error(),
				Duration: duration,
			}
		}
		return CheckResult{
			Status:   "ok",
			Duration: duration,
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:   "unhealthy",
			Message:  ErrCheckTimeout.Error(),
			Duration: time.Since(start),
		}
	}
}

// GetCheck returns the probe registered under name, or nil.
func (c *Checker) GetCheck(name string) CheckFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.checks[name]
}

// ListChecks returns the names of all registered probes.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}

	return names
}

// CheckCount returns the number of registered probes.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.checks)
}
