package metrics

import (
	"time"

	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/lifecycle"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and every metric family the
// sweeper exports. One collector serves the whole process; all record
// methods are safe for concurrent use and become no-ops when metrics
// are disabled in the configuration.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	sweeps    *SweepMetrics
	files     *FileMetrics
	holds     *HoldMetrics
	scheduler *SchedulerMetrics
	audit     *AuditMetrics
}

// NewCollector creates a collector and registers all metric families
// with the given registry. If registry is nil a fresh private registry
// is used, which keeps the process-default registry free of duplicates
// in tests and embedded use.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "custodian"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "lifecycle"
	}
	if len(cfg.SweepDurationBuckets) == 0 {
		// Sweeps range from sub-second no-ops to multi-minute backlogs.
		cfg.SweepDurationBuckets = []float64{0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0}
	}
	if len(cfg.FileSizeBuckets) == 0 {
		// Ticket files run from a few hundred bytes to attachment-sized
		// blobs (1KiB - 256MiB).
		cfg.FileSizeBuckets = []float64{1024, 16384, 262144, 1048576, 16777216, 268435456}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.sweeps = NewSweepMetrics(cfg, registry)
	c.files = NewFileMetrics(cfg, registry)
	c.holds = NewHoldMetrics(cfg, registry)
	c.scheduler = NewSchedulerMetrics(cfg, registry)
	c.audit = NewAuditMetrics(cfg, registry)

	return c
}

// RecordSweep records one completed sweep from its report: run counters,
// duration, partition and file outcomes, faults, and archived sizes.
func (c *Collector) RecordSweep(report *lifecycle.Report) {
	if !c.config.Enabled || report == nil {
		return
	}

	mode := "live"
	if report.DryRun {
		mode = "dry_run"
	}
	result := "clean"
	switch {
	case !report.Clean():
		result = "faulted"
	case report.Noop():
		result = "noop"
	}

	c.sweeps.Record(mode, result, report.Duration())
	c.sweeps.AddPartitions("evaluated", report.PartitionsEvaluated)
	c.sweeps.AddPartitions("eligible", report.PartitionsEligible)
	c.sweeps.AddPartitions("skipped", report.PartitionsSkipped)
	c.sweeps.AddPartitions("removed", report.PartitionsRemoved)

	c.files.Add("examined", report.FilesExamined)
	c.files.Add("archived", report.FilesArchived)
	c.files.Add("verified", report.FilesVerified)
	c.files.Add("deleted", report.FilesDeleted)
	c.files.Add("held", report.FilesHeld)
	c.files.Add("skipped", report.FilesSkipped)
	c.files.Add("would_delete", report.WouldDelete)

	c.files.AddFaults("copy", report.CopyFailures)
	c.files.AddFaults("read", report.ReadFailures)
	c.files.AddFaults("verify_mismatch", report.VerifyMismatches)
	c.files.AddFaults("policy", report.PolicyErrors)
	c.files.AddFaults("other", len(report.Errors))

	c.files.AddBytes(report.BytesArchived)
	for _, r := range report.Results {
		if r.Size > 0 {
			c.files.ObserveSize(r.Size)
		}
	}
}

// UpdateActiveHolds sets the active-hold gauge to the registry's current
// entry count.
func (c *Collector) UpdateActiveHolds(n int) {
	if !c.config.Enabled {
		return
	}
	c.holds.UpdateActive(n)
}

// RecordRegistryReload records a hold registry reload attempt.
func (c *Collector) RecordRegistryReload(err error) {
	if !c.config.Enabled {
		return
	}
	c.holds.RecordReload(err)
}

// RecordGitSync records a hold repository sync attempt.
func (c *Collector) RecordGitSync(changed bool, err error) {
	if !c.config.Enabled {
		return
	}
	c.holds.RecordSync(changed, err)
}

// RecordRun counts a sweep run by what triggered it: "schedule",
// "startup", or "manual".
func (c *Collector) RecordRun(trigger string) {
	if !c.config.Enabled {
		return
	}
	c.scheduler.RecordRun(trigger)
}

// RecordSkippedTick counts a schedule tick dropped because the previous
// sweep was still running. Wire this into the scheduler's skip hook.
func (c *Collector) RecordSkippedTick() {
	if !c.config.Enabled {
		return
	}
	c.scheduler.RecordSkippedTick()
}

// SetSweepInProgress flips the in-progress gauge around each sweep.
func (c *Collector) SetSweepInProgress(running bool) {
	if !c.config.Enabled {
		return
	}
	c.scheduler.SetInProgress(running)
}

// SetNextRun publishes the next scheduled sweep time.
func (c *Collector) SetNextRun(t time.Time) {
	if !c.config.Enabled {
		return
	}
	c.scheduler.SetNextRun(t)
}

// Registry returns the Prometheus registry backing this collector, for
// mounting a scrape handler:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
