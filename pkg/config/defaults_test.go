package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Store.Root != DefaultStoreRoot {
		t.Errorf("store root = %q, want %q", cfg.Store.Root, DefaultStoreRoot)
	}
	if cfg.Archive.Sink != DefaultArchiveSink {
		t.Errorf("archive sink = %q, want %q", cfg.Archive.Sink, DefaultArchiveSink)
	}
	if cfg.Archive.Root != DefaultArchiveRoot {
		t.Errorf("archive root = %q, want %q", cfg.Archive.Root, DefaultArchiveRoot)
	}
	if cfg.Retention.WindowDays != DefaultRetentionWindowDays {
		t.Errorf("window days = %d, want %d", cfg.Retention.WindowDays, DefaultRetentionWindowDays)
	}
	if cfg.Retention.MaxReadRetries != DefaultRetentionMaxRetries {
		t.Errorf("max read retries = %d, want %d", cfg.Retention.MaxReadRetries, DefaultRetentionMaxRetries)
	}
	if cfg.Audit.Backend != DefaultAuditBackend {
		t.Errorf("audit backend = %q, want %q", cfg.Audit.Backend, DefaultAuditBackend)
	}
	if cfg.Audit.LogPath != DefaultAuditLogPath {
		t.Errorf("audit log path = %q, want %q", cfg.Audit.LogPath, DefaultAuditLogPath)
	}
	if cfg.Audit.SQLite.BusyTimeout != DefaultAuditSQLiteBusyTimeout {
		t.Errorf("busy timeout = %v, want %v", cfg.Audit.SQLite.BusyTimeout, DefaultAuditSQLiteBusyTimeout)
	}
	if cfg.Catalog.Path != DefaultCatalogPath {
		t.Errorf("catalog path = %q, want %q", cfg.Catalog.Path, DefaultCatalogPath)
	}
	if cfg.Catalog.SnapshotInterval != DefaultCatalogSnapshotInterval {
		t.Errorf("snapshot interval = %v, want %v", cfg.Catalog.SnapshotInterval, DefaultCatalogSnapshotInterval)
	}
	if cfg.Holds.Git.Branch != DefaultHoldsGitBranch {
		t.Errorf("git branch = %q, want %q", cfg.Holds.Git.Branch, DefaultHoldsGitBranch)
	}
	if cfg.Daemon.Schedule != DefaultDaemonSchedule {
		t.Errorf("daemon schedule = %q, want %q", cfg.Daemon.Schedule, DefaultDaemonSchedule)
	}
	if cfg.Daemon.ListenAddress != DefaultDaemonListenAddress {
		t.Errorf("listen address = %q, want %q", cfg.Daemon.ListenAddress, DefaultDaemonListenAddress)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("logging level = %q, want %q", cfg.Telemetry.Logging.Level, DefaultLoggingLevel)
	}
	if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
		t.Errorf("logging format = %q, want %q", cfg.Telemetry.Logging.Format, DefaultLoggingFormat)
	}
	if !cfg.Telemetry.Logging.RedactPII {
		t.Error("expected RedactPII to default to true")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to default to enabled")
	}
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want %q", cfg.Telemetry.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if len(cfg.Telemetry.Metrics.SweepDurationBuckets) == 0 {
		t.Error("expected default sweep duration buckets")
	}
	if cfg.Telemetry.Tracing.Sampler != DefaultTracingSampler {
		t.Errorf("sampler = %q, want %q", cfg.Telemetry.Tracing.Sampler, DefaultTracingSampler)
	}
	if cfg.Telemetry.Health.LivenessPath != DefaultHealthLivenessPath {
		t.Errorf("liveness path = %q, want %q", cfg.Telemetry.Health.LivenessPath, DefaultHealthLivenessPath)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Store:     StoreConfig{Root: "/srv/tickets"},
		Retention: RetentionConfig{WindowDays: 14},
		Catalog:   CatalogConfig{SnapshotInterval: time.Minute},
	}
	ApplyDefaults(&cfg)

	if cfg.Store.Root != "/srv/tickets" {
		t.Errorf("store root = %q, want explicit value preserved", cfg.Store.Root)
	}
	if cfg.Retention.WindowDays != 14 {
		t.Errorf("window days = %d, want 14", cfg.Retention.WindowDays)
	}
	if cfg.Catalog.SnapshotInterval != time.Minute {
		t.Errorf("snapshot interval = %v, want %v", cfg.Catalog.SnapshotInterval, time.Minute)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	var first Config
	ApplyDefaults(&first)

	second := first
	ApplyDefaults(&second)

	if first.Store.Root != second.Store.Root ||
		first.Retention.WindowDays != second.Retention.WindowDays ||
		first.Audit.Backend != second.Audit.Backend ||
		first.Daemon.Schedule != second.Daemon.Schedule {
		t.Error("ApplyDefaults is not idempotent")
	}
}
