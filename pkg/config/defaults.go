package config

import "time"

// Default values for configuration fields.
const (
	// Store defaults
	DefaultStoreRoot = "data/tickets"

	// Archive defaults
	DefaultArchiveSink = "dir"
	DefaultArchiveRoot = "data/archive"

	// Retention defaults
	DefaultRetentionWindowDays = 60
	DefaultRetentionMaxRetries = 3

	// Audit defaults
	DefaultAuditBackend           = "jsonl"
	DefaultAuditLogPath           = "data/audit/audit.jsonl"
	DefaultAuditSQLitePath        = "data/audit/audit.db"
	DefaultAuditSQLiteBusyTimeout = 5 * time.Second
	DefaultAuditQueryDefaultLimit = 100
	DefaultAuditQueryMaxLimit     = 10000

	// Catalog defaults
	DefaultCatalogPath             = "data/catalog.db"
	DefaultCatalogSnapshotInterval = 5 * time.Minute

	// Holds defaults
	DefaultHoldsGitBranch  = "main"
	DefaultHoldsGitPath    = "holds.yaml"
	DefaultHoldsGitTimeout = 30 * time.Second
	DefaultHoldsGitDepth   = 1

	// Daemon defaults
	DefaultDaemonSchedule        = "0 3 * * *"
	DefaultDaemonListenAddress   = "127.0.0.1:9464"
	DefaultDaemonShutdownTimeout = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "custodian"
	DefaultMetricsSubsystem   = "lifecycle"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "custodian"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultHealthLivenessPath = "/healthz/live"
	DefaultHealthReadyPath    = "/healthz/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Store defaults
	if cfg.Store.Root == "" {
		cfg.Store.Root = DefaultStoreRoot
	}

	// Archive defaults
	if cfg.Archive.Sink == "" {
		cfg.Archive.Sink = DefaultArchiveSink
	}
	if cfg.Archive.Root == "" {
		cfg.Archive.Root = DefaultArchiveRoot
	}

	// Retention defaults
	if cfg.Retention.WindowDays == 0 {
		cfg.Retention.WindowDays = DefaultRetentionWindowDays
	}
	if cfg.Retention.MaxReadRetries == 0 {
		cfg.Retention.MaxReadRetries = DefaultRetentionMaxRetries
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.LogPath == "" {
		cfg.Audit.LogPath = DefaultAuditLogPath
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}
	if cfg.Audit.Query.DefaultLimit == 0 {
		cfg.Audit.Query.DefaultLimit = DefaultAuditQueryDefaultLimit
	}
	if cfg.Audit.Query.MaxLimit == 0 {
		cfg.Audit.Query.MaxLimit = DefaultAuditQueryMaxLimit
	}

	// Catalog defaults
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.SnapshotInterval == 0 {
		cfg.Catalog.SnapshotInterval = DefaultCatalogSnapshotInterval
	}

	// Holds defaults
	if cfg.Holds.Git.Branch == "" {
		cfg.Holds.Git.Branch = DefaultHoldsGitBranch
	}
	if cfg.Holds.Git.Path == "" {
		cfg.Holds.Git.Path = DefaultHoldsGitPath
	}
	if cfg.Holds.Git.Timeout == 0 {
		cfg.Holds.Git.Timeout = DefaultHoldsGitTimeout
	}
	if cfg.Holds.Git.Clone.Depth == 0 {
		cfg.Holds.Git.Clone.Depth = DefaultHoldsGitDepth
	}

	// Daemon defaults
	if cfg.Daemon.Schedule == "" {
		cfg.Daemon.Schedule = DefaultDaemonSchedule
	}
	if cfg.Daemon.ListenAddress == "" {
		cfg.Daemon.ListenAddress = DefaultDaemonListenAddress
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = DefaultDaemonShutdownTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if !cfg.Telemetry.Logging.RedactPII {
		cfg.Telemetry.Logging.RedactPII = true
	}
	if !cfg.Telemetry.Metrics.Enabled {
		cfg.Telemetry.Metrics.Enabled = true
	}
	if !cfg.Telemetry.Health.Enabled {
		cfg.Telemetry.Health.Enabled = true
	}
	if !cfg.Telemetry.Tracing.OTLP.Insecure {
		cfg.Telemetry.Tracing.OTLP.Insecure = true
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.SweepDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.SweepDurationBuckets = []float64{0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0}
	}
	if len(cfg.Telemetry.Metrics.FileSizeBuckets) == 0 {
		cfg.Telemetry.Metrics.FileSizeBuckets = []float64{1024, 16384, 262144, 1048576, 16777216, 268435456}
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadyPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
