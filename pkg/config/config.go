package config

import "time"

// Config is the root configuration structure for Custodian.
// It contains all configuration sections for the ticket store, archive sink,
// retention policy, audit trail, sweep catalog, legal holds, daemon scheduling,
// and telemetry.
type Config struct {
	// Store contains ticket store configuration including the root directory
	// holding date partitions.
	Store StoreConfig `yaml:"store"`

	// Archive contains archive sink configuration including the archive root
	// that mirrors the store's partition layout.
	Archive ArchiveConfig `yaml:"archive"`

	// Retention contains retention policy configuration including the window
	// after which ticket files become eligible for archival and deletion.
	Retention RetentionConfig `yaml:"retention"`

	// Audit contains audit trail configuration including backend selection
	// and sink paths.
	Audit AuditConfig `yaml:"audit"`

	// Catalog contains sweep catalog configuration. The catalog records
	// per-file lifecycle state so repeated runs stay idempotent.
	Catalog CatalogConfig `yaml:"catalog"`

	// Holds contains legal hold registry configuration including the hold
	// file location, watch mode, and optional git synchronization.
	Holds HoldsConfig `yaml:"holds"`

	// Daemon contains scheduled sweep configuration for `custodian daemon`.
	Daemon DaemonConfig `yaml:"daemon"`

	// Telemetry contains observability configuration including logging,
	// metrics, tracing, and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StoreConfig contains configuration for the ticket store.
type StoreConfig struct {
	// Root is the directory containing one YYYY-MM-DD partition per day.
	// The intake wizard writes ticket files here; the sweep reads and,
	// after verified archival, deletes them.
	// Default: "data/tickets"
	Root string `yaml:"root"`

	// KeepEmptyPartitions disables removal of partition directories that
	// become empty after their last file is deleted.
	// Default: false
	KeepEmptyPartitions bool `yaml:"keep_empty_partitions"`
}

// ArchiveConfig contains configuration for the archive sink.
type ArchiveConfig struct {
	// Sink selects the archive backend.
	// Options: "dir" (local or locally-mounted directory)
	// Default: "dir"
	Sink string `yaml:"sink"`

	// Root is the directory receiving archived partitions. It mirrors the
	// store's partition layout and additionally holds per-partition
	// manifest.json files.
	// Default: "data/archive"
	Root string `yaml:"root"`
}

// RetentionConfig contains configuration for the retention policy.
type RetentionConfig struct {
	// WindowDays is the retention window in days. A ticket file is eligible
	// for archival and deletion once its partition date is strictly older
	// than the window, i.e. age in days > WindowDays.
	// Default: 60
	WindowDays int `yaml:"window_days"`

	// MaxReadRetries bounds how many runs may retry a file whose digesting
	// failed with a read error before the file is held for operator
	// attention. 0 means hold on the first read error.
	// Default: 3
	MaxReadRetries int `yaml:"max_read_retries"`
}

// AuditConfig contains configuration for the audit trail.
type AuditConfig struct {
	// Backend selects the audit sink.
	// Options: "jsonl" (append-only JSON lines file), "sqlite" (queryable
	// database), "both" (fan-out to jsonl and sqlite; a failed write to
	// either sink fails the entry)
	// Default: "jsonl"
	Backend string `yaml:"backend"`

	// LogPath is the JSON-lines audit log file path. Used when Backend is
	// "jsonl" or "both". Entries are appended, flushed, and never rewritten.
	// Default: "data/audit/audit.jsonl"
	LogPath string `yaml:"log_path"`

	// SQLite contains configuration for the sqlite audit sink. Used when
	// Backend is "sqlite" or "both".
	SQLite AuditSQLiteConfig `yaml:"sqlite"`

	// Query contains configuration for audit queries.
	Query AuditQueryConfig `yaml:"query"`
}

// AuditSQLiteConfig contains sqlite-specific audit sink configuration.
type AuditSQLiteConfig struct {
	// Path is the file path for the sqlite audit database.
	// Default: "data/audit/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// AuditQueryConfig contains configuration for audit queries.
type AuditQueryConfig struct {
	// DefaultLimit is the number of entries returned when no limit is given.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of entries a single query may return.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// CatalogConfig contains configuration for the sweep catalog.
type CatalogConfig struct {
	// Path is the file path for the catalog database. The catalog is
	// advisory: deleting it never makes deletion unsafe, it only costs
	// re-verification work on the next sweep.
	// Default: "data/catalog.db"
	Path string `yaml:"path"`

	// SnapshotInterval is how often the write-ahead log is checkpointed
	// while a daemon is running.
	// Default: 5m
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

// HoldsConfig contains configuration for the legal hold registry.
type HoldsConfig struct {
	// Path is the YAML hold registry file. Empty means no holds.
	// Default: ""
	Path string `yaml:"path"`

	// Watch enables automatic reloading when the hold file changes.
	// Only effective in daemon mode.
	// Default: false
	Watch bool `yaml:"watch"`

	// Git contains git synchronization settings for the hold registry.
	Git HoldsGitConfig `yaml:"git"`
}

// HoldsGitConfig configures git-based hold registry synchronization.
// When enabled, the registry repository is cloned locally and pulled before
// each sweep so holds managed through review take effect without deploys.
type HoldsGitConfig struct {
	// Enabled determines if git synchronization is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/legal-holds.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to the hold registry file.
	// Default: "holds.yaml"
	Path string `yaml:"path"`

	// Timeout for git operations (clone, pull).
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Auth configures git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// - "token": HTTPS with personal access token
	// - "ssh": SSH with public key
	// - "none": public repositories
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication (supports env vars).
	// Example: "${GITHUB_TOKEN}"
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Example: "/home/user/.ssh/id_rsa"
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys (supports env vars).
	// Optional, leave empty if key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local repo before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// DaemonConfig contains configuration for scheduled sweeps.
type DaemonConfig struct {
	// Schedule is a standard 5-field cron expression for sweep runs.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`

	// RunOnStart triggers a sweep immediately when the daemon starts,
	// in addition to the scheduled runs.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`

	// ListenAddress is the address for the metrics/health HTTP server.
	// Format: "host:port".
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// ShutdownTimeout is the maximum duration to wait for the in-flight
	// sweep and HTTP server during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables redaction of email addresses and IP addresses in
	// logged ticket fields. The audit trail is never redacted.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns applied in
	// addition to the built-in ones.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "custodian"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "lifecycle"
	Subsystem string `yaml:"subsystem"`

	// SweepDurationBuckets defines histogram buckets for sweep duration (seconds).
	// Default: [0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0]
	SweepDurationBuckets []float64 `yaml:"sweep_duration_buckets"`

	// FileSizeBuckets defines histogram buckets for archived file sizes (bytes).
	// Default: [1024, 16384, 262144, 1048576, 16777216, 268435456]
	FileSizeBuckets []float64 `yaml:"file_size_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "custodian"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz/live"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Readiness requires the store root, archive root, and audit sink to
	// be accessible.
	// Default: "/healthz/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual readiness checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
