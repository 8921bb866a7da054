package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CUSTODIAN_SECTION_FIELD (e.g., CUSTODIAN_STORE_ROOT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format CUSTODIAN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Store overrides
	if val := os.Getenv("CUSTODIAN_STORE_ROOT"); val != "" {
		cfg.Store.Root = val
	}
	if val := os.Getenv("CUSTODIAN_STORE_KEEP_EMPTY_PARTITIONS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Store.KeepEmptyPartitions = b
		}
	}

	// Archive overrides
	if val := os.Getenv("CUSTODIAN_ARCHIVE_SINK"); val != "" {
		cfg.Archive.Sink = val
	}
	if val := os.Getenv("CUSTODIAN_ARCHIVE_ROOT"); val != "" {
		cfg.Archive.Root = val
	}

	// Retention overrides
	if val := os.Getenv("CUSTODIAN_RETENTION_WINDOW_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.WindowDays = i
		}
	}
	if val := os.Getenv("CUSTODIAN_RETENTION_MAX_READ_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.MaxReadRetries = i
		}
	}

	// Audit overrides
	if val := os.Getenv("CUSTODIAN_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("CUSTODIAN_AUDIT_LOG_PATH"); val != "" {
		cfg.Audit.LogPath = val
	}
	if val := os.Getenv("CUSTODIAN_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}

	// Catalog overrides
	if val := os.Getenv("CUSTODIAN_CATALOG_PATH"); val != "" {
		cfg.Catalog.Path = val
	}
	if val := os.Getenv("CUSTODIAN_CATALOG_SNAPSHOT_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Catalog.SnapshotInterval = d
		}
	}

	// Holds overrides
	if val := os.Getenv("CUSTODIAN_HOLDS_PATH"); val != "" {
		cfg.Holds.Path = val
	}
	if val := os.Getenv("CUSTODIAN_HOLDS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Holds.Watch = b
		}
	}
	if val := os.Getenv("CUSTODIAN_HOLDS_GIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Holds.Git.Enabled = b
		}
	}
	if val := os.Getenv("CUSTODIAN_HOLDS_GIT_REPOSITORY"); val != "" {
		cfg.Holds.Git.Repository = val
	}
	if val := os.Getenv("CUSTODIAN_HOLDS_GIT_BRANCH"); val != "" {
		cfg.Holds.Git.Branch = val
	}
	if val := os.Getenv("CUSTODIAN_HOLDS_GIT_TOKEN"); val != "" {
		cfg.Holds.Git.Auth.Type = "token"
		cfg.Holds.Git.Auth.Token = val
	}

	// Daemon overrides
	if val := os.Getenv("CUSTODIAN_DAEMON_SCHEDULE"); val != "" {
		cfg.Daemon.Schedule = val
	}
	if val := os.Getenv("CUSTODIAN_DAEMON_RUN_ON_START"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Daemon.RunOnStart = b
		}
	}
	if val := os.Getenv("CUSTODIAN_DAEMON_LISTEN_ADDRESS"); val != "" {
		cfg.Daemon.ListenAddress = val
	}

	// Telemetry overrides
	if val := os.Getenv("CUSTODIAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CUSTODIAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CUSTODIAN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CUSTODIAN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("CUSTODIAN_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("CUSTODIAN_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("CUSTODIAN_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
