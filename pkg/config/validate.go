package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "retention.window_days").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateArchive(&cfg.Archive)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateHolds(&cfg.Holds)...)
	errs = append(errs, validateDaemon(&cfg.Daemon)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateStore validates ticket store configuration.
func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	if cfg.Root == "" {
		errs = append(errs, FieldError{
			Field:   "store.root",
			Message: "store root is required",
		})
	}

	return errs
}

// validateArchive validates archive sink configuration.
func validateArchive(cfg *ArchiveConfig) []FieldError {
	var errs []FieldError

	if cfg.Sink != "dir" {
		errs = append(errs, FieldError{
			Field:   "archive.sink",
			Message: fmt.Sprintf("unknown sink %q, must be \"dir\"", cfg.Sink),
		})
	}
	if cfg.Root == "" {
		errs = append(errs, FieldError{
			Field:   "archive.root",
			Message: "archive root is required",
		})
	}

	return errs
}

// validateRetention validates retention policy configuration.
func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.WindowDays <= 0 {
		errs = append(errs, FieldError{
			Field:   "retention.window_days",
			Message: "retention window must be a positive number of days",
		})
	}
	if cfg.WindowDays > 3650 {
		errs = append(errs, FieldError{
			Field:   "retention.window_days",
			Message: "retention window exceeds reasonable limit (3650 days)",
		})
	}
	if cfg.MaxReadRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "retention.max_read_retries",
			Message: "max read retries must be non-negative",
		})
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"jsonl": true, "sqlite": true, "both": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("unknown backend %q, must be one of: jsonl, sqlite, both", cfg.Backend),
		})
	}
	if (cfg.Backend == "jsonl" || cfg.Backend == "both") && cfg.LogPath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.log_path",
			Message: "log path is required for the jsonl backend",
		})
	}
	if (cfg.Backend == "sqlite" || cfg.Backend == "both") && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.path",
			Message: "database path is required for the sqlite backend",
		})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.busy_timeout",
			Message: "busy timeout must be positive",
		})
	}
	if cfg.Query.DefaultLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit must be non-negative",
		})
	}
	if cfg.Query.MaxLimit > 0 && cfg.Query.DefaultLimit > cfg.Query.MaxLimit {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit exceeds max limit",
		})
	}

	return errs
}

// validateCatalog validates sweep catalog configuration.
func validateCatalog(cfg *CatalogConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.path",
			Message: "catalog path is required",
		})
	}
	if cfg.SnapshotInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "catalog.snapshot_interval",
			Message: "snapshot interval must be positive",
		})
	}

	return errs
}

// validateHolds validates legal hold registry configuration.
func validateHolds(cfg *HoldsConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "holds.watch",
			Message: "watch requires holds.path to be set",
		})
	}

	if cfg.Git.Enabled {
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "holds.git.repository",
				Message: "repository URL is required when git sync is enabled",
			})
		}
		validAuth := map[string]bool{"token": true, "ssh": true, "none": true, "": true}
		if !validAuth[cfg.Git.Auth.Type] {
			errs = append(errs, FieldError{
				Field:   "holds.git.auth.type",
				Message: fmt.Sprintf("unknown auth type %q, must be one of: token, ssh, none", cfg.Git.Auth.Type),
			})
		}
		if cfg.Git.Auth.Type == "token" && cfg.Git.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "holds.git.auth.token",
				Message: "token is required for token auth",
			})
		}
		if cfg.Git.Auth.Type == "ssh" && cfg.Git.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "holds.git.auth.ssh_key_path",
				Message: "ssh key path is required for ssh auth",
			})
		}
		if cfg.Git.Clone.Depth < 0 {
			errs = append(errs, FieldError{
				Field:   "holds.git.clone.depth",
				Message: "clone depth must be non-negative",
			})
		}
	}

	return errs
}

// validateDaemon validates daemon configuration.
func validateDaemon(cfg *DaemonConfig) []FieldError {
	var errs []FieldError

	if cfg.Schedule == "" {
		errs = append(errs, FieldError{
			Field:   "daemon.schedule",
			Message: "schedule is required",
		})
	} else if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "daemon.schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "daemon.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "daemon.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level != "" && !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q, must be one of: debug, info, warn, error", cfg.Logging.Level),
		})
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format != "" && !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q, must be one of: json, text", cfg.Logging.Format),
		})
	}

	// Metrics validation
	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	// Tracing validation
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if cfg.Tracing.Sampler != "" && !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("unknown sampler %q, must be one of: always, never, ratio", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}
