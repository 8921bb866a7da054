// Package config provides configuration management for Custodian.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CUSTODIAN_SECTION_FIELD.
// For example:
//
//   - CUSTODIAN_STORE_ROOT overrides store.root
//   - CUSTODIAN_RETENTION_WINDOW_DAYS overrides retention.window_days
//   - CUSTODIAN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Store.Root)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	store:
//	  root: "/var/lib/custodian/tickets"
//
//	archive:
//	  root: "/mnt/archive/tickets"
//
//	retention:
//	  window_days: 60
//
//	audit:
//	  backend: "jsonl"
//	  log_path: "/var/log/custodian/audit.jsonl"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
