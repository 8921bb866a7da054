package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/holds"
	"helpdesk-hq/custodian/pkg/holds/git"
	"helpdesk-hq/custodian/pkg/telemetry/logging"
)

// setupLogging configures the process-wide logger from config. Logs go to
// stderr so that command output (reports, JSON) stays clean on stdout.
func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:          level,
		Format:         cfg.Telemetry.Logging.Format,
		AddSource:      cfg.Telemetry.Logging.AddSource,
		RedactPII:      cfg.Telemetry.Logging.RedactPII,
		RedactPatterns: cfg.Telemetry.Logging.RedactPatterns,
		Writer:         os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	slog.SetDefault(logger.Slog())
	return logger, nil
}

// openAuditSink builds the configured audit backend. The "both" backend
// writes JSONL as the primary with a SQLite mirror for queries.
func openAuditSink(cfg *config.Config) (audit.Sink, error) {
	switch cfg.Audit.Backend {
	case "jsonl", "":
		return audit.NewJSONLSink(cfg.Audit.LogPath)

	case "sqlite":
		return audit.NewSQLiteSink(&audit.SQLiteConfig{
			Path:        cfg.Audit.SQLite.Path,
			BusyTimeout: cfg.Audit.SQLite.BusyTimeout,
		})

	case "both":
		primary, err := audit.NewJSONLSink(cfg.Audit.LogPath)
		if err != nil {
			return nil, err
		}
		mirror, err := audit.NewSQLiteSink(&audit.SQLiteConfig{
			Path:        cfg.Audit.SQLite.Path,
			BusyTimeout: cfg.Audit.SQLite.BusyTimeout,
		})
		if err != nil {
			primary.Close()
			return nil, err
		}
		return audit.NewMultiSink(primary, mirror), nil

	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}

// loadHoldRegistry syncs the hold source when git-backed and loads the
// registry. Returns (nil, nil, nil) when no hold path is configured. A
// configured registry that cannot be loaded is an error: a sweep must not
// delete files whose hold status is unknown.
func loadHoldRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*holds.Registry, *git.Syncer, error) {
	path := cfg.Holds.Path
	var syncer *git.Syncer

	if cfg.Holds.Git.Enabled {
		var err error
		syncer, err = git.NewSyncer(&cfg.Holds.Git, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("creating hold syncer: %w", err)
		}
		if _, err := syncer.Sync(ctx); err != nil {
			return nil, nil, fmt.Errorf("syncing hold registry: %w", err)
		}
		path = syncer.RegistryPath()
	}

	if path == "" {
		return nil, nil, nil
	}

	registry := holds.NewRegistry(path, logger)
	if err := registry.Load(); err != nil {
		return nil, nil, err
	}
	return registry, syncer, nil
}
