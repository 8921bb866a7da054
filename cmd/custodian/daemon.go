package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/cli"
	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/holds"
	"helpdesk-hq/custodian/pkg/lifecycle"
	"helpdesk-hq/custodian/pkg/server"
	"helpdesk-hq/custodian/pkg/store"
	"helpdesk-hq/custodian/pkg/telemetry/health"
	"helpdesk-hq/custodian/pkg/telemetry/metrics"
	"helpdesk-hq/custodian/pkg/telemetry/tracing"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled sweeps with the admin HTTP server",
	Long: `Run Custodian as a long-lived daemon.

The daemon sweeps the store on a cron schedule, serves Prometheus metrics
and health probes over HTTP, reloads the hold registry when its file
changes, and pulls the hold registry from git before every sweep when git
sync is enabled. Ticks that arrive while a sweep is still running are
skipped, never queued.

Examples:
  # Run with the configured schedule
  custodian daemon

  # Run an immediate sweep on startup, then follow the schedule
  custodian daemon --run-on-start`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().BoolVar(&daemonFlags.runOnStart, "run-on-start", false, "sweep immediately on startup")
}

var daemonFlags struct {
	runOnStart bool
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if daemonFlags.runOnStart {
		cfg.Daemon.RunOnStart = true
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}

	fmt.Printf("Custodian v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Long-lived components, shared by every sweep run.
	st, err := store.NewStore(cfg.Store.Root)
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}

	if cfg.Archive.Sink != "" && cfg.Archive.Sink != "dir" {
		return cli.NewCommandError("daemon", fmt.Errorf("unsupported archive sink: %s", cfg.Archive.Sink))
	}
	sink, err := lifecycle.NewDirSink(cfg.Archive.Root)
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}

	policy, err := lifecycle.NewRetentionPolicy(cfg.Retention.WindowDays, nil)
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	baseSink, err := openAuditSink(cfg)
	if err != nil {
		return cli.NewCommandError("daemon", fmt.Errorf("opening audit sink: %w", err))
	}
	defer baseSink.Close()
	auditSink := collector.InstrumentSink(baseSink)
	fmt.Printf("✓ Audit sink ready (%s)\n", cfg.Audit.Backend)

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.NewCatalog(catalog.Config{
			Path:             cfg.Catalog.Path,
			SnapshotInterval: cfg.Catalog.SnapshotInterval,
		})
		if err != nil {
			return cli.NewCommandError("daemon", fmt.Errorf("opening catalog: %w", err))
		}
		defer cat.Close()
		fmt.Printf("✓ Catalog open (%s)\n", cfg.Catalog.Path)
	}

	registry, syncer, err := loadHoldRegistry(ctx, cfg, logger.Slog())
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}
	if registry != nil {
		collector.UpdateActiveHolds(registry.Len())
		fmt.Printf("✓ Hold registry loaded (%d holds)\n", registry.Len())
	}

	var tracer *tracing.Tracer
	if cfg.Telemetry.Tracing.Enabled {
		tracer, err = tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			return cli.NewCommandError("daemon", fmt.Errorf("initializing tracing: %w", err))
		}
		defer func() {
			// The run context is already cancelled during shutdown;
			// give span export its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			tracer.Shutdown(flushCtx)
		}()
		fmt.Println("✓ Tracing enabled")
	}

	if cfg.Holds.Watch && registry != nil {
		watcher, err := holds.NewWatcher(registry, logger.Slog(), func(reloadErr error) {
			collector.RecordRegistryReload(reloadErr)
			if reloadErr == nil {
				collector.UpdateActiveHolds(registry.Len())
			}
		})
		if err != nil {
			return cli.NewCommandError("daemon", err)
		}
		go watcher.Watch(ctx)
		defer watcher.Stop()
		fmt.Println("✓ Hold registry watcher started")
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("store", health.StoreCheck(st))
	checker.RegisterCheck("archive", health.ArchiveCheck(sink))
	checker.RegisterCheck("audit", health.AuditCheck(auditSink))
	if cat != nil {
		checker.RegisterCheck("catalog", health.CatalogCheck(cat))
	}

	// Each sweep gets a fresh recorder, and with it a fresh run id. The
	// scheduler serializes invocations, so the shared components are
	// never used by two sweeps at once.
	var scheduler *lifecycle.Scheduler
	sweepOnce := func(ctx context.Context, trigger string) (*lifecycle.Report, error) {
		collector.RecordRun(trigger)
		collector.SetSweepInProgress(true)
		defer collector.SetSweepInProgress(false)

		if syncer != nil {
			res, syncErr := syncer.Sync(ctx)
			collector.RecordGitSync(res != nil && res.Changed, syncErr)
			switch {
			case syncErr != nil:
				slog.Warn("hold registry sync failed, sweeping with last loaded holds", "error", syncErr)
			case res.Changed:
				reloadErr := registry.Load()
				collector.RecordRegistryReload(reloadErr)
				if reloadErr != nil {
					slog.Error("hold registry reload failed, sweeping with last loaded holds", "error", reloadErr)
				} else {
					collector.UpdateActiveHolds(registry.Len())
				}
			}
		}

		opts := lifecycle.Options{
			Store:               st,
			Sink:                sink,
			Policy:              policy,
			Recorder:            audit.NewRecorder(auditSink, nil),
			Catalog:             cat,
			Logger:              logger.Slog(),
			MaxReadRetries:      cfg.Retention.MaxReadRetries,
			KeepEmptyPartitions: cfg.Store.KeepEmptyPartitions,
		}
		if registry != nil {
			opts.Holds = registry
		}
		if tracer != nil {
			opts.Tracer = tracer
		}

		orch, err := lifecycle.NewOrchestrator(&opts)
		if err != nil {
			return nil, err
		}
		report, err := orch.Run(ctx)
		if report != nil {
			collector.RecordSweep(report)
		}
		if scheduler != nil {
			if next := scheduler.NextRun(); next != nil {
				collector.SetNextRun(*next)
			}
		}
		return report, err
	}

	// The first invocation after start is the run-on-start sweep when
	// one was requested; everything after that is the schedule.
	var startupPending atomic.Bool
	startupPending.Store(cfg.Daemon.RunOnStart)
	scheduler = lifecycle.NewScheduler(cfg.Daemon.Schedule, func(ctx context.Context) (*lifecycle.Report, error) {
		trigger := "schedule"
		if startupPending.CompareAndSwap(true, false) {
			trigger = "startup"
		}
		return sweepOnce(ctx, trigger)
	}, collector.RecordSkippedTick)

	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("daemon", err)
	}
	if next := scheduler.NextRun(); next != nil {
		collector.SetNextRun(*next)
		fmt.Printf("✓ Sweep scheduler started (next run %s)\n", next.Format(time.RFC3339))
	}

	srv, err := server.New(server.Options{
		Config:       &cfg.Daemon,
		Metrics:      collector.Handler(),
		MetricsPath:  cfg.Telemetry.Metrics.Path,
		Health:       checker,
		HealthConfig: &cfg.Telemetry.Health,
		Version:      health.VersionHandler(Version, GitCommit, BuildDate),
		Logger:       logger.Slog(),
	})
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	fmt.Println()
	fmt.Printf("✓ Admin server listening on %s\n", cfg.Daemon.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Daemon.ListenAddress, cfg.Telemetry.Metrics.Path)
	fmt.Printf("✓ Health endpoints: http://%s%s, http://%s%s\n",
		cfg.Daemon.ListenAddress, cfg.Telemetry.Health.LivenessPath,
		cfg.Daemon.ListenAddress, cfg.Telemetry.Health.ReadinessPath)
	fmt.Println("\nPress Ctrl+C to stop")

	if cfg.Daemon.RunOnStart {
		go scheduler.RunNow(ctx)
	}

	// Wait for the admin server to exit: an error here means it failed
	// outright; nil means the shutdown signal arrived and it drained.
	var serverErr error
	select {
	case serverErr = <-errChan:
	case <-ctx.Done():
		fmt.Println("\nReceived shutdown signal, stopping...")
		serverErr = <-errChan
	}

	// The cancelled context stops an in-flight sweep between files;
	// bound the wait in case a single file copy is still draining.
	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(cfg.Daemon.ShutdownTimeout):
		slog.Warn("sweep still running at shutdown deadline, abandoning wait")
	}

	if serverErr != nil {
		return cli.NewCommandError("daemon", serverErr)
	}
	fmt.Println("✓ Daemon stopped")
	return nil
}
