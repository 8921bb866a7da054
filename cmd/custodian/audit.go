package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/cli"
	"helpdesk-hq/custodian/pkg/config"
)

var auditFlags struct {
	runID     string
	partition string
	file      string
	action    string
	outcome   string
	since     string
	until     string
	limit     int
	offset    int
	lines     int
	format    string
	output    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long: `Query and summarize the append-only audit trail.

Every sweep writes one entry per lifecycle action (archived, verified,
deleted, held, ...) plus run-level entries bracketing the sweep. The audit
commands read whichever backend is configured (JSONL or SQLite).

Subcommands:
  query   - Filter entries by run, file, action, outcome, or time
  tail    - Show the most recent entries
  report  - Summarize one sweep run

Examples:
  # Everything deleted in June
  custodian audit query --action deleted --since 2024-06-01T00:00:00Z --until 2024-07-01T00:00:00Z

  # Follow up on one file
  custodian audit query --partition 2024-03-17 --file ticket_091500_ab12cd34.txt

  # Summarize the most recent sweep
  custodian audit report`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit entries",
	Long: `Query audit entries with filters, in append order.

Examples:
  # All entries for one run
  custodian audit query --run 9f2c4a8e-...

  # Deletions in a time window, as JSON
  custodian audit query --action deleted --since 2024-06-01T00:00:00Z --format json

  # Page through a partition's history
  custodian audit query --partition 2024-03-17 --limit 50 --offset 50`,
	RunE: queryAudit,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent audit entries",
	Long:  `Show the last N audit entries in append order.`,
	RunE:  tailAudit,
}

var auditReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize one sweep run",
	Long: `Summarize one sweep run from its audit entries and catalog states.

Without --run, the most recent run is reported.`,
	RunE: reportAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditTailCmd, auditReportCmd)

	// Flags for query command
	auditQueryCmd.Flags().StringVar(&auditFlags.runID, "run", "", "filter by run id")
	auditQueryCmd.Flags().StringVar(&auditFlags.partition, "partition", "", "filter by partition (YYYY-MM-DD)")
	auditQueryCmd.Flags().StringVar(&auditFlags.file, "file", "", "filter by file name")
	auditQueryCmd.Flags().StringVar(&auditFlags.action, "action", "", "filter by action (archived, verified, deleted, held, ...)")
	auditQueryCmd.Flags().StringVar(&auditFlags.outcome, "outcome", "", "filter by outcome (ok, failed, mismatch, ...)")
	auditQueryCmd.Flags().StringVar(&auditFlags.since, "since", "", "entries at or after this time (RFC3339)")
	auditQueryCmd.Flags().StringVar(&auditFlags.until, "until", "", "entries at or before this time (RFC3339)")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 0, "max results (default from config)")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for tail command
	auditTailCmd.Flags().IntVarP(&auditFlags.lines, "lines", "n", 20, "number of entries")
	auditTailCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")

	// Flags for report command
	auditReportCmd.Flags().StringVar(&auditFlags.runID, "run", "", "run id (default: most recent run)")
	auditReportCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
}

func queryAudit(cmd *cobra.Command, args []string) error {
	// Load config to find the audit backend
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	sink, err := openAuditSink(cfg)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("opening audit sink: %w", err))
	}
	defer sink.Close()

	// Build query
	query := &audit.Query{
		RunID:     auditFlags.runID,
		Partition: auditFlags.partition,
		File:      auditFlags.file,
		Action:    audit.Action(auditFlags.action),
		Outcome:   audit.Outcome(auditFlags.outcome),
		Offset:    auditFlags.offset,
	}

	query.Limit = auditFlags.limit
	if query.Limit <= 0 {
		query.Limit = cfg.Audit.Query.DefaultLimit
	}
	if cfg.Audit.Query.MaxLimit > 0 && query.Limit > cfg.Audit.Query.MaxLimit {
		query.Limit = cfg.Audit.Query.MaxLimit
	}

	if auditFlags.since != "" {
		since, err := time.Parse(time.RFC3339, auditFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since time: %w", err)
		}
		query.StartTime = &since
	}
	if auditFlags.until != "" {
		until, err := time.Parse(time.RFC3339, auditFlags.until)
		if err != nil {
			return fmt.Errorf("invalid --until time: %w", err)
		}
		query.EndTime = &until
	}

	entries, err := sink.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if auditFlags.output != "" {
		output, err = os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	formatter := cli.NewFormatter(format)
	return formatter.FormatTo(output, entries)
}

func tailAudit(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	sink, err := openAuditSink(cfg)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("opening audit sink: %w", err))
	}
	defer sink.Close()

	entries, err := sink.Tail(context.Background(), auditFlags.lines)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("tail failed: %w", err))
	}

	formatter := cli.NewFormatter(format)
	return formatter.FormatTo(os.Stdout, entries)
}

// runReport is the audit report payload: one sweep run summarized from
// its audit entries plus, when a catalog is configured, its file states.
type runReport struct {
	RunID      string           `json:"run_id"`
	DryRun     bool             `json:"dry_run,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Entries    int              `json:"audit_entries"`
	Actions    map[string]int64 `json:"actions"`
	States     map[string]int64 `json:"catalog_states,omitempty"`
}

func reportAudit(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	sink, err := openAuditSink(cfg)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("opening audit sink: %w", err))
	}
	defer sink.Close()

	ctx := context.Background()

	runID := auditFlags.runID
	if runID == "" {
		starts, err := sink.Query(ctx, &audit.Query{
			Action: audit.ActionRunStarted,
			Limit:  cfg.Audit.Query.MaxLimit,
		})
		if err != nil {
			return cli.NewCommandError("audit", fmt.Errorf("finding latest run: %w", err))
		}
		if len(starts) == 0 {
			return cli.NewCommandError("audit", fmt.Errorf("no runs recorded"))
		}
		runID = starts[len(starts)-1].RunID
	}

	entries, err := sink.Query(ctx, &audit.Query{RunID: runID, Limit: cfg.Audit.Query.MaxLimit})
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}
	if len(entries) == 0 {
		return cli.NewCommandError("audit", fmt.Errorf("run %s not found", runID))
	}

	report := &runReport{
		RunID:   runID,
		Entries: len(entries),
		Actions: make(map[string]int64),
	}
	for _, e := range entries {
		report.Actions[string(e.Action)]++
		if e.DryRun {
			report.DryRun = true
		}
		switch e.Action {
		case audit.ActionRunStarted:
			ts := e.Timestamp
			report.StartedAt = &ts
		case audit.ActionRunCompleted, audit.ActionRunCompletedNoop:
			ts := e.Timestamp
			report.FinishedAt = &ts
		}
	}

	if cfg.Catalog.Path != "" {
		if _, err := os.Stat(cfg.Catalog.Path); err == nil {
			cat, err := catalog.NewCatalog(catalog.Config{
				Path:             cfg.Catalog.Path,
				SnapshotInterval: cfg.Catalog.SnapshotInterval,
			})
			if err != nil {
				return cli.NewCommandError("audit", fmt.Errorf("opening catalog: %w", err))
			}
			defer cat.Close()

			summary, err := cat.RunSummary(ctx, runID)
			if err != nil {
				return cli.NewCommandError("audit", fmt.Errorf("summarizing run: %w", err))
			}
			if len(summary) > 0 {
				report.States = make(map[string]int64, len(summary))
				for state, n := range summary {
					report.States[string(state)] = n
				}
			}
		}
	}

	if format == cli.FormatJSON {
		formatter := cli.NewFormatter(format)
		return formatter.FormatTo(os.Stdout, report)
	}
	printRunReport(os.Stdout, report)
	return nil
}

func printRunReport(w *os.File, r *runReport) {
	fmt.Fprintf(w, "Run %s", r.RunID)
	if r.DryRun {
		fmt.Fprint(w, " (dry run)")
	}
	fmt.Fprintln(w)

	if r.StartedAt != nil {
		fmt.Fprintf(w, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	}
	if r.FinishedAt != nil {
		fmt.Fprintf(w, "Finished: %s\n", r.FinishedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "Finished: (run did not complete)")
	}
	fmt.Fprintf(w, "Audit entries: %d\n", r.Entries)

	fmt.Fprintln(w, "\nActions:")
	for _, k := range sortedKeys(r.Actions) {
		fmt.Fprintf(w, "  %-20s %d\n", k, r.Actions[k])
	}

	if len(r.States) > 0 {
		fmt.Fprintln(w, "\nCatalog states:")
		for _, k := range sortedKeys(r.States) {
			fmt.Fprintf(w, "  %-20s %d\n", k, r.States[k])
		}
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
