//go:build integration

package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/holds"
	"helpdesk-hq/custodian/pkg/lifecycle"
	"helpdesk-hq/custodian/pkg/store"
)

// sweepEnv wires a complete sweep stack over temp directories: store,
// archive, JSONL audit, catalog, and a fixed clock at 2024-06-01 with a
// 30-day retention window (cutoff 2024-05-02).
type sweepEnv struct {
	dir       string
	storeRoot string
	store     *store.Store
	sink      *lifecycle.DirSink
	policy    *lifecycle.RetentionPolicy
	auditSink audit.Sink
	catalog   *catalog.Catalog
	clock     lifecycle.FixedClock
}

func newSweepEnv(t *testing.T) *sweepEnv {
	t.Helper()

	dir := t.TempDir()
	env := &sweepEnv{
		dir:       dir,
		storeRoot: filepath.Join(dir, "tickets"),
		clock:     lifecycle.FixedClock{Time: time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)},
	}

	var err error
	if env.store, err = store.NewStore(env.storeRoot); err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if env.sink, err = lifecycle.NewDirSink(filepath.Join(dir, "archive")); err != nil {
		t.Fatalf("NewDirSink() error = %v", err)
	}
	if env.policy, err = lifecycle.NewRetentionPolicy(30, env.clock); err != nil {
		t.Fatalf("NewRetentionPolicy() error = %v", err)
	}
	if env.auditSink, err = audit.NewJSONLSink(filepath.Join(dir, "audit.jsonl")); err != nil {
		t.Fatalf("NewJSONLSink() error = %v", err)
	}
	t.Cleanup(func() { env.auditSink.Close() })
	if env.catalog, err = catalog.NewCatalog(catalog.Config{Path: filepath.Join(dir, "catalog.db")}); err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	t.Cleanup(func() { env.catalog.Close() })

	return env
}

func (e *sweepEnv) seed(t *testing.T, partition, name, content string) string {
	t.Helper()

	dir := filepath.Join(e.storeRoot, partition)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating partition: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing ticket: %v", err)
	}
	return path
}

// run performs one sweep with a fresh recorder (fresh run id), the way the
// daemon does between scheduler ticks.
func (e *sweepEnv) run(t *testing.T, checker lifecycle.HoldChecker, dryRun bool) *lifecycle.Report {
	t.Helper()

	recorder := audit.NewRecorder(e.auditSink, &audit.RecorderConfig{DryRun: dryRun})
	opts := &lifecycle.Options{
		Store:    e.store,
		Sink:     e.sink,
		Policy:   e.policy,
		Recorder: recorder,
		Catalog:  e.catalog,
		Clock:    e.clock,
		DryRun:   dryRun,
	}
	if checker != nil {
		opts.Holds = checker
	}

	orch, err := lifecycle.NewOrchestrator(opts)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	report, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return report
}

func TestSweepLifecycleEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := newSweepEnv(t)
	ctx := context.Background()

	// Two expired files, one fresh, one expired-but-held.
	a := env.seed(t, "2024-04-01", "ticket_080000_aaaa1111.txt", "laptop will not boot")
	b := env.seed(t, "2024-04-01", "ticket_091500_bbbb2222.txt", "vpn drops hourly")
	c := env.seed(t, "2024-05-30", "ticket_101500_cccc3333.txt", "fresh ticket")
	d := env.seed(t, "2024-03-15", "ticket_110000_dddd4444.txt", "under litigation")

	holdsPath := filepath.Join(env.dir, "holds.yaml")
	registryYAML := "holds:\n  - partition: \"2024-03-15\"\n    reason: \"case-4711\"\n"
	if err := os.WriteFile(holdsPath, []byte(registryYAML), 0o644); err != nil {
		t.Fatalf("writing holds: %v", err)
	}
	registry := holds.NewRegistry(holdsPath, nil)
	if err := registry.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	report := env.run(t, registry, false)

	if !report.Clean() {
		t.Fatalf("sweep not clean: errors=%v", report.Errors)
	}
	if report.FilesDeleted != 2 {
		t.Errorf("FilesDeleted = %d, want 2", report.FilesDeleted)
	}
	if report.FilesHeld != 1 {
		t.Errorf("FilesHeld = %d, want 1", report.FilesHeld)
	}
	if report.PartitionsEligible != 2 {
		t.Errorf("PartitionsEligible = %d, want 2", report.PartitionsEligible)
	}

	// Expired files are gone from the store, their partition removed.
	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expired file %s still in store", path)
		}
	}
	if _, err := os.Stat(filepath.Join(env.storeRoot, "2024-04-01")); !os.IsNotExist(err) {
		t.Error("swept partition directory still in store")
	}

	// Fresh and held files are untouched.
	for _, path := range []string{c, d} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file %s should be untouched: %v", path, err)
		}
	}

	// Archive holds the deleted files plus a manifest; held files are
	// never copied.
	archived, err := os.ReadFile(filepath.Join(env.dir, "archive", "2024-04-01", "ticket_080000_aaaa1111.txt"))
	if err != nil {
		t.Fatalf("archived copy missing: %v", err)
	}
	if string(archived) != "laptop will not boot" {
		t.Errorf("archived content = %q", archived)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "archive", "2024-04-01", "manifest.json")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "archive", "2024-03-15")); !os.IsNotExist(err) {
		t.Error("held partition was copied to the archive")
	}

	// The audit trail has the full story, in order, for each file.
	deleted, err := env.auditSink.Query(ctx, &audit.Query{Action: audit.ActionDeleted})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("got %d deleted entries, want 2", len(deleted))
	}

	fileTrail, err := env.auditSink.Query(ctx, &audit.Query{
		Partition: "2024-04-01",
		File:      "ticket_080000_aaaa1111.txt",
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	wantOrder := []audit.Action{
		audit.ActionPolicyEvaluated,
		audit.ActionArchived,
		audit.ActionVerified,
		audit.ActionDeleted,
	}
	if len(fileTrail) != len(wantOrder) {
		t.Fatalf("got %d entries for file, want %d", len(fileTrail), len(wantOrder))
	}
	for i, want := range wantOrder {
		if fileTrail[i].Action != want {
			t.Errorf("entry %d action = %q, want %q", i, fileTrail[i].Action, want)
		}
		if i > 0 && fileTrail[i].Sequence <= fileTrail[i-1].Sequence {
			t.Errorf("entry %d sequence %d not after %d", i, fileTrail[i].Sequence, fileTrail[i-1].Sequence)
		}
	}

	// The catalog agrees with the report.
	summary, err := env.catalog.RunSummary(ctx, report.RunID)
	if err != nil {
		t.Fatalf("RunSummary() error = %v", err)
	}
	if summary[catalog.StateDeleted] != 2 {
		t.Errorf("catalog deleted = %d, want 2", summary[catalog.StateDeleted])
	}
	if summary[catalog.StateHeld] != 1 {
		t.Errorf("catalog held = %d, want 1", summary[catalog.StateHeld])
	}

	// A second run changes nothing: the held file is re-reported, the
	// deleted files stay deleted.
	report2 := env.run(t, registry, false)
	if report2.FilesDeleted != 0 {
		t.Errorf("second run FilesDeleted = %d, want 0", report2.FilesDeleted)
	}
	if report2.FilesHeld != 1 {
		t.Errorf("second run FilesHeld = %d, want 1", report2.FilesHeld)
	}
	if _, err := os.Stat(d); err != nil {
		t.Errorf("held file disturbed by second run: %v", err)
	}

	// Releasing the hold lets the third run finish the job.
	if err := os.WriteFile(holdsPath, []byte("holds: []\n"), 0o644); err != nil {
		t.Fatalf("rewriting holds: %v", err)
	}
	if err := registry.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	report3 := env.run(t, registry, false)
	if report3.FilesDeleted != 1 {
		t.Errorf("third run FilesDeleted = %d, want 1", report3.FilesDeleted)
	}
	if _, err := os.Stat(d); !os.IsNotExist(err) {
		t.Error("released file still in store")
	}
	if _, err := os.Stat(filepath.Join(env.dir, "archive", "2024-03-15", "ticket_110000_dddd4444.txt")); err != nil {
		t.Errorf("released file not archived: %v", err)
	}
}

func TestSweepDryRunMakesNoChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := newSweepEnv(t)
	ctx := context.Background()

	path := env.seed(t, "2024-04-01", "ticket_080000_aaaa1111.txt", "expired")

	report := env.run(t, nil, true)

	if !report.DryRun {
		t.Error("report not marked dry run")
	}
	if report.WouldDelete != 1 {
		t.Errorf("WouldDelete = %d, want 1", report.WouldDelete)
	}
	if report.FilesDeleted != 0 {
		t.Errorf("FilesDeleted = %d, want 0", report.FilesDeleted)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("dry run disturbed the store: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "archive", "2024-04-01")); !os.IsNotExist(err) {
		t.Error("dry run wrote to the archive")
	}

	// Audit entries exist and carry the dry-run stamp; the catalog has
	// no record of the run.
	entries, err := env.auditSink.Query(ctx, &audit.Query{RunID: report.RunID})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("dry run wrote no audit entries")
	}
	for _, e := range entries {
		if !e.DryRun {
			t.Errorf("entry %s/%s not stamped dry run", e.Action, e.Outcome)
		}
	}
	summary, err := env.catalog.RunSummary(ctx, report.RunID)
	if err != nil {
		t.Fatalf("RunSummary() error = %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("dry run wrote catalog states: %v", summary)
	}
}

func TestSweepAuditMirrorsAgree(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dir := t.TempDir()

	jsonlSink, err := audit.NewJSONLSink(filepath.Join(dir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLSink() error = %v", err)
	}
	defer jsonlSink.Close()
	sqliteSink, err := audit.NewSQLiteSink(&audit.SQLiteConfig{Path: filepath.Join(dir, "audit.db")})
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	defer sqliteSink.Close()
	multi := audit.NewMultiSink(jsonlSink, sqliteSink)

	st, err := store.NewStore(filepath.Join(dir, "tickets"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	sink, err := lifecycle.NewDirSink(filepath.Join(dir, "archive"))
	if err != nil {
		t.Fatalf("NewDirSink() error = %v", err)
	}
	clock := lifecycle.FixedClock{Time: time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)}
	policy, err := lifecycle.NewRetentionPolicy(30, clock)
	if err != nil {
		t.Fatalf("NewRetentionPolicy() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("ticket_08000%d_aaaa111%d.txt", i, i)
		dirp := filepath.Join(dir, "tickets", "2024-04-01")
		if err := os.MkdirAll(dirp, 0o755); err != nil {
			t.Fatalf("creating partition: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dirp, name), []byte("body"), 0o644); err != nil {
			t.Fatalf("writing ticket: %v", err)
		}
	}

	recorder := audit.NewRecorder(multi, nil)
	orch, err := lifecycle.NewOrchestrator(&lifecycle.Options{
		Store:    st,
		Sink:     sink,
		Policy:   policy,
		Recorder: recorder,
		Clock:    clock,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	report, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ctx := context.Background()
	query := &audit.Query{RunID: report.RunID, Limit: 1000}

	fromJSONL, err := jsonlSink.Query(ctx, query)
	if err != nil {
		t.Fatalf("jsonl Query() error = %v", err)
	}
	fromSQLite, err := sqliteSink.Query(ctx, query)
	if err != nil {
		t.Fatalf("sqlite Query() error = %v", err)
	}

	if len(fromJSONL) == 0 {
		t.Fatal("jsonl sink has no entries")
	}
	if len(fromJSONL) != len(fromSQLite) {
		t.Fatalf("jsonl has %d entries, sqlite has %d", len(fromJSONL), len(fromSQLite))
	}
	for i := range fromJSONL {
		j, s := fromJSONL[i], fromSQLite[i]
		if j.ID != s.ID || j.Action != s.Action || j.Sequence != s.Sequence {
			t.Errorf("entry %d diverges: jsonl=%s/%s/%d sqlite=%s/%s/%d",
				i, j.ID, j.Action, j.Sequence, s.ID, s.Action, s.Sequence)
		}
	}
}
