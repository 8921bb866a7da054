package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"helpdesk-hq/custodian/pkg/config"
)

// writeTestConfig writes a config that points every data path into dir and
// returns the config file path. extra is appended verbatim for sections a
// test adds (holds, daemon overrides).
func writeTestConfig(t *testing.T, dir, extra string) string {
	t.Helper()

	content := fmt.Sprintf(`store:
  root: %s/tickets
archive:
  sink: dir
  root: %s/archive
retention:
  window_days: 60
audit:
  backend: jsonl
  log_path: %s/audit/audit.jsonl
catalog:
  path: %s/catalog.db
telemetry:
  logging:
    level: error
    format: text
%s`, dir, dir, dir, dir, extra)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// useConfig points the config singleton and the global --config flag at
// path. Initialize only loads on its first call in the process, so the
// helper follows it with an explicit reload.
func useConfig(t *testing.T, path string) {
	t.Helper()

	if err := config.Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := config.ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}

	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })
}

// seedTicket writes one ticket file into a store partition.
func seedTicket(t *testing.T, root, partition, name, content string) string {
	t.Helper()

	dir := filepath.Join(root, partition)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating partition: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing ticket: %v", err)
	}
	return path
}

// sweepFixture seeds one long-expired ticket and sweeps it, leaving behind
// a populated archive, audit log, and catalog under the returned dir.
func sweepFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	useConfig(t, writeTestConfig(t, dir, ""))
	seedTicket(t, filepath.Join(dir, "tickets"), "2000-01-02", "ticket_120000_ab12cd34.txt", "stale ticket body")

	sweepFlags.dryRun = false
	sweepFlags.window = 0
	sweepFlags.format = "json"
	if err := runSweep(nil, nil); err != nil {
		t.Fatalf("runSweep() error = %v", err)
	}
	return dir
}
