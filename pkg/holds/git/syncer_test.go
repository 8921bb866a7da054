package git

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/holds"
)

const initialRegistry = `holds:
  - partition: "2024-01-01"
    reason: "case-4711"
`

const updatedRegistry = `holds:
  - partition: "2024-01-01"
    reason: "case-4711"
  - partition: "2024-02-15"
    file: "ticket_091500_ab12cd34.txt"
    reason: "litigation-2024-009"
`

// createRegistryRepo initializes a git repository containing a hold
// registry file and returns its path. PlainInit puts HEAD on master.
func createRegistryRepo(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "holds.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write registry: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("holds.yaml"); err != nil {
		t.Fatalf("failed to add registry: %v", err)
	}
	if _, err := worktree.Commit("add hold registry", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Legal Ops",
			Email: "legal-ops@example.com",
			When:  time.Now(),
		},
	}); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return dir
}

// commitRegistryChange rewrites the registry file in an existing repo
// and commits it, returning the new commit SHA.
func commitRegistryChange(t *testing.T, dir, contents, message string) string {
	t.Helper()

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "holds.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write registry: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("holds.yaml"); err != nil {
		t.Fatalf("failed to add registry: %v", err)
	}
	sha, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Legal Ops",
			Email: "legal-ops@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return sha.String()
}

func testSyncerConfig(t *testing.T, sourceRepo string) *config.HoldsGitConfig {
	t.Helper()
	return &config.HoldsGitConfig{
		Enabled:    true,
		Repository: sourceRepo,
		Branch:     "master",
		Path:       "holds.yaml",
		Timeout:    30 * time.Second,
		Auth:       config.GitAuthConfig{Type: "none"},
		Clone: config.GitCloneConfig{
			LocalPath: filepath.Join(t.TempDir(), "clone"),
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSyncer_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.HoldsGitConfig
	}{
		{name: "nil config", cfg: nil},
		{name: "missing repository", cfg: &config.HoldsGitConfig{Branch: "main"}},
		{
			name: "invalid auth",
			cfg: &config.HoldsGitConfig{
				Repository: "https://example.com/holds.git",
				Auth:       config.GitAuthConfig{Type: "kerberos"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSyncer(tt.cfg, discardLogger()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestSyncer_InitialClone(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	cfg := testSyncerConfig(t, source)

	syncer, err := NewSyncer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !result.Cloned {
		t.Error("Cloned = false, want true for first sync")
	}
	if !result.Changed {
		t.Error("Changed = false, want true for first sync")
	}
	if result.FromSHA != "" {
		t.Errorf("FromSHA = %q, want empty on initial clone", result.FromSHA)
	}
	if result.ToSHA == "" {
		t.Error("ToSHA is empty")
	}

	data, err := os.ReadFile(syncer.RegistryPath())
	if err != nil {
		t.Fatalf("registry file missing after clone: %v", err)
	}
	if string(data) != initialRegistry {
		t.Errorf("registry content = %q, want %q", data, initialRegistry)
	}
}

func TestSyncer_RegistryLoadsFromClone(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	syncer, err := NewSyncer(testSyncerConfig(t, source), discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	registry := holds.NewRegistry(syncer.RegistryPath(), discardLogger())
	if err := registry.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reason, held := registry.Match("2024-01-01", "ticket_101500_deadbeef.txt"); !held || reason != "case-4711" {
		t.Errorf("Match() = (%q, %v), want (case-4711, true)", reason, held)
	}
}

func TestSyncer_SecondSyncIsNoop(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	syncer, err := NewSyncer(testSyncerConfig(t, source), discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	first, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	second, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	if second.Cloned {
		t.Error("second sync reported a clone")
	}
	if second.Changed {
		t.Error("Changed = true, want false when upstream did not move")
	}
	if second.FromSHA != first.ToSHA || second.ToSHA != first.ToSHA {
		t.Errorf("second sync SHAs = (%s, %s), want both %s", second.FromSHA, second.ToSHA, first.ToSHA)
	}
}

func TestSyncer_PullPicksUpNewCommit(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	syncer, err := NewSyncer(testSyncerConfig(t, source), discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	first, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	newSHA := commitRegistryChange(t, source, updatedRegistry, "add litigation hold")

	second, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if !second.Changed {
		t.Fatal("Changed = false, want true after upstream commit")
	}
	if second.FromSHA != first.ToSHA {
		t.Errorf("FromSHA = %s, want %s", second.FromSHA, first.ToSHA)
	}
	if second.ToSHA != newSHA {
		t.Errorf("ToSHA = %s, want %s", second.ToSHA, newSHA)
	}

	data, err := os.ReadFile(syncer.RegistryPath())
	if err != nil {
		t.Fatalf("registry file missing after pull: %v", err)
	}
	if string(data) != updatedRegistry {
		t.Errorf("registry content not updated after pull:\n%s", data)
	}
}

func TestSyncer_OpensExistingClone(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	cfg := testSyncerConfig(t, source)

	first, err := NewSyncer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if _, err := first.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	// A new process reusing the same local path opens the clone
	// instead of recloning, then pulls.
	second, err := NewSyncer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	result, err := second.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Cloned {
		t.Error("Cloned = true, want false when a clone already exists")
	}
	if result.Changed {
		t.Error("Changed = true, want false when upstream did not move")
	}
}

func TestSyncer_CleanOnStart(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	cfg := testSyncerConfig(t, source)
	cfg.Clone.CleanOnStart = true

	// Leave debris where the clone will go.
	if err := os.MkdirAll(cfg.Clone.LocalPath, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(cfg.Clone.LocalPath, "stale.txt")
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatal(err)
	}

	syncer, err := NewSyncer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !result.Cloned {
		t.Error("Cloned = false, want true after clean")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived clean_on_start")
	}
	if _, err := os.Stat(syncer.RegistryPath()); err != nil {
		t.Errorf("registry file missing after clone: %v", err)
	}
}

func TestSyncer_Head(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	syncer, err := NewSyncer(testSyncerConfig(t, source), discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	if _, err := syncer.Head(); err == nil {
		t.Fatal("Head() before Sync should fail")
	}

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	head, err := syncer.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if head.SHA != result.ToSHA {
		t.Errorf("SHA = %s, want %s", head.SHA, result.ToSHA)
	}
	if head.Author != "Legal Ops" {
		t.Errorf("Author = %q, want %q", head.Author, "Legal Ops")
	}
	if head.Email != "legal-ops@example.com" {
		t.Errorf("Email = %q, want %q", head.Email, "legal-ops@example.com")
	}
	if head.Branch != "master" {
		t.Errorf("Branch = %q, want %q", head.Branch, "master")
	}
	if head.Message != "add hold registry" {
		t.Errorf("Message = %q, want %q", head.Message, "add hold registry")
	}
}

func TestSyncer_NonexistentRepository(t *testing.T) {
	cfg := testSyncerConfig(t, filepath.Join(t.TempDir(), "does-not-exist"))
	syncer, err := NewSyncer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if _, err := syncer.Sync(context.Background()); err == nil {
		t.Fatal("expected error for nonexistent repository")
	}
	if m := syncer.Metrics(); m.FailedSyncs != 1 {
		t.Errorf("FailedSyncs = %d, want 1", m.FailedSyncs)
	}
}

func TestSyncer_Metrics(t *testing.T) {
	source := createRegistryRepo(t, initialRegistry)
	syncer, err := NewSyncer(testSyncerConfig(t, source), discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	m := syncer.Metrics()
	if m.SuccessfulSyncs != 1 {
		t.Errorf("SuccessfulSyncs = %d, want 1", m.SuccessfulSyncs)
	}
	if m.LastCommitSHA != result.ToSHA {
		t.Errorf("LastCommitSHA = %s, want %s", m.LastCommitSHA, result.ToSHA)
	}
	if m.LastSyncTime.IsZero() {
		t.Error("LastSyncTime not recorded")
	}
}

func TestSyncer_DefaultLocalPath(t *testing.T) {
	cfg := &config.HoldsGitConfig{
		Repository: "https://example.com/holds.git",
		Branch:     "main",
		Path:       "holds.yaml",
	}
	syncer, err := NewSyncer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	want := filepath.Join(os.TempDir(), "custodian-holds")
	if syncer.LocalPath() != want {
		t.Errorf("LocalPath() = %q, want %q", syncer.LocalPath(), want)
	}
	if syncer.RegistryPath() != filepath.Join(want, "holds.yaml") {
		t.Errorf("RegistryPath() = %q", syncer.RegistryPath())
	}
}
