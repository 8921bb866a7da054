package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"helpdesk-hq/custodian/pkg/config"
)

// Syncer keeps a local clone of the hold registry repository current.
// The first Sync clones (or opens an existing clone), later calls pull.
// All methods are safe for concurrent use.
type Syncer struct {
	cfg       *config.HoldsGitConfig
	localPath string
	auth      AuthProvider
	logger    *slog.Logger

	mu      sync.Mutex
	repo    *gogit.Repository
	metrics SyncMetrics
}

// NewSyncer creates a syncer for the configured registry repository.
// It validates configuration and resolves credentials but performs no
// network I/O until Sync is called.
func NewSyncer(cfg *config.HoldsGitConfig, logger *slog.Logger) (*Syncer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("git config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "custodian-holds")
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "holds.git", "repository", cfg.Repository)

	return &Syncer{
		cfg:       cfg,
		localPath: localPath,
		auth:      auth,
		logger:    logger,
	}, nil
}

// LocalPath returns the directory holding the local clone.
func (s *Syncer) LocalPath() string {
	return s.localPath
}

// RegistryPath returns the filesystem path of the hold registry file
// inside the local clone. The file exists only after a successful Sync.
func (s *Syncer) RegistryPath() string {
	return filepath.Join(s.localPath, s.cfg.Path)
}

// Sync brings the local clone up to date with the tracked branch. The
// first call clones the repository (or opens a clone left by a previous
// process); subsequent calls pull. Changed reports whether HEAD moved.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if s.repo == nil {
		result, err := s.openOrClone(ctx)
		if err != nil {
			s.metrics.FailedSyncs++
			return nil, err
		}
		if result.Cloned {
			s.recordSync(result.ToSHA)
			return result, nil
		}
		// Opened an existing clone; fall through and pull so a stale
		// checkout from a previous process does not serve old holds.
	}

	result, err := s.pull(ctx)
	if err != nil {
		s.metrics.FailedSyncs++
		return nil, err
	}
	s.recordSync(result.ToSHA)
	return result, nil
}

// openOrClone opens the clone at localPath if one exists, otherwise
// clones the repository. CleanOnStart removes any existing directory
// before cloning.
func (s *Syncer) openOrClone(ctx context.Context) (*SyncResult, error) {
	if s.cfg.Clone.CleanOnStart {
		s.logger.Info("removing existing clone", "path", s.localPath)
		if err := os.RemoveAll(s.localPath); err != nil {
			return nil, fmt.Errorf("failed to clean local path: %w", err)
		}
	}

	gitDir := filepath.Join(s.localPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		s.logger.Info("opening existing clone", "path", s.localPath)
		repo, err := gogit.PlainOpen(s.localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open existing clone: %w", err)
		}
		s.repo = repo
		sha, err := s.headSHA()
		if err != nil {
			return nil, err
		}
		return &SyncResult{FromSHA: sha, ToSHA: sha}, nil
	}

	if err := os.MkdirAll(s.localPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local path: %w", err)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:           s.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  s.cfg.Clone.Depth > 0,
		Depth:         s.cfg.Clone.Depth,
		Auth:          auth,
	}

	s.logger.Info("cloning hold registry repository",
		"branch", s.cfg.Branch,
		"depth", s.cfg.Clone.Depth,
		"auth", s.auth.Type(),
	)

	start := time.Now()
	repo, err := gogit.PlainCloneContext(ctx, s.localPath, false, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	s.repo = repo
	s.metrics.CloneDuration = time.Since(start)

	sha, err := s.headSHA()
	if err != nil {
		return nil, err
	}

	s.logger.Info("clone complete",
		"duration", s.metrics.CloneDuration,
		"commit", sha,
	)
	return &SyncResult{Cloned: true, ToSHA: sha, Changed: true}, nil
}

// pull fetches and merges the tracked branch.
func (s *Syncer) pull(ctx context.Context) (*SyncResult, error) {
	fromSHA, err := s.headSHA()
	if err != nil {
		return nil, err
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}

	start := time.Now()
	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Auth:          auth,
		Force:         false,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to pull repository: %w", err)
	}
	s.metrics.PullDuration = time.Since(start)

	toSHA, err := s.headSHA()
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		FromSHA: fromSHA,
		ToSHA:   toSHA,
		Changed: fromSHA != toSHA,
	}
	if result.Changed {
		s.logger.Info("hold registry updated",
			"from", fromSHA,
			"to", toSHA,
			"duration", s.metrics.PullDuration,
		)
	} else {
		s.logger.Debug("hold registry already up to date", "commit", toSHA)
	}
	return result, nil
}

// Head returns metadata for the current HEAD commit.
func (s *Syncer) Head() (*CommitInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not synced")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}

	return &CommitInfo{
		SHA:        commit.Hash.String(),
		Author:     commit.Author.Name,
		Email:      commit.Author.Email,
		Timestamp:  commit.Author.When,
		Message:    commit.Message,
		Branch:     s.cfg.Branch,
		Repository: s.cfg.Repository,
	}, nil
}

// Metrics returns a snapshot of sync statistics.
func (s *Syncer) Metrics() SyncMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

func (s *Syncer) headSHA() (string, error) {
	ref, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

func (s *Syncer) recordSync(sha string) {
	s.metrics.SuccessfulSyncs++
	s.metrics.LastSyncTime = time.Now()
	s.metrics.LastCommitSHA = sha
}
