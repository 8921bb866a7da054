package git

import "time"

// SyncResult describes one Sync call.
type SyncResult struct {
	// Cloned is true when this sync performed the initial clone.
	Cloned bool

	// FromSHA and ToSHA are the HEAD commits before and after the sync.
	// Equal (and Changed false) when the remote had nothing new. FromSHA
	// is empty for the initial clone.
	FromSHA string
	ToSHA   string

	// Changed reports whether the checkout moved.
	Changed bool
}

// CommitInfo identifies the hold registry commit in force.
type CommitInfo struct {
	SHA        string
	Author     string
	Email      string
	Timestamp  time.Time
	Message    string
	Branch     string
	Repository string
}

// SyncMetrics counts sync outcomes for the daemon's gauges.
type SyncMetrics struct {
	CloneDuration   time.Duration
	PullDuration    time.Duration
	LastSyncTime    time.Time
	SuccessfulSyncs int64
	FailedSyncs     int64
	LastCommitSHA   string
}
