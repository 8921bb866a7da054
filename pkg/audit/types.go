package audit

import (
	"context"
	"time"
)

// Action identifies the lifecycle step an audit entry records.
type Action string

const (
	// Per-file actions, one per state transition of the eligible pipeline.
	ActionPolicyEvaluated Action = "policy_evaluated"
	ActionArchived        Action = "archived"
	ActionVerified        Action = "verified"
	ActionDeleted         Action = "deleted"
	ActionHeld            Action = "held"
	ActionCopyFailed      Action = "copy_failed"
	ActionVerifyMismatch  Action = "verify_mismatch"
	ActionPolicyError     Action = "policy_error"

	// Run-level actions bracketing every sweep.
	ActionRunStarted       Action = "run_started"
	ActionRunCompleted     Action = "run_completed"
	ActionRunCompletedNoop Action = "run_completed_noop"
)

// Outcome is the result recorded alongside an action.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeEligible Outcome = "eligible"
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
)

// Entry is one immutable audit record. Entries are append-only: created
// once per action attempt, never mutated or deleted by this system.
type Entry struct {
	// ID is a UUID v4 assigned by the recorder.
	ID string `json:"id"`

	// RunID groups all entries of one sweep.
	RunID string `json:"run_id"`

	// Sequence is monotonic within a run, starting at 1.
	Sequence int64 `json:"sequence"`

	// Timestamp is when the entry was recorded (RFC3339Nano in JSON).
	Timestamp time.Time `json:"timestamp"`

	// Partition and File identify the ticket file; empty for run-level
	// entries.
	Partition string `json:"partition,omitempty"`
	File      string `json:"file,omitempty"`

	Action  Action  `json:"action"`
	Outcome Outcome `json:"outcome"`

	// Digest is the SHA-256 hex of the file content, where applicable.
	Digest string `json:"digest,omitempty"`

	// DryRun marks entries written by a sweep that performed no
	// copy/verify/delete.
	DryRun bool `json:"dry_run,omitempty"`

	// Detail carries free-form context (error text, hold reason, counts).
	Detail map[string]string `json:"detail,omitempty"`
}

// Query defines filter parameters for reading back audit entries.
// Zero-valued fields are ignored.
type Query struct {
	RunID     string     `json:"run_id,omitempty"`
	Partition string     `json:"partition,omitempty"`
	File      string     `json:"file,omitempty"`
	Action    Action     `json:"action,omitempty"`
	Outcome   Outcome    `json:"outcome,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive

	// Limit caps the number of returned entries; 0 means the sink default.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Matches reports whether an entry passes the query's filters. Limit and
// Offset are applied by the sink, not here.
func (q *Query) Matches(e *Entry) bool {
	if q.RunID != "" && e.RunID != q.RunID {
		return false
	}
	if q.Partition != "" && e.Partition != q.Partition {
		return false
	}
	if q.File != "" && e.File != q.File {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if q.Outcome != "" && e.Outcome != q.Outcome {
		return false
	}
	if q.StartTime != nil && e.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && e.Timestamp.After(*q.EndTime) {
		return false
	}
	return true
}

// Sink persists audit entries. Append must be durable before it returns:
// the recorder treats a nil return as permission to advance the file's
// lifecycle state.
type Sink interface {
	// Append writes one entry at the end of the log.
	Append(ctx context.Context, entry *Entry) error

	// Query retrieves entries matching the filters, in append order.
	Query(ctx context.Context, query *Query) ([]*Entry, error)

	// Count returns the number of entries matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Tail returns the last n entries in append order.
	Tail(ctx context.Context, n int) ([]*Entry, error)

	// Close releases resources held by the sink.
	Close() error
}
