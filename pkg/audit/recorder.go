package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig contains configuration for the audit recorder.
type RecorderConfig struct {
	// RunID groups all entries written by this recorder. Assigned a fresh
	// UUID when empty.
	RunID string

	// DryRun stamps every entry as written by a dry-run sweep.
	DryRun bool

	// Now supplies entry timestamps. Default: time.Now.
	Now func() time.Time
}

// Recorder stamps and persists audit entries. Writes are synchronous:
// Record returns only after the sink has durably appended the entry, so a
// nil return is the caller's license to advance a file's lifecycle state.
// A failed write must stop that file's processing (no unlogged deletions).
type Recorder struct {
	sink   Sink
	runID  string
	dryRun bool
	now    func() time.Time
	seq    atomic.Int64
}

// NewRecorder creates a recorder for one run over the given sink.
func NewRecorder(sink Sink, cfg *RecorderConfig) *Recorder {
	if cfg == nil {
		cfg = &RecorderConfig{}
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		sink:   sink,
		runID:  runID,
		dryRun: cfg.DryRun,
		now:    now,
	}
}

// RunID returns the run identifier stamped on every entry.
func (r *Recorder) RunID() string {
	return r.runID
}

// Sequence returns the number of entries recorded so far.
func (r *Recorder) Sequence() int64 {
	return r.seq.Load()
}

// Record stamps the entry with identity, run id, sequence and timestamp,
// then appends it to the sink. The caller sets partition/file, action,
// outcome, digest and detail. On failure the returned error is a
// *LogWriteError wrapping the sink's error; the sequence number is still
// consumed so a later successful entry never reuses it.
func (r *Recorder) Record(ctx context.Context, entry *Entry) error {
	entry.ID = uuid.New().String()
	entry.RunID = r.runID
	entry.Sequence = r.seq.Add(1)
	entry.Timestamp = r.now()
	if r.dryRun {
		entry.DryRun = true
	}

	if err := r.sink.Append(ctx, entry); err != nil {
		return NewLogWriteError(entry.Action, entry.Partition, entry.File, err)
	}
	return nil
}
