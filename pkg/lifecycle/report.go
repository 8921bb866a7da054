package lifecycle

import (
	"strconv"
	"time"

	"helpdesk-hq/custodian/pkg/catalog"
)

// FileResult records the final state one examined file reached during a
// sweep, for operator-facing output. The durable versions of the same
// facts live in the audit log and the catalog.
type FileResult struct {
	Partition string        `json:"partition"`
	File      string        `json:"file"`
	State     catalog.State `json:"state"`
	Reason    string        `json:"reason,omitempty"`
	Error     string        `json:"error,omitempty"`

	// Size is the archived size in bytes, set once the file has a
	// verified archive copy.
	Size int64 `json:"size_bytes,omitempty"`
}

// Report summarizes one sweep run.
type Report struct {
	RunID      string    `json:"run_id"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Partition counters. Skipped partitions are directories whose names
	// do not parse as dates; removed partitions were empty after the
	// sweep and cleaned up.
	PartitionsEvaluated int `json:"partitions_evaluated"`
	PartitionsEligible  int `json:"partitions_eligible"`
	PartitionsSkipped   int `json:"partitions_skipped"`
	PartitionsRemoved   int `json:"partitions_removed"`

	// File counters. FilesSkipped counts files already terminal in the
	// catalog from earlier runs. WouldDelete counts files a dry run
	// would have processed.
	FilesExamined    int `json:"files_examined"`
	FilesArchived    int `json:"files_archived"`
	FilesVerified    int `json:"files_verified"`
	FilesDeleted     int `json:"files_deleted"`
	FilesHeld        int `json:"files_held"`
	FilesSkipped     int `json:"files_skipped"`
	WouldDelete      int `json:"would_delete,omitempty"`
	CopyFailures     int `json:"copy_failures"`
	ReadFailures     int `json:"read_failures"`
	VerifyMismatches int `json:"verify_mismatches"`
	PolicyErrors     int `json:"policy_errors"`

	BytesArchived int64 `json:"bytes_archived"`

	Results []FileResult `json:"results,omitempty"`

	// Errors collects faults that were contained without holding a file:
	// failed manifest writes, failed audit appends, failed deletions.
	Errors []string `json:"errors,omitempty"`
}

// Duration returns how long the sweep ran.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Clean reports whether the sweep finished without any contained fault.
func (r *Report) Clean() bool {
	return r.CopyFailures == 0 &&
		r.ReadFailures == 0 &&
		r.VerifyMismatches == 0 &&
		r.PolicyErrors == 0 &&
		len(r.Errors) == 0
}

// Noop reports whether the sweep found nothing to act on: no eligible
// partitions and no faults worth surfacing.
func (r *Report) Noop() bool {
	return r.PartitionsEligible == 0 && r.PolicyErrors == 0
}

// summaryDetail renders the counters for the run-completion audit entry.
func (r *Report) summaryDetail() map[string]string {
	d := map[string]string{
		"partitions_evaluated": strconv.Itoa(r.PartitionsEvaluated),
		"partitions_eligible":  strconv.Itoa(r.PartitionsEligible),
		"files_examined":       strconv.Itoa(r.FilesExamined),
		"files_archived":       strconv.Itoa(r.FilesArchived),
		"files_deleted":        strconv.Itoa(r.FilesDeleted),
		"files_held":           strconv.Itoa(r.FilesHeld),
		"bytes_archived":       strconv.FormatInt(r.BytesArchived, 10),
		"errors":               strconv.Itoa(len(r.Errors)),
	}
	if r.PartitionsSkipped > 0 {
		d["partitions_skipped"] = strconv.Itoa(r.PartitionsSkipped)
	}
	if r.DryRun {
		d["would_delete"] = strconv.Itoa(r.WouldDelete)
	}
	return d
}
