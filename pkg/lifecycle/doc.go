// Package lifecycle implements the retention sweep: the archive-verify-delete
// pipeline that moves expired ticket partitions out of live storage.
//
// # Pipeline
//
// A sweep walks every date partition in the ticket store and drives each
// file of an expired partition through a fixed sequence of states:
//
//	Discovered → PolicyEvaluated → Archived → Verified → Deleted
//	                                   ↓           ↓
//	                              CopyError    Held (mismatch,
//	                              (retried      legal hold,
//	                               next run)    read retries)
//
// The ordering is the safety property of the whole system: a local file is
// deleted only after its archive copy has been independently re-read and
// its SHA-256 digest matched against the source. No verification, no
// deletion.
//
// # Components
//
//   - RetentionPolicy decides eligibility from the partition date and an
//     injectable Clock.
//   - Archiver copies files into a Sink and maintains per-partition
//     manifests.
//   - Verifier computes and compares source and archive digests.
//   - Orchestrator sequences the above per file, records every transition
//     through the audit Recorder, and tracks progress in the sweep catalog.
//   - Scheduler triggers recurring sweeps from a cron expression.
//
// # Failure Isolation
//
// Failures are contained at the smallest scope that can absorb them. A
// file that cannot be copied, read, or verified is skipped for this run
// and the sweep moves on; only run-level faults (store or archive root
// inaccessible, audit sink unopenable) abort the sweep. A verification
// mismatch is a correctness fault: the file is held for operator
// attention and never retried automatically.
//
// # Basic Usage
//
//	policy, err := lifecycle.NewRetentionPolicy(60, lifecycle.SystemClock{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	orch, err := lifecycle.NewOrchestrator(&lifecycle.Options{
//	    Store:    st,
//	    Sink:     sink,
//	    Policy:   policy,
//	    Recorder: recorder,
//	    Catalog:  cat,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := orch.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("deleted %d files\n", report.FilesDeleted)
package lifecycle
