package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/catalog"
	"helpdesk-hq/custodian/pkg/store"
	"helpdesk-hq/custodian/pkg/telemetry/tracing"
)

// HoldChecker answers whether a legal hold covers a partition file. The
// holds package provides the production implementation; a nil checker
// means no holds apply.
type HoldChecker interface {
	Match(partition, file string) (reason string, held bool)
}

// Tracer starts spans around sweep phases. It is satisfied by
// telemetry/tracing.Tracer and by any otel trace.Tracer; a nil Tracer in
// Options disables tracing.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Options configures an Orchestrator. Store, Sink, Policy, and Recorder
// are required.
type Options struct {
	// Store is the live ticket store being swept.
	Store *store.Store

	// Sink is the archive destination.
	Sink Sink

	// Policy decides which partitions are out of their retention window.
	Policy *RetentionPolicy

	// Recorder writes the audit trail. Its dry-run flag must match
	// DryRun below so entries are stamped consistently.
	Recorder *audit.Recorder

	// Catalog tracks per-file progress across runs. Optional: without
	// it, terminal files are re-examined every run (still safe, the
	// bytes and the archive are authoritative) and read failures are
	// retried indefinitely instead of being held after MaxReadRetries.
	Catalog *catalog.Catalog

	// Holds gates deletion of files under legal hold. Optional.
	Holds HoldChecker

	// Tracer wraps sweep phases in spans. Optional.
	Tracer Tracer

	// Clock supplies the sweep timestamps. Defaults to the system clock.
	// The retention boundary itself comes from Policy's clock.
	Clock Clock

	// Logger defaults to slog.Default with a component attribute.
	Logger *slog.Logger

	// DryRun evaluates and audits without copying, verifying, deleting,
	// or writing the catalog.
	DryRun bool

	// MaxReadRetries is how many consecutive runs a file's failing reads
	// are retried before the file is held for operator attention.
	// Zero holds on the first failure. Ignored without a Catalog.
	MaxReadRetries int

	// KeepEmptyPartitions leaves fully swept partition directories in
	// place instead of removing them.
	KeepEmptyPartitions bool
}

// Orchestrator drives every file of every expired partition through the
// archive-verify-delete state machine. Failures are contained per file;
// only an inaccessible store, an inaccessible archive, or an audit trail
// that cannot be started aborts a run.
type Orchestrator struct {
	store    *store.Store
	sink     Sink
	policy   *RetentionPolicy
	archiver *Archiver
	verifier *Verifier
	recorder *audit.Recorder
	catalog  *catalog.Catalog
	holds    HoldChecker
	tracer   Tracer
	clock    Clock
	logger   *slog.Logger

	dryRun         bool
	maxReadRetries int
	keepEmpty      bool
}

// NewOrchestrator validates opts and builds an Orchestrator.
func NewOrchestrator(opts *Options) (*Orchestrator, error) {
	if opts == nil {
		return nil, fmt.Errorf("orchestrator options are required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("orchestrator requires a ticket store")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("orchestrator requires an archive sink")
	}
	if opts.Policy == nil {
		return nil, fmt.Errorf("orchestrator requires a retention policy")
	}
	if opts.Recorder == nil {
		return nil, fmt.Errorf("orchestrator requires an audit recorder")
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "lifecycle.orchestrator")
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("custodian.lifecycle")
	}
	retries := opts.MaxReadRetries
	if retries < 0 {
		retries = 0
	}

	return &Orchestrator{
		store:          opts.Store,
		sink:           opts.Sink,
		policy:         opts.Policy,
		archiver:       NewArchiver(opts.Store, opts.Sink, clock),
		verifier:       NewVerifier(opts.Sink),
		recorder:       opts.Recorder,
		catalog:        opts.Catalog,
		holds:          opts.Holds,
		tracer:         tracer,
		clock:          clock,
		logger:         logger,
		dryRun:         opts.DryRun,
		maxReadRetries: retries,
		keepEmpty:      opts.KeepEmptyPartitions,
	}, nil
}

// Run executes one sweep over the whole store and returns its report.
// A non-nil error means the run itself failed; contained per-file faults
// are reported in Report.Errors and the counters instead.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     o.recorder.RunID(),
		DryRun:    o.dryRun,
		StartedAt: o.clock.Now().UTC(),
	}

	ctx, span := o.tracer.Start(ctx, "sweep.run", trace.WithAttributes(
		attribute.String(tracing.AttrRunID, report.RunID),
		attribute.Bool(tracing.AttrDryRun, o.dryRun),
	))
	defer span.End()

	logger := o.logger.With("run_id", report.RunID)
	if o.dryRun {
		logger = logger.With("dry_run", true)
	}

	cutoff := o.policy.Cutoff()
	logger.Info("sweep starting",
		"store_root", o.store.Root(),
		"window_days", o.policy.WindowDays,
		"cutoff", cutoff.Format(store.PartitionLayout),
	)

	if err := o.record(ctx, &audit.Entry{
		Action:  audit.ActionRunStarted,
		Outcome: audit.OutcomeOK,
		Detail: map[string]string{
			"window_days": strconv.Itoa(o.policy.WindowDays),
			"cutoff":      cutoff.Format(store.PartitionLayout),
			"store_root":  o.store.Root(),
		},
	}); err != nil {
		return nil, fmt.Errorf("audit trail unavailable: %w", err)
	}

	// Both roots must be usable before any file is touched. A store
	// root that simply does not exist yet is an empty store, not a
	// fault; discovery will find nothing and the run ends as a noop.
	if err := o.store.CheckAccess(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ticket store not accessible: %w", err)
	}
	if err := o.sink.CheckAccess(ctx); err != nil {
		return nil, fmt.Errorf("archive not accessible: %w", err)
	}

	partitions, skippedNames, err := o.store.Partitions()
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	for _, name := range skippedNames {
		o.reportPolicyError(ctx, logger, report, name,
			NewPolicyError(name, fmt.Errorf("directory name is not a date partition")))
	}

	for _, partition := range partitions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.PartitionsEvaluated++

		if !o.policy.Eligible(partition) {
			// Inside the retention window: not part of the pipeline,
			// no audit entries, no catalog rows.
			continue
		}
		report.PartitionsEligible++

		if err := o.sweepPartition(ctx, logger, report, partition); err != nil {
			return report, err
		}
	}

	report.FinishedAt = o.clock.Now().UTC()

	action := audit.ActionRunCompleted
	if report.Noop() {
		action = audit.ActionRunCompletedNoop
	}
	if err := o.record(ctx, &audit.Entry{
		Action:  action,
		Outcome: audit.OutcomeOK,
		Detail:  report.summaryDetail(),
	}); err != nil {
		return report, fmt.Errorf("recording run completion: %w", err)
	}

	logger.Info("sweep completed",
		"partitions_evaluated", report.PartitionsEvaluated,
		"partitions_eligible", report.PartitionsEligible,
		"files_deleted", report.FilesDeleted,
		"files_held", report.FilesHeld,
		"bytes_archived", report.BytesArchived,
		"errors", len(report.Errors),
		"duration", report.Duration(),
	)
	return report, nil
}

// sweepPartition processes every file of one eligible partition, then
// refreshes the partition manifest and removes the directory if the sweep
// emptied it. The returned error is non-nil only for run-fatal faults.
func (o *Orchestrator) sweepPartition(ctx context.Context, logger *slog.Logger, report *Report, partition store.Partition) error {
	ctx, span := o.tracer.Start(ctx, "sweep.partition", trace.WithAttributes(
		attribute.String(tracing.AttrPartition, partition.Name),
	))
	defer span.End()

	plog := logger.With("partition", partition.Name)

	files, err := o.store.Files(partition.Name)
	if err != nil {
		// The partition exists but cannot be enumerated. Contained:
		// other partitions are unaffected.
		o.reportPolicyError(ctx, plog, report, partition.Name,
			NewPolicyError(partition.Name, err))
		return nil
	}

	var archived []ManifestEntry
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.FilesExamined++

		entry, err := o.sweepFile(ctx, plog, report, partition.Name, f)
		if entry != nil {
			archived = append(archived, *entry)
		}
		if err != nil {
			var logErr *audit.LogWriteError
			if errors.As(err, &logErr) {
				// The file's audit record could not be persisted, so its
				// state must not advance. Freeze it for this run and move
				// on; a broken sink will report the same for every file.
				plog.Error("audit write failed, file state frozen",
					"file", f.Name, "error", err)
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			return err
		}
	}

	if len(archived) > 0 && !o.dryRun {
		if _, err := o.archiver.WriteManifest(ctx, partition.Name, archived); err != nil {
			// Bookkeeping, not data: the copies are already verified.
			plog.Warn("manifest write failed", "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("manifest %s: %v", partition.Name, err))
		}
	}

	if o.keepEmpty || o.dryRun {
		return nil
	}
	empty, err := o.store.IsEmpty(partition.Name)
	if err != nil {
		plog.Warn("could not check partition for emptiness", "error", err)
		return nil
	}
	if !empty {
		return nil
	}
	if err := o.store.RemovePartition(partition.Name); err != nil {
		plog.Warn("could not remove empty partition", "error", err)
		return nil
	}
	report.PartitionsRemoved++
	plog.Info("removed empty partition")
	return nil
}

// sweepFile drives one file through the state machine. It returns the
// manifest entry when the file has a verified archive copy, and an error
// only when an audit write failed (the caller freezes the file). All
// other faults are contained here: counted, logged, audited, and the
// file left for a later run or held.
func (o *Orchestrator) sweepFile(ctx context.Context, logger *slog.Logger, report *Report, partition string, f store.FileInfo) (*ManifestEntry, error) {
	flog := logger.With("file", f.Name)

	// Idempotence: files that already reached a terminal state are not
	// reprocessed and get no further audit entries.
	prior := o.lookup(ctx, flog, partition, f.Name)
	if prior != nil && prior.State.Terminal(prior.Reason) {
		if prior.State == catalog.StateDeleted {
			// A recorded deletion, yet the file is on disk: a new file
			// reused the name. The bytes are authoritative; process it
			// from the start.
			flog.Warn("file reappeared after recorded deletion, reprocessing",
				"deleted_run_id", prior.RunID)
			prior = nil
		} else {
			flog.Debug("skipping file in terminal state",
				"state", prior.State, "reason", prior.Reason)
			report.FilesSkipped++
			report.Results = append(report.Results, FileResult{
				Partition: partition, File: f.Name,
				State: prior.State, Reason: prior.Reason,
			})
			return nil, nil
		}
	}

	// Entry into the pipeline. The attempt counter survives the upsert;
	// it tracks consecutive failing runs and only a successful read past
	// the archive stage clears it.
	attempts := 0
	if prior != nil {
		attempts = prior.Attempts
	}
	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      f.Name,
		Action:    audit.ActionPolicyEvaluated,
		Outcome:   audit.OutcomeEligible,
	}); err != nil {
		return nil, err
	}
	o.upsert(ctx, flog, &catalog.Record{
		Partition: partition, File: f.Name, State: catalog.StateDiscovered,
		Attempts: attempts,
	})

	// Legal holds gate deletion. Checked right after the eligibility
	// decision so a held file is never copied or deleted this run; the
	// hold is re-evaluated every run until lifted.
	if o.holds != nil {
		if holdReason, held := o.holds.Match(partition, f.Name); held {
			if err := o.record(ctx, &audit.Entry{
				Partition: partition,
				File:      f.Name,
				Action:    audit.ActionHeld,
				Outcome:   audit.OutcomeOK,
				Detail: map[string]string{
					"reason": catalog.ReasonLegalHold,
					"hold":   holdReason,
				},
			}); err != nil {
				return nil, err
			}
			o.upsert(ctx, flog, &catalog.Record{
				Partition: partition, File: f.Name,
				State: catalog.StateHeld, Reason: catalog.ReasonLegalHold,
			})
			flog.Info("file under legal hold, deletion gated", "hold", holdReason)
			report.FilesHeld++
			report.Results = append(report.Results, FileResult{
				Partition: partition, File: f.Name,
				State: catalog.StateHeld, Reason: catalog.ReasonLegalHold,
			})
			return nil, nil
		}
	}

	if o.dryRun {
		flog.Info("dry run: would archive, verify, and delete")
		report.WouldDelete++
		report.Results = append(report.Results, FileResult{
			Partition: partition, File: f.Name,
			State: catalog.StateDiscovered, Reason: "dry_run",
		})
		return nil, nil
	}

	path, err := o.store.FilePath(partition, f.Name)
	if err != nil {
		return nil, o.holdOrRetryRead(ctx, flog, report, partition, f.Name, "source", err)
	}

	// First read of the verify protocol: the source digest, computed
	// before any bytes move.
	srcDigest, err := o.digestSource(ctx, path)
	if err != nil {
		return nil, o.holdOrRetryRead(ctx, flog, report, partition, f.Name, "source", err)
	}

	// An archive copy may exist from an interrupted run. A copy that
	// matches the source is reused; anything else is overwritten.
	record, archiveDigest, err := o.reuseOrCopy(ctx, flog, partition, f.Name, srcDigest)
	if err != nil {
		var copyErr *CopyError
		if errors.As(err, &copyErr) {
			report.CopyFailures++
			flog.Error("copy to archive failed, original left in place", "error", err)
			if rerr := o.record(ctx, &audit.Entry{
				Partition: partition,
				File:      f.Name,
				Action:    audit.ActionCopyFailed,
				Outcome:   audit.OutcomeFailed,
				Detail:    map[string]string{"error": err.Error()},
			}); rerr != nil {
				return nil, rerr
			}
			report.Results = append(report.Results, FileResult{
				Partition: partition, File: f.Name,
				State: catalog.StateDiscovered, Reason: "copy_failed", Error: err.Error(),
			})
			return nil, nil // retried next run
		}
		return nil, o.holdOrRetryRead(ctx, flog, report, partition, f.Name, "archive", err)
	}

	detail := map[string]string{
		"location":   record.Location,
		"size_bytes": strconv.FormatInt(record.Size, 10),
	}
	if record.Reused {
		detail["reused"] = "true"
	}
	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      f.Name,
		Action:    audit.ActionArchived,
		Outcome:   audit.OutcomeOK,
		Digest:    srcDigest,
		Detail:    detail,
	}); err != nil {
		return nil, err
	}
	o.upsert(ctx, flog, &catalog.Record{
		Partition: partition, File: f.Name,
		State: catalog.StateArchived, Digest: srcDigest, RunID: report.RunID,
	})
	report.FilesArchived++
	report.BytesArchived += record.Size

	if archiveDigest != srcDigest {
		return nil, o.holdMismatch(ctx, flog, report, partition, f.Name, srcDigest, archiveDigest)
	}

	// The verified entry is the deletion gate: a verification that is
	// not durably logged does not license a deletion.
	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      f.Name,
		Action:    audit.ActionVerified,
		Outcome:   audit.OutcomeMatch,
		Digest:    srcDigest,
	}); err != nil {
		return nil, err
	}
	o.upsert(ctx, flog, &catalog.Record{
		Partition: partition, File: f.Name,
		State: catalog.StateVerified, Digest: srcDigest, RunID: report.RunID,
	})
	report.FilesVerified++

	entry := &ManifestEntry{Path: f.Name, SizeBytes: record.Size, SHA256: srcDigest}

	if err := o.store.Delete(partition, f.Name); err != nil {
		flog.Error("delete failed, will retry next run", "error", err)
		report.Errors = append(report.Errors, fmt.Sprintf("delete %s/%s: %v", partition, f.Name, err))
		if rerr := o.record(ctx, &audit.Entry{
			Partition: partition,
			File:      f.Name,
			Action:    audit.ActionDeleted,
			Outcome:   audit.OutcomeFailed,
			Detail:    map[string]string{"error": err.Error()},
		}); rerr != nil {
			return entry, rerr
		}
		report.Results = append(report.Results, FileResult{
			Partition: partition, File: f.Name,
			State: catalog.StateVerified, Reason: "delete_failed", Error: err.Error(),
			Size: record.Size,
		})
		return entry, nil
	}

	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      f.Name,
		Action:    audit.ActionDeleted,
		Outcome:   audit.OutcomeOK,
		Digest:    srcDigest,
	}); err != nil {
		// The deletion already happened; the frozen catalog row and the
		// report error keep it from going unnoticed.
		return entry, err
	}
	o.upsert(ctx, flog, &catalog.Record{
		Partition: partition, File: f.Name,
		State: catalog.StateDeleted, Digest: srcDigest, RunID: report.RunID,
	})
	report.FilesDeleted++
	flog.Info("file archived and deleted", "location", record.Location, "sha256", srcDigest)
	report.Results = append(report.Results, FileResult{
		Partition: partition, File: f.Name, State: catalog.StateDeleted,
		Size: record.Size,
	})
	return entry, nil
}

// digestSource computes the source digest inside a verify.digest span.
func (o *Orchestrator) digestSource(ctx context.Context, path string) (string, error) {
	_, span := o.tracer.Start(ctx, "verify.digest", trace.WithAttributes(
		attribute.String(tracing.AttrPath, path),
	))
	defer span.End()

	digest, err := o.verifier.SourceDigest(path)
	if err != nil {
		tracing.SetError(span, err)
	}
	return digest, err
}

// reuseOrCopy returns an archive record and the archive copy's digest,
// reusing a pre-existing copy when its bytes already match the source and
// copying (or overwriting) otherwise. The returned digest always comes
// from an independent read of the archived bytes, never from the copy
// operation itself.
func (o *Orchestrator) reuseOrCopy(ctx context.Context, flog *slog.Logger, partition, file, srcDigest string) (*ArchiveRecord, string, error) {
	name := ObjectName(partition, file)

	info, exists, err := o.archiver.Stat(ctx, partition, file)
	if err != nil {
		return nil, "", NewReadError(name, err)
	}
	if exists {
		archiveDigest, err := o.verifier.ArchiveDigest(ctx, name)
		if err != nil {
			return nil, "", err
		}
		if archiveDigest == srcDigest {
			flog.Info("archive copy already present and verified, skipping copy",
				"location", info.Location)
			return &ArchiveRecord{
				Partition:  partition,
				File:       file,
				Location:   info.Location,
				Size:       info.Size,
				Digest:     archiveDigest,
				ArchivedAt: o.clock.Now().UTC(),
				Reused:     true,
			}, archiveDigest, nil
		}
		flog.Warn("stale archive copy differs from source, overwriting",
			"archive_digest", archiveDigest, "source_digest", srcDigest)
	}

	ctx, span := o.tracer.Start(ctx, "archive.copy", trace.WithAttributes(
		attribute.String(tracing.AttrPartition, partition),
		attribute.String(tracing.AttrFile, file),
	))
	defer span.End()

	record, err := o.archiver.Copy(ctx, partition, file)
	if err != nil {
		tracing.SetError(span, err)
		return nil, "", err
	}

	archiveDigest, err := o.verifier.ArchiveDigest(ctx, name)
	if err != nil {
		tracing.SetError(span, err)
		return nil, "", err
	}
	record.Digest = archiveDigest
	return record, archiveDigest, nil
}

// holdMismatch handles a failed verification: the mismatched copy is
// withdrawn from the archive, the original stays on disk, and the file is
// held for operator attention. Mismatch holds are terminal; they are
// never retried automatically.
func (o *Orchestrator) holdMismatch(ctx context.Context, flog *slog.Logger, report *Report, partition, file, srcDigest, archiveDigest string) error {
	mismatch := NewVerificationMismatch(partition, file, srcDigest, archiveDigest)
	flog.Error("verification mismatch, archive copy withdrawn and file held",
		"source_digest", srcDigest, "archive_digest", archiveDigest)
	report.VerifyMismatches++

	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      file,
		Action:    audit.ActionVerifyMismatch,
		Outcome:   audit.OutcomeMismatch,
		Detail: map[string]string{
			"source_digest":  srcDigest,
			"archive_digest": archiveDigest,
		},
	}); err != nil {
		return err
	}

	// The archive never keeps bytes known not to match their source.
	if err := o.archiver.Discard(ctx, partition, file); err != nil {
		flog.Warn("could not remove mismatched archive copy", "error", err)
		report.Errors = append(report.Errors, fmt.Sprintf("discard %s/%s: %v", partition, file, err))
	}

	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      file,
		Action:    audit.ActionHeld,
		Outcome:   audit.OutcomeOK,
		Detail:    map[string]string{"reason": catalog.ReasonVerifyMismatch},
	}); err != nil {
		return err
	}
	o.upsert(ctx, flog, &catalog.Record{
		Partition: partition, File: file,
		State: catalog.StateHeld, Reason: catalog.ReasonVerifyMismatch,
		RunID: report.RunID,
	})
	report.FilesHeld++
	report.Results = append(report.Results, FileResult{
		Partition: partition, File: file,
		State: catalog.StateHeld, Reason: catalog.ReasonVerifyMismatch,
		Error: mismatch.Error(),
	})
	return nil
}

// holdOrRetryRead handles an unreadable source or archive copy. Reads are
// transient until proven otherwise: the file stays in the pipeline for a
// bounded number of runs, then is held. side names which end failed.
func (o *Orchestrator) holdOrRetryRead(ctx context.Context, flog *slog.Logger, report *Report, partition, file, side string, cause error) error {
	report.ReadFailures++

	attempts := 1
	if o.catalog != nil {
		n, err := o.catalog.IncrementAttempts(ctx, partition, file, o.recorder.RunID())
		if err != nil {
			flog.Warn("catalog attempt tracking failed", "error", err)
		} else {
			attempts = n
		}
	}

	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		File:      file,
		Action:    audit.ActionVerified,
		Outcome:   audit.OutcomeFailed,
		Detail: map[string]string{
			"error":    cause.Error(),
			"side":     side,
			"attempts": strconv.Itoa(attempts),
		},
	}); err != nil {
		return err
	}

	if o.catalog != nil && attempts > o.maxReadRetries {
		flog.Error("read retries exhausted, file held for operator attention",
			"side", side, "attempts", attempts, "error", cause)
		if err := o.record(ctx, &audit.Entry{
			Partition: partition,
			File:      file,
			Action:    audit.ActionHeld,
			Outcome:   audit.OutcomeOK,
			Detail: map[string]string{
				"reason":   catalog.ReasonReadRetriesExhausted,
				"attempts": strconv.Itoa(attempts),
			},
		}); err != nil {
			return err
		}
		o.upsert(ctx, flog, &catalog.Record{
			Partition: partition, File: file,
			State: catalog.StateHeld, Reason: catalog.ReasonReadRetriesExhausted,
			Attempts: attempts, RunID: report.RunID,
		})
		report.FilesHeld++
		report.Results = append(report.Results, FileResult{
			Partition: partition, File: file,
			State: catalog.StateHeld, Reason: catalog.ReasonReadRetriesExhausted,
			Error: cause.Error(),
		})
		return nil
	}

	flog.Warn("read failed, will retry next run",
		"side", side, "attempts", attempts, "error", cause)
	report.Results = append(report.Results, FileResult{
		Partition: partition, File: file,
		State: catalog.StateDiscovered, Reason: "read_failed", Error: cause.Error(),
	})
	return nil
}

// reportPolicyError audits and counts a partition-level policy fault.
// Nothing advances on a policy error, so a failed audit write here is
// contained rather than freezing anything.
func (o *Orchestrator) reportPolicyError(ctx context.Context, logger *slog.Logger, report *Report, partition string, perr *PolicyError) {
	report.PartitionsSkipped++
	report.PolicyErrors++
	logger.Warn("skipping partition after policy error", "partition", partition, "error", perr)

	if err := o.record(ctx, &audit.Entry{
		Partition: partition,
		Action:    audit.ActionPolicyError,
		Outcome:   audit.OutcomeFailed,
		Detail:    map[string]string{"error": perr.Error()},
	}); err != nil {
		logger.Error("audit write failed for policy error", "partition", partition, "error", err)
		report.Errors = append(report.Errors, err.Error())
	}
}

// lookup fetches the catalog record for a file, tolerating catalog
// failures: the filesystem is authoritative when the catalog cannot
// answer.
func (o *Orchestrator) lookup(ctx context.Context, flog *slog.Logger, partition, file string) *catalog.Record {
	if o.catalog == nil {
		return nil
	}
	rec, err := o.catalog.Get(ctx, partition, file)
	if err != nil {
		flog.Warn("catalog lookup failed, proceeding from filesystem state", "error", err)
		return nil
	}
	return rec
}

// upsert writes a catalog row, tolerating failures: the catalog is an
// accelerator, the audit log and the filesystem are the records that
// matter. Dry runs never touch the catalog.
func (o *Orchestrator) upsert(ctx context.Context, flog *slog.Logger, rec *catalog.Record) {
	if o.catalog == nil || o.dryRun {
		return
	}
	if rec.RunID == "" {
		rec.RunID = o.recorder.RunID()
	}
	if err := o.catalog.Upsert(ctx, rec); err != nil {
		flog.Warn("catalog update failed", "state", rec.State, "error", err)
	}
}

// record appends one audit entry through the recorder.
func (o *Orchestrator) record(ctx context.Context, entry *audit.Entry) error {
	return o.recorder.Record(ctx, entry)
}
