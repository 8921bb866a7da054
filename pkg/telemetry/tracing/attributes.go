package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on
// spans with consistent naming across the codebase.
//
// Custom attribute keys use the "custodian.*" namespace:
//   - custodian.run_id: sweep run identifier
//   - custodian.partition: date partition being processed
//   - custodian.file: file name within a partition
//   - custodian.digest: SHA-256 digest of the file

// Common attribute keys used throughout the system
const (
	// Sweep attributes
	AttrRunID      = "custodian.run_id"
	AttrDryRun     = "custodian.dry_run"
	AttrWindowDays = "custodian.window_days"

	// File attributes
	AttrPartition = "custodian.partition"
	AttrFile      = "custodian.file"
	AttrPath      = "custodian.path"
	AttrDigest    = "custodian.digest"
	AttrSizeBytes = "custodian.size_bytes"

	// Audit attributes
	AttrAction  = "custodian.action"
	AttrOutcome = "custodian.outcome"

	// Error attributes
	AttrErrorType    = "custodian.error.type"
	AttrErrorMessage = "error.message"
)

// SetFileAttributes sets the partition and file attributes on a span.
//
// Example:
//
//	SetFileAttributes(span, "2024-01-01", "ticket_120000_ab12cd34.txt")
func SetFileAttributes(span trace.Span, partition, file string) {
	span.SetAttributes(
		attribute.String(AttrPartition, partition),
		attribute.String(AttrFile, file),
	)
}

// SetDigestAttributes sets the digest and size attributes on a span.
func SetDigestAttributes(span trace.Span, digest string, sizeBytes int64) {
	span.SetAttributes(
		attribute.String(AttrDigest, digest),
		attribute.Int64(AttrSizeBytes, sizeBytes),
	)
}

// SetSweepAttributes sets the run-level attributes on a span.
func SetSweepAttributes(span trace.Span, runID string, dryRun bool) {
	span.SetAttributes(
		attribute.String(AttrRunID, runID),
		attribute.Bool(AttrDryRun, dryRun),
	)
}

// SetAuditAttributes sets the audit action and outcome on a span.
func SetAuditAttributes(span trace.Span, action, outcome string) {
	span.SetAttributes(
		attribute.String(AttrAction, action),
		attribute.String(AttrOutcome, outcome),
	)
}
