package lifecycle

import "fmt"

// PolicyError reports a file or partition whose age cannot be determined,
// typically a directory name that does not parse as YYYY-MM-DD. The
// orchestrator skips the entry with a warning and continues; eligibility
// is never guessed.
type PolicyError struct {
	Partition string // Offending partition name
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy error [partition=%s]: %v", e.Partition, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *PolicyError) Unwrap() error {
	return e.Cause
}

// NewPolicyError creates a new PolicyError.
func NewPolicyError(partition string, cause error) *PolicyError {
	return &PolicyError{Partition: partition, Cause: cause}
}

// CopyError reports a failed or partial archive write. Any partial
// destination file has already been removed when this error is returned;
// the source is untouched.
type CopyError struct {
	Partition   string // Source partition
	File        string // Source file name
	Destination string // Archive destination path
	Cause       error  // Underlying error
}

// Error implements the error interface.
func (e *CopyError) Error() string {
	return fmt.Sprintf("copy error [partition=%s, file=%s, dest=%s]: %v",
		e.Partition, e.File, e.Destination, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *CopyError) Unwrap() error {
	return e.Cause
}

// NewCopyError creates a new CopyError.
func NewCopyError(partition, file, destination string, cause error) *CopyError {
	return &CopyError{
		Partition:   partition,
		File:        file,
		Destination: destination,
		Cause:       cause,
	}
}

// ReadError reports a source or archive file that could not be read while
// digesting. Read errors are transient: the file is retried on later runs
// until the catalog's attempt bound is exhausted.
type ReadError struct {
	Path  string // Unreadable file path
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read error [path=%s]: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ReadError) Unwrap() error {
	return e.Cause
}

// NewReadError creates a new ReadError.
func NewReadError(path string, cause error) *ReadError {
	return &ReadError{Path: path, Cause: cause}
}

// VerificationMismatch reports digests that differ after a complete copy:
// both files were readable, so this is a correctness fault, not a
// transient failure. The file is held for manual intervention and never
// auto-retried within the run.
type VerificationMismatch struct {
	Partition    string // Source partition
	File         string // Source file name
	SourceDigest string // SHA-256 of the source
	CopyDigest   string // SHA-256 of the archive copy
}

// Error implements the error interface.
func (e *VerificationMismatch) Error() string {
	return fmt.Sprintf("verification mismatch [partition=%s, file=%s, source=%s, copy=%s]",
		e.Partition, e.File, e.SourceDigest, e.CopyDigest)
}

// NewVerificationMismatch creates a new VerificationMismatch.
func NewVerificationMismatch(partition, file, sourceDigest, copyDigest string) *VerificationMismatch {
	return &VerificationMismatch{
		Partition:    partition,
		File:         file,
		SourceDigest: sourceDigest,
		CopyDigest:   copyDigest,
	}
}
