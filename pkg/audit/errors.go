package audit

import "fmt"

// LogWriteError reports an audit entry that could not be persisted. It is
// fatal to the affected file's processing: an action whose audit record
// cannot be written must not proceed to the next lifecycle state.
type LogWriteError struct {
	Action    Action // Action whose entry failed to persist
	Partition string // Partition of the affected file, if any
	File      string // File name, if any
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *LogWriteError) Error() string {
	if e.Partition != "" || e.File != "" {
		return fmt.Sprintf("audit write failed [action=%s, partition=%s, file=%s]: %v",
			e.Action, e.Partition, e.File, e.Cause)
	}
	return fmt.Sprintf("audit write failed [action=%s]: %v", e.Action, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *LogWriteError) Unwrap() error {
	return e.Cause
}

// NewLogWriteError creates a new LogWriteError.
func NewLogWriteError(action Action, partition, file string, cause error) *LogWriteError {
	return &LogWriteError{
		Action:    action,
		Partition: partition,
		File:      file,
		Cause:     cause,
	}
}

// SinkError represents a failure inside a specific sink backend.
type SinkError struct {
	Backend   string // Sink backend ("jsonl", "sqlite", "memory")
	Operation string // Operation that failed ("append", "query", "open", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	return fmt.Sprintf("audit sink error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SinkError) Unwrap() error {
	return e.Cause
}

// NewSinkError creates a new SinkError.
func NewSinkError(backend, operation string, cause error) *SinkError {
	return &SinkError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
