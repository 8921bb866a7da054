package store

import "fmt"

// UnsafePathError reports a path that would resolve outside the store
// root: traversal via crafted partition or file names.
type UnsafePathError struct {
	Root string // Configured store root
	Path string // Offending relative path
}

// Error implements the error interface.
func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("path escapes store root [root=%s, path=%s]", e.Root, e.Path)
}

// NewUnsafePathError creates a new UnsafePathError.
func NewUnsafePathError(root, path string) *UnsafePathError {
	return &UnsafePathError{Root: root, Path: path}
}
