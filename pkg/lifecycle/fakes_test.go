package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"helpdesk-hq/custodian/pkg/audit"
	"helpdesk-hq/custodian/pkg/store"
)

// newSeededStore builds a ticket store under a temp root and returns it
// with the root path for direct seeding.
func newSeededStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "tickets")
	s, err := store.NewStore(root)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s, root
}

// seedPartitionFile drops a file into a partition directly on disk.
func seedPartitionFile(t *testing.T, root, partition, name, content string) {
	t.Helper()
	dir := filepath.Join(root, partition)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s/%s) error = %v", partition, name, err)
	}
}

// flakySink wraps a Sink and fails selected operations, for exercising
// failure containment.
type flakySink struct {
	Sink
	failPut  func(name string) error
	failOpen func(name string) error
}

func (s *flakySink) Put(ctx context.Context, name string, src io.Reader) (string, error) {
	if s.failPut != nil {
		if err := s.failPut(name); err != nil {
			return "", err
		}
	}
	return s.Sink.Put(ctx, name, src)
}

func (s *flakySink) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.failOpen != nil {
		if err := s.failOpen(name); err != nil {
			return nil, err
		}
	}
	return s.Sink.Open(ctx, name)
}

// corruptingSink stores bytes faithfully but hands back altered content
// when the named objects are re-read, simulating corruption between the
// write and the verification read.
type corruptingSink struct {
	Sink
	corrupt map[string]bool
}

func (s *corruptingSink) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.Sink.Open(ctx, name)
	if err != nil || !s.corrupt[name] {
		return rc, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		data[0] ^= 0xff
	} else {
		data = []byte{0xff}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// failingAuditSink wraps an audit.Sink and fails appends matching a
// predicate, for exercising the audit gate.
type failingAuditSink struct {
	audit.Sink
	failOn func(e *audit.Entry) bool
}

func (s *failingAuditSink) Append(ctx context.Context, e *audit.Entry) error {
	if s.failOn != nil && s.failOn(e) {
		return errors.New("audit sink unavailable")
	}
	return s.Sink.Append(ctx, e)
}

// holdsMap satisfies HoldChecker over fixed "partition/file" or
// "partition" keys.
type holdsMap map[string]string

func (h holdsMap) Match(partition, file string) (string, bool) {
	if reason, ok := h[partition+"/"+file]; ok {
		return reason, true
	}
	if reason, ok := h[partition]; ok {
		return reason, true
	}
	return "", false
}
