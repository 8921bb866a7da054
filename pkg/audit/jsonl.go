package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxLineSize bounds a single audit line during read-back. Entries are
// small; the bound guards the scanner against a corrupted file.
const maxLineSize = 1 << 20

// JSONLSink is the default audit sink: one JSON object per line, appended
// to a single log file. The file is opened in append mode and every write
// is synced to the OS before Append returns, so prior entries are never
// truncated or reordered and a crash can tear at most the final line.
type JSONLSink struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLSink opens (creating if necessary) the audit log at path.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewSinkError("jsonl", "open", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, NewSinkError("jsonl", "open", err)
	}
	return &JSONLSink{path: path, file: f}, nil
}

// Path returns the log file path.
func (s *JSONLSink) Path() string {
	return s.path
}

// Append writes one entry as a JSON line and flushes it to the OS.
func (s *JSONLSink) Append(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return NewSinkError("jsonl", "marshal", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return NewSinkError("jsonl", "append", err)
	}
	if err := s.file.Sync(); err != nil {
		return NewSinkError("jsonl", "sync", err)
	}
	return nil
}

// Query retrieves entries matching the filters, in append order.
func (s *JSONLSink) Query(ctx context.Context, query *Query) ([]*Entry, error) {
	var results []*Entry
	matched := 0

	err := s.scan(ctx, func(e *Entry) bool {
		if !query.Matches(e) {
			return true
		}
		matched++
		if matched <= query.Offset {
			return true
		}
		results = append(results, e)
		return query.Limit <= 0 || len(results) < query.Limit
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Count returns the number of entries matching the filters.
func (s *JSONLSink) Count(ctx context.Context, query *Query) (int64, error) {
	var count int64
	err := s.scan(ctx, func(e *Entry) bool {
		if query.Matches(e) {
			count++
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Tail returns the last n entries in append order.
func (s *JSONLSink) Tail(ctx context.Context, n int) ([]*Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	// Ring over the scan; the log has no reverse index.
	ring := make([]*Entry, 0, n)
	err := s.scan(ctx, func(e *Entry) bool {
		if len(ring) == n {
			copy(ring, ring[1:])
			ring[n-1] = e
		} else {
			ring = append(ring, e)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ring, nil
}

// Close closes the underlying log file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Close(); err != nil {
		return NewSinkError("jsonl", "close", err)
	}
	return nil
}

// scan streams entries to fn in file order until fn returns false or the
// file ends. Lines that do not parse (a torn final line after a crash) are
// skipped; the log is append-only so everything before them is intact.
func (s *JSONLSink) scan(ctx context.Context, fn func(*Entry) bool) error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return NewSinkError("jsonl", "query", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if !fn(&entry) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return NewSinkError("jsonl", "query", fmt.Errorf("scanning %s: %w", s.path, err))
	}
	return nil
}
