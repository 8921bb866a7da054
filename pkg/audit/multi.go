package audit

import "context"

// MultiSink fans appends out to several sinks and serves reads from the
// first (the primary). Used for the "both" backend: SQLite primary for
// queries, JSONL secondary for line-oriented tooling. An append fails if
// any sink fails, so no lifecycle state advances on a partially recorded
// entry.
type MultiSink struct {
	primary     Sink
	secondaries []Sink
}

// NewMultiSink creates a MultiSink reading from primary and appending to
// primary plus all secondaries.
func NewMultiSink(primary Sink, secondaries ...Sink) *MultiSink {
	return &MultiSink{primary: primary, secondaries: secondaries}
}

// Append writes the entry to every sink; the first failure aborts.
func (s *MultiSink) Append(ctx context.Context, entry *Entry) error {
	if err := s.primary.Append(ctx, entry); err != nil {
		return err
	}
	for _, sink := range s.secondaries {
		if err := sink.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Query delegates to the primary sink.
func (s *MultiSink) Query(ctx context.Context, query *Query) ([]*Entry, error) {
	return s.primary.Query(ctx, query)
}

// Count delegates to the primary sink.
func (s *MultiSink) Count(ctx context.Context, query *Query) (int64, error) {
	return s.primary.Count(ctx, query)
}

// Tail delegates to the primary sink.
func (s *MultiSink) Tail(ctx context.Context, n int) ([]*Entry, error) {
	return s.primary.Tail(ctx, n)
}

// Close closes every sink, returning the first error encountered.
func (s *MultiSink) Close() error {
	err := s.primary.Close()
	for _, sink := range s.secondaries {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
