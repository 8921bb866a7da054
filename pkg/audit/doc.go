// Package audit provides the append-only audit trail for the ticket
// lifecycle job. Every lifecycle decision and outcome is recorded as an
// immutable Entry; entries are never mutated or deleted by this system.
//
// # Recording Flow
//
// Recording is synchronous and gating. The orchestrator calls Record
// before advancing a file to its next lifecycle state; if the entry cannot
// be persisted the state does not advance:
//
//	State transition → Recorder.Record
//	     ↓
//	Stamp entry (UUID, run id, sequence, timestamp)
//	     ↓
//	Sink.Append (durable before return)
//	     ↓
//	nil → advance state    error → halt this file
//
// A deletion whose audit record cannot be written must not happen; the
// synchronous write is what makes the audit log trustworthy evidence of
// what the job did.
//
// # Sinks
//
// Three Sink implementations ship:
//   - JSONLSink: one JSON object per line, appended and fsynced; the
//     default, parseable by line-oriented tooling.
//   - SQLiteSink: queryable history in a WAL-mode SQLite database.
//   - MemorySink: for tests.
//
// MultiSink fans appends out to several sinks ("both" backend) and serves
// queries from the primary.
//
// # Basic Usage
//
//	sink, err := audit.NewJSONLSink("data/audit/audit.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close()
//
//	rec := audit.NewRecorder(sink, &audit.RecorderConfig{})
//	err = rec.Record(ctx, &audit.Entry{
//	    Partition: "2024-01-01",
//	    File:      "ticket_120000_ab12cd34.txt",
//	    Action:    audit.ActionArchived,
//	    Outcome:   audit.OutcomeOK,
//	    Digest:    digest,
//	})
//
// # Querying
//
//	entries, err := sink.Query(ctx, &audit.Query{
//	    RunID:  runID,
//	    Action: audit.ActionDeleted,
//	    Limit:  100,
//	})
package audit
