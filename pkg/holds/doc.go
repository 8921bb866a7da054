// Package holds implements the legal hold registry: a YAML file naming
// ticket files (or whole partitions) that must not be deleted by the
// retention sweep while the hold stands.
//
// The registry is loaded at sweep start and consulted per file. In daemon
// mode a Watcher reloads it when the file changes, and the holds/git
// subpackage can sync the file from a reviewed git repository before each
// sweep.
//
// Registry file format:
//
//	holds:
//	  - partition: "2024-01-01"
//	    reason: "case-4711"
//	    added_by: "legal@corp.example"
//	  - partition: "2024-02-15"
//	    file: "ticket_091500_ab12cd34.txt"
//	    reason: "litigation-2024-009"
//
// An entry without a file covers every file of the partition. Reloads are
// atomic: lookups always see either the previous or the new set, and a
// reload that fails to parse keeps the previous set in force. Losing holds
// to a syntax error would be the dangerous direction.
package holds
