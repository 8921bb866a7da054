package catalog

import "time"

// State is the durable lifecycle state of a ticket file as last recorded
// by a sweep. The catalog is advisory: deletion safety always re-verifies
// bytes, so a missing or stale state never makes the system incorrect,
// only slower.
type State string

const (
	StateDiscovered State = "discovered"
	StateArchived   State = "archived"
	StateVerified   State = "verified"
	StateDeleted    State = "deleted"
	StateHeld       State = "held"

	// Skipped states are re-evaluated on every run: an ineligible file
	// ages into eligibility, and a malformed partition may be renamed.
	StateSkippedIneligible  State = "skipped_ineligible"
	StateSkippedPolicyError State = "skipped_policy_error"
)

// Hold reasons recorded when State is StateHeld.
const (
	ReasonVerifyMismatch       = "verify_mismatch"
	ReasonLegalHold            = "legal_hold"
	ReasonReadRetriesExhausted = "read_retries_exhausted"
)

// Terminal reports whether a state stops reprocessing on later runs.
// Deleted files are gone; held files wait for an operator — except holds
// from the legal-hold registry, which are re-evaluated so that lifting
// the hold resumes processing.
func (s State) Terminal(reason string) bool {
	switch s {
	case StateDeleted:
		return true
	case StateHeld:
		return reason != ReasonLegalHold
	default:
		return false
	}
}

// Record is one per-file catalog row.
type Record struct {
	Partition string    `json:"partition"`
	File      string    `json:"file"`
	State     State     `json:"state"`
	Reason    string    `json:"reason,omitempty"` // set when State is held
	Digest    string    `json:"digest,omitempty"`
	Attempts  int       `json:"attempts"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	RunID     string    `json:"run_id,omitempty"` // last run that touched the row
}
