package lifecycle

import (
	"fmt"
	"time"

	"helpdesk-hq/custodian/pkg/store"
)

// RetentionPolicy decides, per partition, whether its files are old enough
// to archive and delete. It is a pure function over (partition date,
// clock): no I/O, no side effects, deterministic and re-evaluable across
// repeated runs.
type RetentionPolicy struct {
	// WindowDays is how many days of data stay local. Must be > 0.
	WindowDays int

	// Clock supplies "now"; defaults to the system clock.
	Clock Clock
}

// NewRetentionPolicy creates a retention policy with the given window.
func NewRetentionPolicy(windowDays int, clock Clock) (*RetentionPolicy, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("retention window must be positive, got %d", windowDays)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &RetentionPolicy{WindowDays: windowDays, Clock: clock}, nil
}

// Cutoff returns the boundary date: partitions dated strictly before it
// are eligible.
func (p *RetentionPolicy) Cutoff() time.Time {
	now := p.Clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -p.WindowDays)
}

// Eligible reports whether a partition's files have aged out of the
// retention window. The rule is strictly-older-than: with window W, a
// partition aged exactly W days is NOT eligible; aged W+1 days or more it
// is. Equivalently, eligible iff partitionDate < today − WindowDays.
func (p *RetentionPolicy) Eligible(partition store.Partition) bool {
	return partition.Date.Before(p.Cutoff())
}

// EligibleName parses a raw directory name and evaluates it. A name that
// does not parse as YYYY-MM-DD yields a PolicyError: unparseable ages are
// reported, never guessed eligible or ineligible.
func (p *RetentionPolicy) EligibleName(name string) (bool, error) {
	partition, err := store.ParsePartitionName(name)
	if err != nil {
		return false, NewPolicyError(name, err)
	}
	return p.Eligible(partition), nil
}
