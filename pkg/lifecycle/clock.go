package lifecycle

import "time"

// Clock supplies the current time to retention decisions. Injecting it
// keeps the eligibility boundary deterministic under test; production code
// uses SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Intended for tests.
type FixedClock struct {
	Time time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time {
	return c.Time
}
