// Package clock abstracts ambient time so services never call time.Now
// directly and tests can inject fixed instants.
package clock

import "time"

type Clock interface {
	// Now returns the current instant in UTC.
	Now() time.Time
	// Today returns the current calendar date, truncated to midnight UTC.
	Today() time.Time
}

type systemClock struct{}

func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant.UTC() }

func (f Fixed) Today() time.Time { return f.Instant.UTC().Truncate(24 * time.Hour) }
