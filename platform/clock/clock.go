// Package clock provides an injectable source of current time so that
// history timestamps, period labels, and billing-day math are deterministic
// in tests. This is part of the platform layer and contains no business logic.
package clock

import "time"

// Clock is the source of "now" for all lifecycle operations.
type Clock interface {
	Now() time.Time
}

// System is the production clock backed by time.Now.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now() }

// Fixed is a clock pinned to a single instant, for deterministic tests.
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time { return f.T }

// At creates a Fixed clock pinned to t.
func At(t time.Time) Fixed { return Fixed{T: t} }
