// Package clock provides the trusted time source stamped onto ledger
// operations. The contract is monotonic non-decreasing across sequential
// calls; there is no requirement that it tracks wall-clock time.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current trusted time for each ledger operation.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock over the system time, clamped so that successive
// calls never observe time going backwards (NTP steps, leap smearing).
type SystemClock struct {
	mu   sync.Mutex
	last time.Time
}

// NewSystemClock creates a new SystemClock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time, never earlier than any previously returned value.
func (c *SystemClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}

// Fixed is a Clock pinned to a settable instant, for deterministic tests.
type Fixed struct {
	Time time.Time
}

// NewFixed creates a Fixed clock at the given instant.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{Time: t}
}

// Now returns the pinned instant.
func (c *Fixed) Now() time.Time {
	return c.Time
}

// Advance moves the pinned instant forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}
