// Package clock provides an abstraction for time operations to improve testability.
// Run directories are named after the current time and executions are timed, so
// code takes a Clock instead of calling time.Now() directly.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// StepClock returns Start on the first call and advances by Step on every
// following call. It is safe for concurrent use.
type StepClock struct {
	mu    sync.Mutex
	next  time.Time
	step  time.Duration
	begun bool
}

// NewStepClock creates a StepClock starting at start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{next: start, step: step}
}

// Now returns the current simulated time and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.begun {
		c.next = c.next.Add(c.step)
	}
	c.begun = true
	return c.next
}

// Since reports the time elapsed since t according to c.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

var (
	_ Clock = RealClock{}
	_ Clock = (*StepClock)(nil)
)
