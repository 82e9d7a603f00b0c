package ports

import "time"

// Clock observes the current time. Milestone timestamps are captured through
// it so the elapsed-time skip rule can be tested with a controlled clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}
