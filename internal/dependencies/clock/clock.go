// Package clock abstracts wall-clock time so link timestamps can be pinned in tests.
package clock

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
