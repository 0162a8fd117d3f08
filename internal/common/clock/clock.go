package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go skillbridge/internal/common/clock Clock

// Clock abstracts time.Now so booking timestamps are deterministic under test.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements Clock using the system clock.
type DefaultClock struct{}

// New returns a system-clock backed Clock.
func New() *DefaultClock {
	return &DefaultClock{}
}

// Now returns the current UTC time.
func (c *DefaultClock) Now() time.Time {
	return time.Now().UTC()
}
