package clock

import "time"

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// FixedClocker always reports the same instant. It exists for tests.
type FixedClocker struct {
	at time.Time
}

// NewFixed returns a FixedClocker pinned to the given instant.
func NewFixed(at time.Time) *FixedClocker {
	return &FixedClocker{at: at}
}

// Now returns the pinned instant.
func (f *FixedClocker) Now() time.Time {
	return f.at
}
