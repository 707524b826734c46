package domain

import "time"

// Clock supplies the current moment to status and aggregate computations.
// Overdue is derived from stored facts plus "today", so every consumer takes
// the clock as a dependency instead of reading time.Now ad hoc.
type Clock interface {
	Now() time.Time
	// Today returns the current date at midnight UTC.
	Today() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by the wall clock in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
