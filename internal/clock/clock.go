// Package clock abstracts time so date-sensitive logic can be tested
// against a fixed day.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Today truncates the clock's current UTC time to day granularity.
func Today(c Clock) time.Time {
	now := c.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
