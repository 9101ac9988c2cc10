package domain

import "time"

// Clock supplies the current time to services that stamp completions.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }
