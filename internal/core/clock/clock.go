// Package clock abstracts wall-clock access so lifecycle rules that compare
// against "now" (expiry, validity windows) stay testable.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the real wall clock (UTC).
func System() Clock { return systemClock{} }

// Fixed returns a Clock frozen at t. Use in tests.
func Fixed(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
