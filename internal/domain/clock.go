package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package time source for NOTAM validity, aircraft timestamps,
// and ProcessedAt stamps. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time of the package clock.
func Now() time.Time {
	return clock.Now()
}
