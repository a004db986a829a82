// package state holds the client-side state shared by the CLI and the TUI:
// the current alert, the theme, and the movie filter with its debounced fetch.
//
// Every handle is safe for concurrent use. Timers are created through an [AfterFunc]
// so tests can drive them without sleeping.
package state

import "time"

// AfterFunc schedules f to run after d and returns a function that cancels it.
// The stop function reports whether the call was cancelled before it ran.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

// RealTimers schedules with [time.AfterFunc].
func RealTimers(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

func orRealTimers(after AfterFunc) AfterFunc {
	if after == nil {
		return RealTimers
	}
	return after
}
