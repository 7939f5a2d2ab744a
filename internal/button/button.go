// Package button turns a physical push button into relay trigger
// dispatches. Two equivalent strategies are provided: EdgeSource
// consumes hardware edge events, Poller samples the line at a fixed
// interval. Both apply the same timestamp debounce and produce at most
// one dispatch per physical press.
package button

import "time"

// Dispatcher is the trigger entry point, satisfied by *relay.Controller.
type Dispatcher interface {
	Dispatch(relayID int, source string) (time.Duration, error)
}

// debouncer suppresses presses that arrive within window of the last
// accepted press. A zero window accepts everything. Not safe for
// concurrent use; callers hold their own lock.
type debouncer struct {
	window time.Duration
	last   time.Time
}

// accept reports whether a press at t clears the debounce window, and
// records it as the last accepted press if so.
func (d *debouncer) accept(t time.Time) bool {
	if !d.last.IsZero() && t.Sub(d.last) < d.window {
		return false
	}
	d.last = t
	return true
}
