package fieldsafe

import "time"

// Clock abstracts wall-clock reads and timer scheduling so controller
// timing (confirmation deadlines, shortcut flashes, auto-save intervals)
// is deterministic under test. The zero configuration uses the system
// clock; tests inject a ManualClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellation handle for a scheduled callback. Every callback
// the controller schedules holds one and releases it on Close, so a timer
// can never fire against a disposed field.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// stopTimer cancels t if non-nil and returns nil for reassignment.
func stopTimer(t Timer) Timer {
	if t != nil {
		t.Stop()
	}
	return nil
}
