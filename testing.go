package fieldsafe

import (
	"sort"
	"sync"
	"time"
)

// ManualClock is a deterministic Clock for tests. Time only moves when
// Advance is called; due callbacks fire synchronously, in schedule order,
// on the advancing goroutine.
//
//	clock := fieldsafe.NewManualClock()
//	ctrl, _ := fieldsafe.NewController(fieldsafe.Config{..., Clock: clock})
//	clock.Advance(4 * time.Second) // confirmation window elapses
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	id      int
	due     time.Time
	fn      func()
	stopped bool
}

// NewManualClock creates a manual clock at an arbitrary fixed origin.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules fn to run when the clock advances past d from now.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, due: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer that comes due,
// in due-time order (schedule order for ties). Callbacks run without the
// clock's lock held, so they may schedule or stop timers freely.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		t := c.earliestDueLocked(target)
		if t == nil {
			break
		}
		// Step time to the timer's due point before firing, so callbacks
		// observe a clock consistent with their deadline.
		if t.due.After(c.now) {
			c.now = t.due
		}
		t.stopped = true
		fn := t.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

func (c *ManualClock) earliestDueLocked(target time.Time) *manualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].due.Equal(c.timers[j].due) {
			return c.timers[i].id < c.timers[j].id
		}
		return c.timers[i].due.Before(c.timers[j].due)
	})
	for _, t := range c.timers {
		if !t.due.After(target) {
			return t
		}
	}
	return nil
}

// Pending reports the number of armed timers. Useful for asserting that
// Close released every scheduled callback.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// SaveRecorder is a test double for the save callback. It records every
// value handed to it and completes each save with the queued result
// (success when the queue is empty).
//
//	rec := fieldsafe.NewSaveRecorder()
//	ctrl, _ := fieldsafe.NewController(fieldsafe.Config{..., OnSave: rec.Save})
//	rec.FailNext(errStorage) // next save reports failure
type SaveRecorder struct {
	mu     sync.Mutex
	values []string
	fails  []error
	held   []func(error)
	hold   bool
}

// NewSaveRecorder creates an empty recorder that completes saves
// synchronously with success.
func NewSaveRecorder() *SaveRecorder {
	return &SaveRecorder{}
}

// Save is the SaveFunc to hand to Config.OnSave.
func (r *SaveRecorder) Save(value string, done func(error)) {
	r.mu.Lock()
	r.values = append(r.values, value)
	if r.hold {
		r.held = append(r.held, done)
		r.mu.Unlock()
		return
	}
	var result error
	if len(r.fails) > 0 {
		result = r.fails[0]
		r.fails = r.fails[1:]
	}
	r.mu.Unlock()
	done(result)
}

// FailNext queues an error for the next save completion.
func (r *SaveRecorder) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fails = append(r.fails, err)
}

// Hold makes subsequent saves asynchronous: Save records the value but
// defers completion until Release.
func (r *SaveRecorder) Hold() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold = true
}

// Release completes the oldest held save with err. Reports whether a held
// save existed.
func (r *SaveRecorder) Release(err error) bool {
	r.mu.Lock()
	if len(r.held) == 0 {
		r.mu.Unlock()
		return false
	}
	done := r.held[0]
	r.held = r.held[1:]
	r.mu.Unlock()
	done(err)
	return true
}

// Values returns every saved value in order.
func (r *SaveRecorder) Values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

// Count returns how many saves were attempted.
func (r *SaveRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recently saved value, or "" when none.
func (r *SaveRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return ""
	}
	return r.values[len(r.values)-1]
}
