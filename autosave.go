package fieldsafe

import "time"

// SaveFunc persists a field's value. The controller fires it and does not
// wait: implementations call done exactly once — synchronously for local
// persistence, or later for network/storage calls. Passing a non-nil error
// to done (or never calling it) leaves the field dirty; the controller
// never retries or logs, that policy belongs to the owner.
type SaveFunc func(value string, done func(error))

// autoSaver tracks the dirty flag and coalesces flushes. One save may be in
// flight at a time; a flush requested while one is outstanding is remembered
// and re-issued when the outstanding save completes. Content generations
// guard the dirty flag: a save's success only clears it if no input arrived
// after the save began.
//
// All fields are guarded by the owning controller's lock.
type autoSaver struct {
	value        string
	dirty        bool
	gen          uint64
	saving       bool
	pendingFlush bool
	lastSave     time.Time
}

// change records a content mutation. Saving is never immediate.
func (a *autoSaver) change(value string) {
	a.value = value
	a.dirty = true
	a.gen++
}

// begin decides whether a flush should start a save now. It returns the
// value and generation to save, or ok=false when the flush is a no-op
// (clean field) or must coalesce behind an in-flight save.
func (a *autoSaver) begin() (value string, gen uint64, ok bool) {
	if !a.dirty {
		return "", 0, false
	}
	if a.saving {
		a.pendingFlush = true
		return "", 0, false
	}
	a.saving = true
	return a.value, a.gen, true
}

// finish records a save completion. It reports whether a coalesced flush is
// owed and should be issued by the caller. The dirty flag clears only on
// success for content unchanged since the save began.
func (a *autoSaver) finish(gen uint64, err error, now time.Time) (reflush bool) {
	a.saving = false
	if err == nil && gen == a.gen {
		a.dirty = false
		a.lastSave = now
	}
	if a.pendingFlush {
		a.pendingFlush = false
		return a.dirty
	}
	return false
}
