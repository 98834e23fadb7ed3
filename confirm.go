package fieldsafe

import "time"

// ToggleDecision is the result of a toggle request against a
// confirmation-gated field.
type ToggleDecision int

const (
	// AwaitConfirmation means the toggle is pending: the caller must NOT
	// apply it yet. A second request inside the confirmation window commits.
	AwaitConfirmation ToggleDecision = iota + 1

	// CommitImmediately means the caller applies the toggle now.
	CommitImmediately
)

// String returns the decision's wire name.
func (d ToggleDecision) String() string {
	switch d {
	case AwaitConfirmation:
		return "await-confirmation"
	case CommitImmediately:
		return "commit"
	}
	return "none"
}

// confirmGate implements the two-step commit for destructive toggles: the
// first request arms a deadline, the second inside the window commits. A
// single accidental key press can therefore never flip a clinically
// significant checkbox, without requiring a modal dialog.
//
// All methods assume the owning controller's lock is held. The gate keeps
// at most one expiry timer armed at a time.
type confirmGate struct {
	window   time.Duration
	clock    Clock
	pending  bool
	deadline time.Time
	timer    Timer
}

// request processes a toggle request and returns the decision. expire is
// scheduled to run if the window elapses with no second request; it must
// take the controller lock itself.
func (g *confirmGate) request(expire func()) ToggleDecision {
	now := g.clock.Now()

	// Lazy expiry: a stale pending flag is equivalent to no pending flag.
	if g.pending && !now.Before(g.deadline) {
		g.reset()
	}

	if g.pending {
		g.reset()
		return CommitImmediately
	}

	g.pending = true
	g.deadline = now.Add(g.window)
	g.timer = stopTimer(g.timer)
	g.timer = g.clock.AfterFunc(g.window, expire)
	return AwaitConfirmation
}

// expired clears a pending confirmation whose deadline has passed. Called
// from the scheduled expiry callback and before state reads.
func (g *confirmGate) expired() bool {
	if g.pending && !g.clock.Now().Before(g.deadline) {
		g.reset()
		return true
	}
	return false
}

// cancel abandons a pending confirmation immediately (Escape).
// Reports whether anything was pending.
func (g *confirmGate) cancel() bool {
	if !g.pending {
		return false
	}
	g.reset()
	return true
}

func (g *confirmGate) reset() {
	g.pending = false
	g.deadline = time.Time{}
	g.timer = stopTimer(g.timer)
}
