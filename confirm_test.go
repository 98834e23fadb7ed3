package fieldsafe

import (
	"testing"
	"time"
)

func consentController(t *testing.T, clock *ManualClock) *Controller {
	t.Helper()
	ctrl, err := NewController(Config{
		Context:             ContextPatientConsent,
		RequireConfirmation: true,
		Clock:               clock,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl
}

// A fresh gate awaits; a second request inside the window commits; a third
// request long after starts a fresh cycle.
func TestConfirmationCycle(t *testing.T) {
	clock := NewManualClock()
	ctrl := consentController(t, clock)

	if d := ctrl.RequestToggle(); d != AwaitConfirmation {
		t.Fatalf("first request = %v, want AwaitConfirmation", d)
	}
	if !ctrl.Snapshot().ConfirmationPending {
		t.Fatal("confirmation should be pending")
	}

	clock.Advance(1 * time.Second)
	if d := ctrl.RequestToggle(); d != CommitImmediately {
		t.Fatalf("second request in window = %v, want CommitImmediately", d)
	}
	if ctrl.Snapshot().ConfirmationPending {
		t.Fatal("commit must clear the pending flag")
	}

	clock.Advance(4 * time.Second)
	if d := ctrl.RequestToggle(); d != AwaitConfirmation {
		t.Fatalf("request after commit = %v, want fresh AwaitConfirmation", d)
	}
}

// A single toggle request never commits; two requests straddling an elapsed
// window behave as two independent single requests.
func TestConfirmationWindowExpiry(t *testing.T) {
	clock := NewManualClock()
	ctrl := consentController(t, clock)

	if d := ctrl.RequestToggle(); d != AwaitConfirmation {
		t.Fatalf("first request = %v", d)
	}

	// Deadline elapses with no second press: the scheduled expiry clears
	// the flag without any further user input.
	clock.Advance(3500 * time.Millisecond)
	if ctrl.Snapshot().ConfirmationPending {
		t.Fatal("pending confirmation must self-expire")
	}

	if d := ctrl.RequestToggle(); d != AwaitConfirmation {
		t.Fatalf("request after expiry = %v, want AwaitConfirmation", d)
	}
}

func TestConfirmationViaKeyboard(t *testing.T) {
	clock := NewManualClock()
	ctrl := consentController(t, clock)

	out := ctrl.OnKeyDown(Press("Enter"))
	if out.Toggle {
		t.Fatal("first activation must not toggle")
	}
	if !ctrl.Snapshot().ConfirmationPending {
		t.Fatal("first activation should arm confirmation")
	}

	clock.Advance(500 * time.Millisecond)
	out = ctrl.OnKeyDown(Press("Enter"))
	if !out.Toggle {
		t.Fatal("confirming activation must toggle")
	}
	if ctrl.Snapshot().ConfirmationPending {
		t.Fatal("commit must clear pending")
	}
}

// Escape while pending cancels immediately and leaves the value untouched.
func TestConfirmationEscapeCancels(t *testing.T) {
	clock := NewManualClock()
	ctrl := consentController(t, clock)

	ctrl.OnKeyDown(Press("Enter"))
	if !ctrl.Snapshot().ConfirmationPending {
		t.Fatal("expected pending confirmation")
	}

	out := ctrl.OnKeyDown(Press("Escape"))
	if out.Action.Kind != ActionCancel {
		t.Fatalf("Escape = %v, want Cancel", out.Action.Kind)
	}
	if out.Toggle || out.ClearContent || out.Blur {
		t.Errorf("cancel of pending confirmation must not touch the field: %+v", out)
	}
	if ctrl.Snapshot().ConfirmationPending {
		t.Fatal("Escape must clear pending")
	}
}

// Fields without RequireConfirmation commit immediately, always.
func TestNoConfirmationCommitsImmediately(t *testing.T) {
	ctrl, err := NewController(Config{Context: ContextSymptomChecklist, Clock: NewManualClock()})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	if d := ctrl.RequestToggle(); d != CommitImmediately {
		t.Fatalf("RequestToggle = %v, want CommitImmediately", d)
	}
	if out := ctrl.OnKeyDown(Press(" ")); !out.Toggle {
		t.Fatal("activation without gating must toggle at once")
	}
}

func TestConfirmationWindowConfigurable(t *testing.T) {
	clock := NewManualClock()
	ctrl, err := NewController(Config{
		Context:             ContextPatientConsent,
		RequireConfirmation: true,
		ConfirmationWindow:  500 * time.Millisecond,
		Clock:               clock,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.RequestToggle()
	clock.Advance(600 * time.Millisecond)
	if d := ctrl.RequestToggle(); d != AwaitConfirmation {
		t.Fatalf("request after short window = %v, want AwaitConfirmation", d)
	}
}
