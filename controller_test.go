package fieldsafe

import (
	"errors"
	"testing"
	"time"
)

func TestNewControllerRejectsBadConfig(t *testing.T) {
	_, err := NewController(Config{Context: "x-ray"})
	if !errors.Is(err, ErrUnknownContext) {
		t.Errorf("unknown context err = %v", err)
	}

	_, err = NewController(Config{})
	if !errors.Is(err, ErrUnknownContext) {
		t.Errorf("empty context err = %v", err)
	}

	_, err = NewController(Config{
		Context: ContextVitalSigns,
		Rule:    &ValidationRule{Type: RuleVitalReading, Range: &Range{Min: 10, Max: 5}},
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range err = %v", err)
	}

	_, err = NewController(Config{Context: ContextNotes, ConfirmationWindow: -time.Second})
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("negative window err = %v", err)
	}

	if !IsConfigError(err) {
		t.Error("construction failures must be config errors")
	}
}

func TestEscapeClearsMedicalTextEntry(t *testing.T) {
	ctrl, err := NewController(Config{
		Context:           ContextNotes,
		MedicalDeviceMode: true,
		Rule:              &ValidationRule{Type: RuleVitalReading, Required: true},
		Clock:             NewManualClock(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnInput("72")
	out := ctrl.OnKeyDown(Press("Escape"))
	if !out.ClearContent {
		t.Fatal("Escape in medical-mode text entry must clear content")
	}
	if ctrl.Value() != "" {
		t.Errorf("value = %q after clear", ctrl.Value())
	}
	// Cleared content re-validates: the required rule now fails.
	s := ctrl.Snapshot()
	if len(s.ValidationErrors) != 1 || s.ValidationErrors[0] != "field is required" {
		t.Errorf("errors after clear = %v", s.ValidationErrors)
	}
	if !s.HasUnsavedChanges {
		t.Error("clearing content is a mutation and must mark the field dirty")
	}
}

func TestEscapeBlursOutsideMedicalMode(t *testing.T) {
	ctrl, err := NewController(Config{Context: ContextNotes, Clock: NewManualClock()})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnInput("text")
	out := ctrl.OnKeyDown(Press("Escape"))
	if !out.Blur {
		t.Error("Escape without medical mode or pending confirmation should blur")
	}
	if out.ClearContent {
		t.Error("Escape must not clear content outside medical mode")
	}
	if ctrl.Value() != "text" {
		t.Errorf("value = %q, want untouched", ctrl.Value())
	}
}

func TestEmergencyToggleViaKeyboard(t *testing.T) {
	var observed []bool
	clock := NewManualClock()
	ctrl, err := NewController(Config{
		Context:                  ContextVitalSigns,
		MedicalDeviceMode:        true,
		WorkflowShortcutsEnabled: true,
		Rule:                     &ValidationRule{Type: RuleVitalReading, Range: &Range{Min: 60, Max: 100}},
		OnEmergencyToggle:        func(active bool) { observed = append(observed, active) },
		Clock:                    clock,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnInput("105")
	if len(ctrl.Snapshot().ValidationErrors) != 1 {
		t.Fatal("105 should be out of range normally")
	}

	out := ctrl.OnKeyDown(Chord("e"))
	if out.Action.Kind != ActionToggleEmergency {
		t.Fatalf("Ctrl+E = %v", out.Action.Kind)
	}
	s := ctrl.Snapshot()
	if !s.EmergencyMode {
		t.Fatal("emergency mode should be active")
	}
	// Thresholds widen: the marginal reading is now acceptable.
	if len(s.ValidationErrors) != 0 {
		t.Errorf("errors under emergency = %v, want none", s.ValidationErrors)
	}

	ctrl.OnKeyDown(Chord("e"))
	if ctrl.Snapshot().EmergencyMode {
		t.Fatal("second Ctrl+E should deactivate")
	}
	if len(observed) != 2 || observed[0] != true || observed[1] != false {
		t.Errorf("observer saw %v, want [true false]", observed)
	}
}

func TestEmergencyInitialValueFromConfig(t *testing.T) {
	ctrl, err := NewController(Config{
		Context:       ContextVitalSigns,
		EmergencyMode: true,
		Clock:         NewManualClock(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	if !ctrl.EmergencyActive() {
		t.Error("emergency flag should initialize from config")
	}
	ctrl.SetEmergency(false)
	if ctrl.EmergencyActive() {
		t.Error("SetEmergency(false) should deactivate")
	}
}

// shortcutPressed is transient visual feedback: it raises on a workflow
// shortcut and clears itself after the flash duration.
func TestShortcutFlashTransient(t *testing.T) {
	clock := NewManualClock()
	ctrl, err := NewController(Config{
		Context:                  ContextVitalSigns,
		WorkflowShortcutsEnabled: true,
		OnSave:                   NewSaveRecorder().Save,
		Clock:                    clock,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnInput("80")
	ctrl.OnKeyDown(Chord("s"))
	if !ctrl.Snapshot().ShortcutPressed {
		t.Fatal("shortcut flash should raise")
	}

	// A second shortcut before the flash clears reschedules, never stacks.
	clock.Advance(100 * time.Millisecond)
	ctrl.OnKeyDown(Chord("r"))
	clock.Advance(150 * time.Millisecond)
	if !ctrl.Snapshot().ShortcutPressed {
		t.Fatal("flash should still be raised 150ms after the second shortcut")
	}
	clock.Advance(100 * time.Millisecond)
	if ctrl.Snapshot().ShortcutPressed {
		t.Fatal("flash should clear after the flash duration")
	}
}

func TestSelectAllAndContextShortcutOutcomes(t *testing.T) {
	ctrl, err := NewController(Config{
		Context:                  ContextVitalSigns,
		MedicalDeviceMode:        true,
		WorkflowShortcutsEnabled: true,
		Clock:                    NewManualClock(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	out := ctrl.OnKeyDown(Chord("a"))
	if !out.SelectAll || !out.PreventDefault {
		t.Errorf("Ctrl+A outcome = %+v", out)
	}

	out = ctrl.OnKeyDown(Chord("r"))
	if out.Shortcut != "record-reading" {
		t.Errorf("Ctrl+R shortcut = %q, want record-reading", out.Shortcut)
	}
}

func TestUnhandledEventPropagates(t *testing.T) {
	ctrl, err := NewController(Config{Context: ContextNotes, Clock: NewManualClock()})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	out := ctrl.OnKeyDown(Press("x"))
	if out.Handled || out.PreventDefault {
		t.Errorf("plain typing outcome = %+v, want untouched propagation", out)
	}
}

func TestFocusTracking(t *testing.T) {
	ctrl, err := NewController(Config{Context: ContextNotes, Clock: NewManualClock()})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnFocus()
	if !ctrl.Snapshot().HasFocus {
		t.Error("focus not recorded")
	}
	ctrl.OnBlur()
	if ctrl.Snapshot().HasFocus {
		t.Error("blur not recorded")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctrl, err := NewController(Config{
		Context: ContextVitalSigns,
		Rule:    &ValidationRule{Type: RuleVitalReading, Required: true},
		Clock:   NewManualClock(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnInput("abc")
	s := ctrl.Snapshot()
	if len(s.ValidationErrors) != 1 {
		t.Fatalf("errors = %v", s.ValidationErrors)
	}
	s.ValidationErrors[0] = "mutated"
	if got := ctrl.Snapshot().ValidationErrors[0]; got == "mutated" {
		t.Error("snapshot must not alias controller state")
	}
}
