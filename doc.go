// Package fieldsafe provides the keyboard data-safety controller used by
// the RxOps healthcare UI kit's interactive form primitives.
//
// Every interactive field in a clinical UI (inputs, textareas, consent
// checkboxes, vitals readouts) needs the same small behavioral layer on
// top of the plain control: medical-device keyboard shortcuts, a
// confirm-before-commit step for clinically significant toggles, debounced
// auto-save with a durable dirty flag, an emergency-mode override, and
// domain validation of typed values. fieldsafe implements that layer once
// as a per-field controller so the presentational components stay thin.
//
// # Core Concepts
//
// A Controller is created per field instance and owns all mutable state
// for that field. The presentational layer wires the controller's event
// hooks verbatim (OnKeyDown, OnFocus, OnBlur, OnInput) and reads a State
// snapshot on every render:
//
//	ctrl, err := fieldsafe.NewController(fieldsafe.Config{
//	    Context:                  fieldsafe.ContextVitalSigns,
//	    Rule:                     &fieldsafe.ValidationRule{Type: fieldsafe.RuleVitalReading, Required: true},
//	    MedicalDeviceMode:        true,
//	    WorkflowShortcutsEnabled: true,
//	    OnSave:                   saveVital,
//	})
//
//	outcome := ctrl.OnKeyDown(ev)   // classified + applied
//	state := ctrl.Snapshot()        // render from this
//
// Key events are classified by Classify into a closed Action set
// (Activate, Cancel, NavigateAway, Save, ToggleEmergency, SelectAll,
// ContextShortcut). Classification is pure; the controller applies the
// action and returns an Outcome describing the DOM effects the owning
// component must perform (clear content, blur, select all, suppress the
// browser default).
//
// # Lifecycle
//
// Controllers are created on field mount and must be closed on unmount.
// Close cancels every scheduled callback (confirmation deadline, shortcut
// flash, auto-save interval) so nothing fires against a disposed field.
// No state is shared between fields.
//
// # Registration
//
// The Registry tracks mounted controllers, assigns field IDs, logs
// lifecycle transitions, and fans out audit events to an injected Sink.
// Use it when a server process owns many fields; standalone controllers
// work without it.
//
// # Design Rationale
//
// The system favors explicitness over magic:
//   - Explicit per-field controllers (no ambient or global state)
//   - Explicit action classification (a tagged union, not key-string checks)
//   - Explicit timer ownership (every scheduled callback holds a handle
//     released on Close)
//   - Explicit failure semantics (a failed save never clears the dirty flag)
//
// Validation errors are data, not errors: Validate returns an ordered
// message list and never fails. Malformed configuration, by contrast, is a
// programmer error and is rejected at construction.
package fieldsafe
