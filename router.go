package fieldsafe

// RouterFlags gate which shortcut mappings are live for a field.
type RouterFlags struct {
	// MedicalDeviceMode enables the stricter clinical-workstation profile:
	// Ctrl/Cmd+A select-all, Ctrl/Cmd+E emergency toggle, and
	// Escape-clears-content for text entry.
	MedicalDeviceMode bool

	// WorkflowShortcutsEnabled enables all primary-modifier combinations.
	// When false only the universal Activate/Cancel/NavigateAway mappings
	// apply and no default is ever suppressed.
	WorkflowShortcutsEnabled bool

	// Activatable marks the field as an activatable control (checkbox,
	// interactive text/badge) so Enter/Space classify as Activate.
	// Toggle-like contexts are activatable regardless.
	Activatable bool
}

// contextShortcuts maps a field context to its primary-modifier workflow
// shortcuts. Keys are lowercased letters pressed with Ctrl/Cmd.
var contextShortcuts = map[FieldContext]map[string]string{
	ContextVitalSigns:       {"r": "record-reading"},
	ContextMedicationDosage: {"d": "dose-calculator"},
	ContextLabValues:        {"l": "lab-reference"},
	ContextPatientData:      {"p": "patient-lookup"},
}

// Classify inspects a keyboard event and returns the semantic action it
// maps to for the given context and flags. Classification is pure: it never
// mutates state, which is what makes the routing table testable in
// isolation from any rendering.
//
// The boolean result is false when the event carries no meaning for the
// field; the caller must then let the event propagate untouched.
func Classify(ev KeyEvent, ctx FieldContext, flags RouterFlags) (Action, bool) {
	// Universal mappings apply regardless of shortcut gating. They use no
	// modifiers, so a primary-modifier press never reaches them.
	if ev.Plain() || (ev.Shift && !ev.Ctrl && !ev.Meta && !ev.Alt) {
		switch ev.Key {
		case "Enter", " ", "Space":
			if flags.Activatable || ctx.ToggleLike() {
				// Space scrolls the page by default; suppress it.
				return Action{Kind: ActionActivate, PreventDefault: ev.Key != "Enter"}, true
			}
			return Action{}, false
		case "Escape":
			return Action{Kind: ActionCancel}, true
		case "Tab":
			// Flush-before-leave; Tab itself must never be blocked.
			return Action{Kind: ActionNavigateAway}, true
		}
		return Action{}, false
	}

	// Everything below requires the primary modifier, and primary-modifier
	// combinations are inert unless workflow shortcuts are enabled. Inert
	// means fully inert: no classification and no preventDefault, so the
	// browser/OS default (e.g. native Ctrl+S) still fires.
	if !ev.Primary() || !flags.WorkflowShortcutsEnabled {
		return Action{}, false
	}

	switch ev.letter() {
	case "s":
		return Action{Kind: ActionSave, PreventDefault: true}, true
	case "e":
		if flags.MedicalDeviceMode {
			return Action{Kind: ActionToggleEmergency, PreventDefault: true}, true
		}
	case "a":
		if flags.MedicalDeviceMode {
			return Action{Kind: ActionSelectAll, PreventDefault: true}, true
		}
	}

	if table := contextShortcuts[ctx]; table != nil {
		if name, ok := table[ev.letter()]; ok {
			return Action{Kind: ActionContextShortcut, Shortcut: name, PreventDefault: true}, true
		}
	}

	return Action{}, false
}
