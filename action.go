package fieldsafe

import "fmt"

// ActionKind enumerates the closed set of semantic actions a key event can
// classify into. Modeling these as a tagged union (rather than raw key
// string checks scattered through each primitive) keeps dispatch exhaustive
// and testable.
type ActionKind int

const (
	// ActionActivate toggles or triggers an activatable control (Enter/Space).
	ActionActivate ActionKind = iota + 1

	// ActionCancel aborts the current interaction (Escape): a pending
	// confirmation if any, otherwise field content in medical-device text
	// entry, otherwise focus.
	ActionCancel

	// ActionNavigateAway flushes unsaved content before focus leaves (Tab).
	// Navigation itself is never blocked.
	ActionNavigateAway

	// ActionSave explicitly flushes unsaved content (Ctrl/Cmd+S).
	ActionSave

	// ActionToggleEmergency flips the per-field emergency mode (Ctrl/Cmd+E,
	// medical-device mode only).
	ActionToggleEmergency

	// ActionSelectAll selects the field content (Ctrl/Cmd+A, medical-device
	// mode only).
	ActionSelectAll

	// ActionContextShortcut is a context-specific workflow shortcut; the
	// Action's Shortcut field names it.
	ActionContextShortcut
)

// String returns the action kind's wire name.
func (k ActionKind) String() string {
	switch k {
	case ActionActivate:
		return "activate"
	case ActionCancel:
		return "cancel"
	case ActionNavigateAway:
		return "navigate-away"
	case ActionSave:
		return "save"
	case ActionToggleEmergency:
		return "toggle-emergency"
	case ActionSelectAll:
		return "select-all"
	case ActionContextShortcut:
		return "context-shortcut"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is a classified key event. Shortcut is set only for
// ActionContextShortcut. PreventDefault advises the presentational layer to
// suppress the browser/OS default for the key; it is never set when
// workflow shortcuts are disabled, so native behavior still fires.
type Action struct {
	Kind           ActionKind
	Shortcut       string
	PreventDefault bool
}

// Outcome describes what applying an action did and which DOM effects the
// owning component must perform. The controller cannot touch the DOM; it
// reports intent and the thin presentational wrapper executes it.
type Outcome struct {
	// Action is the classification that was applied. Zero Kind means the
	// event meant nothing to this field.
	Action Action

	// Handled reports whether the controller consumed the event.
	Handled bool

	// PreventDefault tells the owner to call preventDefault() on the event.
	PreventDefault bool

	// Toggle tells the owner to apply the control's toggle now. For
	// confirmation-gated fields this is only set on the committing request.
	Toggle bool

	// ClearContent tells the owner to clear the input's content.
	ClearContent bool

	// Blur tells the owner to remove focus from the input.
	Blur bool

	// SelectAll tells the owner to select the input's content.
	SelectAll bool

	// Shortcut names the context shortcut to run, if any.
	Shortcut string
}
