package fieldsafe

import "time"

// State is the controller's observable output, read by the presentational
// layer on every render. It is a copy: mutating it has no effect on the
// controller.
type State struct {
	HasFocus            bool      `json:"hasFocus"`
	EmergencyMode       bool      `json:"emergencyMode"`
	ConfirmationPending bool      `json:"confirmationPending"`
	HasUnsavedChanges   bool      `json:"hasUnsavedChanges"`
	ShortcutPressed     bool      `json:"shortcutPressed"`
	LastSaveTime        time.Time `json:"lastSaveTime"`

	// ValidationErrors preserves rule evaluation order:
	// required, then format, then range.
	ValidationErrors []string `json:"validationErrors"`
}

// Invalid reports whether the field currently has validation errors.
func (s State) Invalid() bool {
	return len(s.ValidationErrors) > 0
}
