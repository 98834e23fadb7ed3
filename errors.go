package fieldsafe

import "errors"

// Sentinel errors for controller construction and registry operations.
var (
	ErrUnknownContext   = errors.New("fieldsafe: unknown field context")
	ErrUnknownRuleType  = errors.New("fieldsafe: unknown validation rule type")
	ErrInvalidRange     = errors.New("fieldsafe: validation range min exceeds max")
	ErrNoSaveCallback   = errors.New("fieldsafe: auto-save interval configured without OnSave callback")
	ErrInvalidInterval  = errors.New("fieldsafe: negative duration in configuration")
	ErrControllerClosed = errors.New("fieldsafe: controller is closed")
	ErrFieldNotFound    = errors.New("fieldsafe: field not found")
)

// IsConfigError checks if err is a controller configuration error.
// Configuration errors are programmer errors surfaced at construction,
// never at event time.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownContext) ||
		errors.Is(err, ErrUnknownRuleType) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrNoSaveCallback) ||
		errors.Is(err, ErrInvalidInterval)
}

// IsNotFound checks if err is a field-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFieldNotFound)
}
