package fieldsafe

// FieldContext tags a field with the clinical data it carries. The context
// is immutable for the life of a field instance and selects which shortcut
// set and which validator defaults apply.
type FieldContext string

const (
	ContextPatientData            FieldContext = "patient-data"
	ContextMedicationDosage       FieldContext = "medication-dosage"
	ContextVitalSigns             FieldContext = "vital-signs"
	ContextLabValues              FieldContext = "lab-values"
	ContextNotes                  FieldContext = "notes"
	ContextPatientConsent         FieldContext = "patient-consent"
	ContextMedicationConfirmation FieldContext = "medication-confirmation"
	ContextSymptomChecklist       FieldContext = "symptom-checklist"
	ContextProcedureChecklist     FieldContext = "procedure-checklist"
	ContextDefault                FieldContext = "default"
)

// Valid reports whether c is one of the recognized contexts.
// An empty context is not valid; callers wanting the neutral behavior
// must say ContextDefault explicitly.
func (c FieldContext) Valid() bool {
	switch c {
	case ContextPatientData, ContextMedicationDosage, ContextVitalSigns,
		ContextLabValues, ContextNotes, ContextPatientConsent,
		ContextMedicationConfirmation, ContextSymptomChecklist,
		ContextProcedureChecklist, ContextDefault:
		return true
	}
	return false
}

// ToggleLike reports whether the context represents a boolean control
// (consent checkboxes, confirmation checkboxes, checklist items). Toggle-like
// fields are activatable with Enter/Space and are the usual candidates for
// confirmation gating.
func (c FieldContext) ToggleLike() bool {
	switch c {
	case ContextPatientConsent, ContextMedicationConfirmation,
		ContextSymptomChecklist, ContextProcedureChecklist:
		return true
	}
	return false
}

// TextEntry reports whether the context represents free or formatted text
// entry. Escape in medical-device mode clears the content of text-entry
// fields.
func (c FieldContext) TextEntry() bool {
	return c.Valid() && !c.ToggleLike()
}
