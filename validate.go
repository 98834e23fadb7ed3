package fieldsafe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RuleType selects which domain format a ValidationRule enforces.
type RuleType string

const (
	RulePatientID      RuleType = "patient-id"
	RuleMedicationCode RuleType = "medication-code"
	RuleDosage         RuleType = "dosage"
	RuleVitalReading   RuleType = "vital-reading"
	RuleLabValue       RuleType = "lab-value"
)

// Range bounds a numeric value inclusively.
type Range struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// ValidationRule is supplied by the field owner and never mutated by the
// controller. Range applies to rule types with a numeric component
// (vital-reading, lab-value, dosage).
type ValidationRule struct {
	Type     RuleType `json:"type"`
	Range    *Range   `json:"range,omitempty"`
	Required bool     `json:"required"`
}

// Check validates the rule itself. A malformed rule is a programmer error
// and is rejected at controller construction, not discovered mid-keystroke.
func (r ValidationRule) Check() error {
	switch r.Type {
	case RulePatientID, RuleMedicationCode, RuleDosage, RuleVitalReading, RuleLabValue:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleType, r.Type)
	}
	if r.Range != nil && r.Range.Min > r.Range.Max {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, r.Range.Min, r.Range.Max)
	}
	return nil
}

var (
	// Two uppercase letters followed by 6-8 digits, e.g. AB123456.
	patientIDPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{6,8}$`)

	// Number with up to two decimals, optional whitespace, then a unit.
	// Case-insensitive: "10 mg", "2.5ml", "3 Units".
	dosagePattern = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]{1,2})?)\s*(mg|ml|units?)$`)

	// NDC-style code: 4-5 digit labeler, 3-4 digit product, 1-2 digit
	// package segment, hyphen separated, e.g. 0002-3227-30.
	medicationCodePattern = regexp.MustCompile(`^[0-9]{4,5}-[0-9]{3,4}-[0-9]{1,2}$`)

	// Optional comparator, decimal number, optional unit token,
	// e.g. "7.2", "<0.5 ng/mL", ">= 140 mmol/L".
	labValuePattern = regexp.MustCompile(`^(<=|>=|<|>)?\s*([0-9]+(?:\.[0-9]+)?)(?:\s*[A-Za-zµ%][A-Za-zµ%0-9]*(?:/[A-Za-z]+)?)?$`)
)

// Validate checks a value against a rule and returns every failing rule's
// message in evaluation order: required, then format, then range. It is a
// pure function: no side effects, no I/O, and identical inputs always yield
// the identical ordered list. An empty list means the value is acceptable.
//
// An empty value produces only the required error (when the rule requires
// one); format and range are not applied to absent input.
func Validate(value string, rule ValidationRule) []string {
	return validate(value, rule, false)
}

// ValidateEmergency behaves like Validate under emergency mode: numeric
// ranges are widened by 20% of their span on each side so urgent entries
// are not rejected on marginal readings. Format rules are never loosened.
func ValidateEmergency(value string, rule ValidationRule) []string {
	return validate(value, rule, true)
}

func validate(value string, rule ValidationRule, emergency bool) []string {
	var errs []string

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if rule.Required {
			errs = append(errs, "field is required")
		}
		return errs
	}

	// Format evaluation also extracts the numeric part for the range check.
	num, hasNum := 0.0, false
	switch rule.Type {
	case RulePatientID:
		if !patientIDPattern.MatchString(trimmed) {
			errs = append(errs, "must be 2 uppercase letters followed by 6-8 digits (e.g. AB123456)")
		}
	case RuleDosage:
		m := dosagePattern.FindStringSubmatch(trimmed)
		if m == nil {
			errs = append(errs, "must be a number with a unit of mg, ml, or units (e.g. 10 mg)")
		} else if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			num, hasNum = n, true
		}
	case RuleMedicationCode:
		if !medicationCodePattern.MatchString(trimmed) {
			errs = append(errs, "must be an NDC medication code (e.g. 0002-3227-30)")
		}
	case RuleVitalReading:
		n, err := strconv.ParseFloat(trimmed, 64)
		// ParseFloat accepts "NaN" and "Inf", which are not readings and
		// would slip past any range comparison.
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			errs = append(errs, "must be a numeric reading")
		} else {
			num, hasNum = n, true
		}
	case RuleLabValue:
		m := labValuePattern.FindStringSubmatch(trimmed)
		if m == nil {
			errs = append(errs, "must be a numeric result with an optional comparator and unit (e.g. <0.5 ng/mL)")
		} else if n, err := strconv.ParseFloat(m[2], 64); err == nil {
			num, hasNum = n, true
		}
	}

	if rule.Range != nil && hasNum {
		min, max := rule.Range.Min, rule.Range.Max
		if emergency {
			margin := (max - min) * 0.2
			min -= margin
			max += margin
		}
		if num < min || num > max {
			errs = append(errs, fmt.Sprintf("must be between %g and %g", min, max))
		}
	}

	return errs
}
