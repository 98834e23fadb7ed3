package fieldsafe

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Indicator class names used by the render helpers. The kit's CSS tokens
// style them; this package only emits the structure.
const (
	ClassErrorList       = "field-errors"
	ClassUnsavedBadge    = "field-unsaved"
	ClassEmergencyBanner = "field-emergency"
	ClassConfirmPrompt   = "field-confirm"
)

// FieldAttrs builds the data attributes the presentational layer spreads
// onto the input element so CSS and scripts can react to controller state
// without re-rendering markup:
//
//	<input { fieldsafe.FieldAttrs(state)... } />
//
// Attributes with false/empty values are omitted entirely.
func FieldAttrs(s State) templ.Attributes {
	attrs := templ.Attributes{}
	if s.EmergencyMode {
		attrs["data-emergency"] = "true"
	}
	if s.HasUnsavedChanges {
		attrs["data-unsaved"] = "true"
	}
	if s.ConfirmationPending {
		attrs["data-confirm-pending"] = "true"
	}
	if s.ShortcutPressed {
		attrs["data-shortcut"] = "true"
	}
	if s.Invalid() {
		attrs["aria-invalid"] = "true"
	}
	return attrs
}

// ValidationErrors returns a templ component rendering the ordered error
// list as inline feedback under the field. Renders nothing for a valid
// field.
func ValidationErrors(errs []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(errs) == 0 {
			return nil
		}
		_, err := io.WriteString(w, RenderValidationErrors(errs))
		return err
	})
}

// RenderValidationErrors renders the error list as an HTML string with
// every message escaped. Messages keep rule evaluation order.
func RenderValidationErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<ul class="` + ClassErrorList + `" role="alert">`)
	for _, e := range errs {
		sb.WriteString(`<li>`)
		sb.WriteString(html.EscapeString(e))
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}

// StatusIndicators returns a templ component rendering the transient state
// badges (unsaved changes, pending confirmation, emergency banner) for a
// field. The presentational layer places it adjacent to the control.
func StatusIndicators(s State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, renderStatus(s))
		return err
	})
}

func renderStatus(s State) string {
	var sb strings.Builder
	if s.EmergencyMode {
		sb.WriteString(`<div class="` + ClassEmergencyBanner + `" role="status">emergency mode</div>`)
	}
	if s.ConfirmationPending {
		sb.WriteString(`<span class="` + ClassConfirmPrompt + `" role="status">press again to confirm</span>`)
	}
	if s.HasUnsavedChanges {
		sb.WriteString(`<span class="` + ClassUnsavedBadge + `">unsaved changes</span>`)
	}
	return sb.String()
}
