package fieldsafe

import (
	"context"
	"strings"
	"testing"
)

func TestFieldAttrs(t *testing.T) {
	if got := FieldAttrs(State{}); len(got) != 0 {
		t.Errorf("clean state attrs = %v, want none", got)
	}

	attrs := FieldAttrs(State{
		EmergencyMode:       true,
		HasUnsavedChanges:   true,
		ConfirmationPending: true,
		ShortcutPressed:     true,
		ValidationErrors:    []string{"field is required"},
	})
	for _, key := range []string{
		"data-emergency",
		"data-unsaved",
		"data-confirm-pending",
		"data-shortcut",
		"aria-invalid",
	} {
		if attrs[key] != "true" {
			t.Errorf("attrs[%q] = %v, want true", key, attrs[key])
		}
	}
}

func TestRenderValidationErrors(t *testing.T) {
	if got := RenderValidationErrors(nil); got != "" {
		t.Errorf("no errors rendered %q", got)
	}

	got := RenderValidationErrors([]string{"first", "second"})
	want := `<ul class="field-errors" role="alert"><li>first</li><li>second</li></ul>`
	if got != want {
		t.Errorf("rendered %q, want %q", got, want)
	}
}

func TestRenderValidationErrorsEscapes(t *testing.T) {
	got := RenderValidationErrors([]string{`<script>alert("x")</script>`})
	if strings.Contains(got, "<script>") {
		t.Fatalf("unescaped markup in %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("expected escaped message, got %q", got)
	}
}

func TestValidationErrorsComponent(t *testing.T) {
	var sb strings.Builder
	if err := ValidationErrors([]string{"field is required"}).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), "field is required") {
		t.Errorf("rendered %q", sb.String())
	}

	sb.Reset()
	if err := ValidationErrors(nil).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if sb.String() != "" {
		t.Errorf("valid field rendered %q, want empty", sb.String())
	}
}

func TestStatusIndicators(t *testing.T) {
	cases := []struct {
		name    string
		state   State
		want    []string
		wantNot []string
	}{
		{
			name:    "clean",
			state:   State{},
			wantNot: []string{"field-emergency", "field-confirm", "field-unsaved"},
		},
		{
			name:    "emergency",
			state:   State{EmergencyMode: true},
			want:    []string{"field-emergency", "emergency mode"},
			wantNot: []string{"field-unsaved"},
		},
		{
			name:  "pending confirm with unsaved edits",
			state: State{ConfirmationPending: true, HasUnsavedChanges: true},
			want:  []string{"press again to confirm", "unsaved changes"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sb strings.Builder
			if err := StatusIndicators(tc.state).Render(context.Background(), &sb); err != nil {
				t.Fatalf("Render: %v", err)
			}
			got := sb.String()
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("rendered %q, missing %q", got, w)
				}
			}
			for _, w := range tc.wantNot {
				if strings.Contains(got, w) {
					t.Errorf("rendered %q, unexpected %q", got, w)
				}
			}
		})
	}
}

// The indicator helpers consume live controller snapshots, so a dirty
// invalid field lights everything the CSS needs in one pass.
func TestIndicatorsFromSnapshot(t *testing.T) {
	ctrl, err := NewController(Config{
		Context: ContextVitalSigns,
		Rule:    &ValidationRule{Type: RuleVitalReading, Range: &Range{Min: 60, Max: 100}},
		Clock:   NewManualClock(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.Close()

	ctrl.OnInput("150")
	attrs := FieldAttrs(ctrl.Snapshot())
	if attrs["data-unsaved"] != "true" || attrs["aria-invalid"] != "true" {
		t.Errorf("attrs = %v", attrs)
	}
	if _, ok := attrs["data-emergency"]; ok {
		t.Error("emergency attr set without emergency mode")
	}
}
