package fieldsafe

import "strings"

// KeyEvent is the controller's view of a keyboard event. Key uses the DOM
// KeyboardEvent.key vocabulary ("Enter", "Escape", "Tab", "s", " ") so the
// presentational layer can forward browser events without translation.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// Primary reports whether the platform primary modifier is held:
// Ctrl on clinical workstations, Cmd on macOS.
func (e KeyEvent) Primary() bool {
	return e.Ctrl || e.Meta
}

// Plain reports whether the event carries no modifiers at all.
func (e KeyEvent) Plain() bool {
	return !e.Ctrl && !e.Meta && !e.Shift && !e.Alt
}

// letter returns the lowercased key for single-character keys, or ""
// for named keys like "Enter".
func (e KeyEvent) letter() string {
	if len(e.Key) != 1 {
		return ""
	}
	return strings.ToLower(e.Key)
}

// Convenience constructors for tests and server-driven callers.

// Press builds a plain key press.
func Press(key string) KeyEvent {
	return KeyEvent{Key: key}
}

// Chord builds a primary-modifier combination (Ctrl+key on workstations).
func Chord(key string) KeyEvent {
	return KeyEvent{Key: key, Ctrl: true}
}
