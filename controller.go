package fieldsafe

import (
	"fmt"
	"sync"
	"time"
)

// Source defaults. Deployments override these through Config (typically
// populated from lib/config).
const (
	DefaultConfirmationWindow = 3 * time.Second
	DefaultAutoSaveInterval   = 30 * time.Second
	DefaultShortcutFlash      = 200 * time.Millisecond
)

// Config describes one field instance. It is read once at construction and
// never mutated by the controller.
type Config struct {
	// Context selects the shortcut set and validator defaults. Required.
	Context FieldContext

	// Rule, when non-nil, is evaluated against the field content on every
	// input. Malformed rules are rejected at construction.
	Rule *ValidationRule

	// MedicalDeviceMode enables the clinical-workstation interaction
	// profile (see RouterFlags).
	MedicalDeviceMode bool

	// WorkflowShortcutsEnabled enables all primary-modifier shortcuts.
	WorkflowShortcutsEnabled bool

	// RequireConfirmation gates Activate behind a two-step commit.
	RequireConfirmation bool

	// Activatable marks non-toggle contexts (interactive text, badges) as
	// activatable with Enter/Space. Toggle-like contexts always are.
	Activatable bool

	// EmergencyMode is the initial emergency flag value.
	EmergencyMode bool

	// AutoSaveInterval enables periodic background flushes when positive.
	// Zero disables the interval; Save/blur/navigate flushes still apply.
	AutoSaveInterval time.Duration

	// ConfirmationWindow overrides DefaultConfirmationWindow when positive.
	ConfirmationWindow time.Duration

	// ShortcutFlash overrides DefaultShortcutFlash when positive.
	ShortcutFlash time.Duration

	// OnSave persists the field value. Required when AutoSaveInterval is
	// set; without it every flush is a no-op.
	OnSave SaveFunc

	// OnEmergencyToggle, when non-nil, observes emergency flag changes.
	OnEmergencyToggle func(active bool)

	// Clock defaults to the system clock. Tests inject a ManualClock.
	Clock Clock
}

// Controller is the field safety controller: one instance per mounted
// field, owning that field's keyboard state exclusively. It lives from
// mount to unmount; Close releases every scheduled callback.
//
// All methods are safe for concurrent use. Event hooks run synchronously;
// the only asynchrony is the scheduled callbacks (confirmation expiry,
// shortcut flash, auto-save interval) and the owner's save callback, which
// the controller fires without awaiting.
type Controller struct {
	cfg   Config
	clock Clock
	flash time.Duration
	id    string

	mu        sync.Mutex
	closed    bool
	hasFocus  bool
	shortcut  bool
	emergency emergencyFlag
	gate      confirmGate
	saver     autoSaver
	errs      []string

	flashTimer    Timer
	intervalTimer Timer
}

type saveJob struct {
	value string
	gen   uint64
}

// NewController validates the configuration and builds a controller.
// Malformed configuration (unknown context, inverted range, negative
// durations, interval without a save callback) fails here with a
// descriptive error rather than misbehaving at event time.
func NewController(cfg Config) (*Controller, error) {
	if !cfg.Context.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContext, cfg.Context)
	}
	if cfg.Rule != nil {
		if err := cfg.Rule.Check(); err != nil {
			return nil, err
		}
	}
	if cfg.AutoSaveInterval < 0 || cfg.ConfirmationWindow < 0 || cfg.ShortcutFlash < 0 {
		return nil, fmt.Errorf("%w: auto-save %v, confirmation %v, flash %v",
			ErrInvalidInterval, cfg.AutoSaveInterval, cfg.ConfirmationWindow, cfg.ShortcutFlash)
	}
	if cfg.AutoSaveInterval > 0 && cfg.OnSave == nil {
		return nil, ErrNoSaveCallback
	}

	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	window := cfg.ConfirmationWindow
	if window == 0 {
		window = DefaultConfirmationWindow
	}
	flash := cfg.ShortcutFlash
	if flash == 0 {
		flash = DefaultShortcutFlash
	}

	c := &Controller{
		cfg:   cfg,
		clock: clock,
		flash: flash,
	}
	c.emergency.set(cfg.EmergencyMode)
	c.gate = confirmGate{window: window, clock: clock}

	if cfg.AutoSaveInterval > 0 {
		c.mu.Lock()
		c.armIntervalLocked()
		c.mu.Unlock()
	}
	return c, nil
}

// ID returns the registry-assigned field ID, or "" for a standalone
// controller.
func (c *Controller) ID() string { return c.id }

// Context returns the field's immutable context tag.
func (c *Controller) Context() FieldContext { return c.cfg.Context }

func (c *Controller) routerFlags() RouterFlags {
	return RouterFlags{
		MedicalDeviceMode:        c.cfg.MedicalDeviceMode,
		WorkflowShortcutsEnabled: c.cfg.WorkflowShortcutsEnabled,
		Activatable:              c.cfg.Activatable || c.cfg.Context.ToggleLike(),
	}
}

// OnKeyDown classifies and applies a keyboard event, returning the DOM
// effects the owning component must perform. Unhandled events return a
// zero Outcome and must propagate untouched.
func (c *Controller) OnKeyDown(ev KeyEvent) Outcome {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}
	}
	c.gate.expired()

	act, ok := Classify(ev, c.cfg.Context, c.routerFlags())
	if !ok {
		c.mu.Unlock()
		return Outcome{}
	}

	out := Outcome{Action: act, Handled: true, PreventDefault: act.PreventDefault}
	var job *saveJob
	var emergencyChange *bool

	switch act.Kind {
	case ActionActivate:
		if c.cfg.RequireConfirmation {
			if c.gate.request(c.confirmExpiry) == CommitImmediately {
				out.Toggle = true
			}
		} else {
			out.Toggle = true
		}

	case ActionCancel:
		switch {
		case c.gate.cancel():
			// Pending commit abandoned; the underlying value is untouched.
		case c.cfg.MedicalDeviceMode && c.cfg.Context.TextEntry():
			out.ClearContent = true
			c.saver.change("")
			c.revalidateLocked()
		default:
			out.Blur = true
		}

	case ActionNavigateAway:
		job = c.beginFlushLocked()

	case ActionSave:
		job = c.beginFlushLocked()
		c.flashLocked()

	case ActionToggleEmergency:
		active := c.emergency.toggle()
		emergencyChange = &active
		c.revalidateLocked()
		c.flashLocked()

	case ActionSelectAll:
		out.SelectAll = true
		c.flashLocked()

	case ActionContextShortcut:
		out.Shortcut = act.Shortcut
		c.flashLocked()
	}
	c.mu.Unlock()

	if emergencyChange != nil && c.cfg.OnEmergencyToggle != nil {
		c.cfg.OnEmergencyToggle(*emergencyChange)
	}
	if job != nil {
		c.runSave(job)
	}
	return out
}

// OnFocus records focus entering the field.
func (c *Controller) OnFocus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.hasFocus = true
}

// OnBlur records focus leaving the field and flushes unsaved content.
func (c *Controller) OnBlur() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.hasFocus = false
	job := c.beginFlushLocked()
	c.mu.Unlock()
	if job != nil {
		c.runSave(job)
	}
}

// OnInput records a content mutation, marks the field dirty and
// re-validates. Saving is never immediate.
func (c *Controller) OnInput(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.saver.change(value)
	c.revalidateLocked()
}

// Flush persists the current value through the save callback. It is a
// no-op for a clean field and coalesces behind an in-flight save; it
// reports whether a save was initiated. The dirty flag clears only when
// the owner reports success for unchanged content.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	job := c.beginFlushLocked()
	c.mu.Unlock()
	if job == nil {
		return false
	}
	c.runSave(job)
	return true
}

// RequestToggle runs the confirmation gate for a non-keyboard toggle
// request (e.g. a mouse click on a consent checkbox). Fields without
// RequireConfirmation always commit immediately.
func (c *Controller) RequestToggle() ToggleDecision {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return AwaitConfirmation
	}
	if !c.cfg.RequireConfirmation {
		return CommitImmediately
	}
	return c.gate.request(c.confirmExpiry)
}

// CancelConfirmation abandons a pending confirmation, if any.
func (c *Controller) CancelConfirmation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	return c.gate.cancel()
}

// ToggleEmergency flips the emergency flag and returns the new value.
func (c *Controller) ToggleEmergency() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	active := c.emergency.toggle()
	c.revalidateLocked()
	c.mu.Unlock()
	if c.cfg.OnEmergencyToggle != nil {
		c.cfg.OnEmergencyToggle(active)
	}
	return active
}

// SetEmergency forces the emergency flag.
func (c *Controller) SetEmergency(active bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := c.emergency.isActive() != active
	c.emergency.set(active)
	c.revalidateLocked()
	c.mu.Unlock()
	if changed && c.cfg.OnEmergencyToggle != nil {
		c.cfg.OnEmergencyToggle(active)
	}
}

// EmergencyActive reports the current emergency flag.
func (c *Controller) EmergencyActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emergency.isActive()
}

// Value returns the current field content as the controller knows it.
func (c *Controller) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saver.value
}

// Snapshot returns the observable state the presentational layer renders.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.gate.expired()
	}
	return State{
		HasFocus:            c.hasFocus,
		EmergencyMode:       c.emergency.isActive(),
		ConfirmationPending: c.gate.pending,
		HasUnsavedChanges:   c.saver.dirty,
		ShortcutPressed:     c.shortcut,
		LastSaveTime:        c.saver.lastSave,
		ValidationErrors:    append([]string(nil), c.errs...),
	}
}

// Close disposes the controller, cancelling every scheduled callback.
// Further events are ignored. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gate.reset()
	c.flashTimer = stopTimer(c.flashTimer)
	c.intervalTimer = stopTimer(c.intervalTimer)
}

func (c *Controller) revalidateLocked() {
	if c.cfg.Rule == nil {
		c.errs = nil
		return
	}
	if c.emergency.isActive() {
		c.errs = ValidateEmergency(c.saver.value, *c.cfg.Rule)
	} else {
		c.errs = Validate(c.saver.value, *c.cfg.Rule)
	}
}

// flashLocked raises the transient shortcut indicator and (re)schedules its
// clearing. At most one flash timer exists at a time.
func (c *Controller) flashLocked() {
	c.shortcut = true
	c.flashTimer = stopTimer(c.flashTimer)
	c.flashTimer = c.clock.AfterFunc(c.flash, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		c.shortcut = false
		c.flashTimer = nil
	})
}

// confirmExpiry runs when a confirmation window elapses unanswered.
func (c *Controller) confirmExpiry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gate.expired()
}

func (c *Controller) beginFlushLocked() *saveJob {
	if c.cfg.OnSave == nil {
		return nil
	}
	value, gen, ok := c.saver.begin()
	if !ok {
		return nil
	}
	return &saveJob{value: value, gen: gen}
}

// runSave fires the owner's save callback without awaiting it. The done
// closure tolerates owners that call it more than once.
func (c *Controller) runSave(job *saveJob) {
	var once sync.Once
	c.cfg.OnSave(job.value, func(err error) {
		once.Do(func() {
			c.saveDone(job.gen, err)
		})
	})
}

func (c *Controller) saveDone(gen uint64, err error) {
	c.mu.Lock()
	reflush := c.saver.finish(gen, err, c.clock.Now())
	var job *saveJob
	if reflush && !c.closed {
		job = c.beginFlushLocked()
	}
	c.mu.Unlock()
	if job != nil {
		c.runSave(job)
	}
}

// armIntervalLocked schedules the next periodic flush. The interval timer
// is the only persistent scheduled task per field and dies with Close.
func (c *Controller) armIntervalLocked() {
	c.intervalTimer = c.clock.AfterFunc(c.cfg.AutoSaveInterval, c.intervalTick)
}

func (c *Controller) intervalTick() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	job := c.beginFlushLocked()
	c.armIntervalLocked()
	c.mu.Unlock()
	if job != nil {
		c.runSave(job)
	}
}
