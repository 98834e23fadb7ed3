// Package fieldsafeecho mounts a fieldsafe Registry onto an Echo instance
// for server-driven clinical forms: the browser forwards raw field events
// (key, input, focus, blur) and renders from the returned state snapshot.
//
//	e := echo.New()
//	reg := fieldsafe.NewRegistry(fieldsafe.WithSink(sink))
//	fieldsafeecho.Mount(e, reg, fieldsafeecho.WithSave(store.SaveField))
package fieldsafeecho

import (
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	fieldsafe "github.com/itsalfredakku/rxops-uikit-sub005"
)

// SaveFunc persists a field value server-side. done follows the fieldsafe
// save contract: call it exactly once, with nil on success.
type SaveFunc func(fieldID, value string, done func(error))

// Defaults is the deployment profile applied to mounted fields: boolean
// flags are OR-ed with the mount request, durations fill in when the
// request leaves them zero.
type Defaults struct {
	MedicalDeviceMode  bool
	WorkflowShortcuts  bool
	AutoSaveInterval   time.Duration
	ConfirmationWindow time.Duration
	ShortcutFlash      time.Duration
}

// Option configures Mount.
type Option func(*options)

type options struct {
	path     string
	save     SaveFunc
	defaults Defaults
}

// WithDefaults sets the deployment profile for mounted fields, typically
// from lib/config.
func WithDefaults(d Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// WithPath sets the URL prefix for field routes. Defaults to "/fields".
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithSave sets the server-side save destination for mounted fields.
// Fields mounted without one never flush.
func WithSave(save SaveFunc) Option {
	return func(o *options) { o.save = save }
}

// handler serves field routes against one registry.
type handler struct {
	reg      *fieldsafe.Registry
	save     SaveFunc
	defaults Defaults
}

// Mount registers the field safety routes on an Echo instance.
func Mount(e *echo.Echo, reg *fieldsafe.Registry, opts ...Option) {
	o := &options{path: "/fields"}
	for _, opt := range opts {
		opt(o)
	}

	h := &handler{reg: reg, save: o.save, defaults: o.defaults}
	g := e.Group(o.path)
	g.POST("", h.mount)
	g.GET("/:id", h.state)
	g.DELETE("/:id", h.unmount)
	g.POST("/:id/key", h.key)
	g.POST("/:id/input", h.input)
	g.POST("/:id/focus", h.focus)
	g.POST("/:id/blur", h.blur)
	g.GET("/:id/indicators", h.indicators)
}

// mountRequest is the JSON body for creating a field.
type mountRequest struct {
	Context              fieldsafe.FieldContext    `json:"context"`
	Rule                 *fieldsafe.ValidationRule `json:"rule,omitempty"`
	MedicalDeviceMode    bool                      `json:"medicalDeviceMode"`
	WorkflowShortcuts    bool                      `json:"workflowShortcuts"`
	RequireConfirmation  bool                      `json:"requireConfirmation"`
	Activatable          bool                      `json:"activatable"`
	EmergencyMode        bool                      `json:"emergencyMode"`
	AutoSaveIntervalMS   int                       `json:"autoSaveIntervalMs"`
	ConfirmationWindowMS int                       `json:"confirmationWindowMs"`
}

type fieldResponse struct {
	ID    string          `json:"id"`
	State fieldsafe.State `json:"state"`
}

type eventResponse struct {
	Outcome outcomeJSON     `json:"outcome"`
	State   fieldsafe.State `json:"state"`
}

// outcomeJSON flattens an Outcome for the wire; the action kind travels as
// its string name.
type outcomeJSON struct {
	Action         string `json:"action,omitempty"`
	Handled        bool   `json:"handled"`
	PreventDefault bool   `json:"preventDefault"`
	Toggle         bool   `json:"toggle"`
	ClearContent   bool   `json:"clearContent"`
	Blur           bool   `json:"blur"`
	SelectAll      bool   `json:"selectAll"`
	Shortcut       string `json:"shortcut,omitempty"`
}

func toOutcomeJSON(out fieldsafe.Outcome) outcomeJSON {
	j := outcomeJSON{
		Handled:        out.Handled,
		PreventDefault: out.PreventDefault,
		Toggle:         out.Toggle,
		ClearContent:   out.ClearContent,
		Blur:           out.Blur,
		SelectAll:      out.SelectAll,
		Shortcut:       out.Shortcut,
	}
	if out.Handled {
		j.Action = out.Action.Kind.String()
	}
	return j
}

func (h *handler) mount(c echo.Context) error {
	var req mountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cfg := fieldsafe.Config{
		Context:                  req.Context,
		Rule:                     req.Rule,
		MedicalDeviceMode:        req.MedicalDeviceMode || h.defaults.MedicalDeviceMode,
		WorkflowShortcutsEnabled: req.WorkflowShortcuts || h.defaults.WorkflowShortcuts,
		RequireConfirmation:      req.RequireConfirmation,
		Activatable:              req.Activatable,
		EmergencyMode:            req.EmergencyMode,
		AutoSaveInterval:         msDuration(req.AutoSaveIntervalMS),
		ConfirmationWindow:       msDuration(req.ConfirmationWindowMS),
		ShortcutFlash:            h.defaults.ShortcutFlash,
	}
	if cfg.AutoSaveInterval == 0 {
		cfg.AutoSaveInterval = h.defaults.AutoSaveInterval
	}
	if cfg.ConfirmationWindow == 0 {
		cfg.ConfirmationWindow = h.defaults.ConfirmationWindow
	}
	if h.save != nil {
		// The field ID only exists after Mount; the interval timer may
		// already be armed by then, so the closure reads it through a
		// guarded holder rather than a bare captured variable.
		var hold idHolder
		cfg.OnSave = func(value string, done func(error)) {
			h.save(hold.get(), value, done)
		}
		ctrl, err := h.reg.Mount(cfg)
		if err != nil {
			return mapError(err)
		}
		hold.set(ctrl.ID())
		return c.JSON(http.StatusCreated, fieldResponse{ID: ctrl.ID(), State: ctrl.Snapshot()})
	}

	// No save destination configured: fields cannot flush, so a periodic
	// interval would be rejected at construction.
	cfg.AutoSaveInterval = 0
	ctrl, err := h.reg.Mount(cfg)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, fieldResponse{ID: ctrl.ID(), State: ctrl.Snapshot()})
}

func (h *handler) state(c echo.Context) error {
	ctrl, err := h.reg.Get(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, fieldResponse{ID: ctrl.ID(), State: ctrl.Snapshot()})
}

func (h *handler) unmount(c echo.Context) error {
	if err := h.reg.Unmount(c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) key(c echo.Context) error {
	ctrl, err := h.reg.Get(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	var ev fieldsafe.KeyEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out := ctrl.OnKeyDown(ev)
	return c.JSON(http.StatusOK, eventResponse{Outcome: toOutcomeJSON(out), State: ctrl.Snapshot()})
}

type inputRequest struct {
	Value string `json:"value"`
}

func (h *handler) input(c echo.Context) error {
	ctrl, err := h.reg.Get(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	var req inputRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctrl.OnInput(req.Value)
	return c.JSON(http.StatusOK, fieldResponse{ID: ctrl.ID(), State: ctrl.Snapshot()})
}

func (h *handler) focus(c echo.Context) error {
	ctrl, err := h.reg.Get(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	ctrl.OnFocus()
	return c.JSON(http.StatusOK, fieldResponse{ID: ctrl.ID(), State: ctrl.Snapshot()})
}

func (h *handler) blur(c echo.Context) error {
	ctrl, err := h.reg.Get(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	ctrl.OnBlur()
	return c.JSON(http.StatusOK, fieldResponse{ID: ctrl.ID(), State: ctrl.Snapshot()})
}

// indicators renders the field's status badges and validation errors as an
// HTML fragment for swap-in next to the control.
func (h *handler) indicators(c echo.Context) error {
	ctrl, err := h.reg.Get(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	state := ctrl.Snapshot()
	if err := Render(c, fieldsafe.StatusIndicators(state)); err != nil {
		return err
	}
	return fieldsafe.ValidationErrors(state.ValidationErrors).Render(c.Request().Context(), c.Response())
}

// Render writes a templ component to the Echo response.
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}

type idHolder struct {
	mu sync.Mutex
	id string
}

func (h *idHolder) set(id string) {
	h.mu.Lock()
	h.id = id
	h.mu.Unlock()
}

func (h *idHolder) get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func mapError(err error) error {
	switch {
	case fieldsafe.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case fieldsafe.IsConfigError(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
