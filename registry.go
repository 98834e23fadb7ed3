package fieldsafe

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry owns the set of mounted field controllers for a process. It
// assigns field IDs, logs lifecycle transitions, and fans safety events
// out to the injected audit sink. Controllers remain independent — the
// registry adds bookkeeping, never cross-field coupling.
type Registry struct {
	mu     sync.RWMutex
	fields map[string]*Controller
	log    *logrus.Logger
	sink   Sink
	clock  Clock
	closed bool
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*Registry)

// WithLogger sets the registry's structured logger.
func WithLogger(log *logrus.Logger) RegistryOption {
	return func(r *Registry) { r.log = log }
}

// WithSink sets the audit sink receiving field safety events.
func WithSink(sink Sink) RegistryOption {
	return func(r *Registry) { r.sink = sink }
}

// WithClock sets the clock used for audit timestamps and, as a default,
// for mounted controllers. Tests inject a ManualClock.
func WithClock(clock Clock) RegistryOption {
	return func(r *Registry) { r.clock = clock }
}

// NewRegistry creates an empty registry. Without options it logs nowhere
// useful (discard-level logger) and audits nowhere.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		fields: make(map[string]*Controller),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logrus.New()
		r.log.SetLevel(logrus.PanicLevel)
	}
	return r
}

// Mount validates cfg, builds a controller, assigns it a field ID and
// starts auditing its transitions. The controller's save and emergency
// callbacks still reach the owner's; the registry observes, it does not
// replace.
func (r *Registry) Mount(cfg Config) (*Controller, error) {
	if cfg.Clock == nil {
		cfg.Clock = r.clock
	}

	id := uuid.NewString()
	cfg = r.observe(id, cfg)

	ctrl, err := NewController(cfg)
	if err != nil {
		r.log.WithError(err).WithField("context", string(cfg.Context)).
			Error("field mount rejected")
		return nil, err
	}
	ctrl.id = id

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		ctrl.Close()
		return nil, ErrControllerClosed
	}
	r.fields[id] = ctrl
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"field_id": id,
		"context":  string(cfg.Context),
	}).Info("field mounted")
	r.audit(newAuditEvent(r.clock, id, cfg.Context, AuditFieldMounted, nil))
	return ctrl, nil
}

// observe wraps the owner's callbacks so the registry can log and audit
// transitions without altering their semantics.
func (r *Registry) observe(id string, cfg Config) Config {
	ownerSave := cfg.OnSave
	if ownerSave != nil {
		ctx := cfg.Context
		cfg.OnSave = func(value string, done func(error)) {
			ownerSave(value, func(err error) {
				kind := AuditValueSaved
				var detail map[string]string
				if err != nil {
					kind = AuditSaveFailed
					detail = map[string]string{"error": err.Error()}
					r.log.WithError(err).WithField("field_id", id).Warn("field save failed")
				}
				r.audit(newAuditEvent(r.clock, id, ctx, kind, detail))
				done(err)
			})
		}
	}

	ownerToggle := cfg.OnEmergencyToggle
	ctx := cfg.Context
	cfg.OnEmergencyToggle = func(active bool) {
		kind := AuditEmergencyDisabled
		if active {
			kind = AuditEmergencyEnabled
		}
		r.log.WithFields(logrus.Fields{
			"field_id":  id,
			"emergency": active,
		}).Info("emergency mode changed")
		r.audit(newAuditEvent(r.clock, id, ctx, kind, nil))
		if ownerToggle != nil {
			ownerToggle(active)
		}
	}
	return cfg
}

// Get returns the mounted controller for id.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctrl, ok := r.fields[id]
	if !ok {
		return nil, ErrFieldNotFound
	}
	return ctrl, nil
}

// Unmount closes and forgets the controller for id.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	ctrl, ok := r.fields[id]
	if ok {
		delete(r.fields, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrFieldNotFound
	}
	ctx := ctrl.Context()
	ctrl.Close()
	r.log.WithField("field_id", id).Info("field unmounted")
	r.audit(newAuditEvent(r.clock, id, ctx, AuditFieldUnmounted, nil))
	return nil
}

// Len reports how many fields are mounted.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fields)
}

// Close unmounts every field and rejects further mounts.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	fields := r.fields
	r.fields = make(map[string]*Controller)
	r.mu.Unlock()

	for id, ctrl := range fields {
		ctx := ctrl.Context()
		ctrl.Close()
		r.audit(newAuditEvent(r.clock, id, ctx, AuditFieldUnmounted, nil))
	}
}

// audit delivers an event, logging (never propagating) sink failures so a
// broken transport cannot block field interaction.
func (r *Registry) audit(ev AuditEvent) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Record(ev); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"field_id": ev.FieldID,
			"kind":     string(ev.Kind),
		}).Warn("audit sink failure")
	}
}
