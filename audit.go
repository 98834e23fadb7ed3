package fieldsafe

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/itsalfredakku/rxops-uikit-sub005/lib/encoding"
)

// AuditKind names a field lifecycle or safety transition worth recording.
type AuditKind string

const (
	AuditFieldMounted      AuditKind = "field_mounted"
	AuditFieldUnmounted    AuditKind = "field_unmounted"
	AuditValueSaved        AuditKind = "value_saved"
	AuditSaveFailed        AuditKind = "save_failed"
	AuditEmergencyEnabled  AuditKind = "emergency_enabled"
	AuditEmergencyDisabled AuditKind = "emergency_disabled"
)

// AuditEvent is one record handed to the injected sink. The transport
// (HIPAA audit log, message bus, file) is the deployment's concern; this
// package only defines the record and local sinks.
//
// Events never carry field content. Clinical values flow through the save
// callback only; the audit stream records that a save happened, not what
// was saved.
type AuditEvent struct {
	ID      string            `json:"id" msgpack:"id"`
	FieldID string            `json:"fieldId" msgpack:"fid"`
	Context FieldContext      `json:"context" msgpack:"ctx"`
	Kind    AuditKind         `json:"kind" msgpack:"kind"`
	At      time.Time         `json:"at" msgpack:"at"`
	Detail  map[string]string `json:"detail,omitempty" msgpack:"det,omitempty"`
}

// Sink receives audit events. Implementations must be safe for concurrent
// use. A failing sink never blocks field interaction; the registry drops
// the event and logs the failure.
type Sink interface {
	Record(ev AuditEvent) error
}

// newAuditEvent stamps a fresh event.
func newAuditEvent(clock Clock, fieldID string, ctx FieldContext, kind AuditKind, detail map[string]string) AuditEvent {
	return AuditEvent{
		ID:      uuid.NewString(),
		FieldID: fieldID,
		Context: ctx,
		Kind:    kind,
		At:      clock.Now(),
		Detail:  detail,
	}
}

// MemorySink retains events in memory. Intended for tests and the demo
// server's inspection endpoint.
type MemorySink struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends the event.
func (s *MemorySink) Record(ev AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEvent(nil), s.events...)
}

// LogSink writes events as structured log lines.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink creates a sink logging through log.
func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

// Record logs the event at info level with audit fields.
func (s *LogSink) Record(ev AuditEvent) error {
	fields := logrus.Fields{
		"audit":    true,
		"event_id": ev.ID,
		"field_id": ev.FieldID,
		"context":  string(ev.Context),
		"at":       ev.At.Format(time.RFC3339Nano),
	}
	for k, v := range ev.Detail {
		fields["detail_"+k] = v
	}
	s.log.WithFields(fields).Info(string(ev.Kind))
	return nil
}

// SealedSink encodes each event into a tamper-evident record (msgpack +
// HMAC signature, optionally AES-GCM encrypted) before handing it to a
// transport function. Use it when the audit stream leaves the process.
type SealedSink struct {
	codec     *encoding.Codec
	sensitive bool
	transport func(sealed string) error
}

// NewSealedSink builds a sink sealing events with codec. When sensitive is
// true records are encrypted rather than merely signed.
func NewSealedSink(codec *encoding.Codec, sensitive bool, transport func(sealed string) error) *SealedSink {
	return &SealedSink{codec: codec, sensitive: sensitive, transport: transport}
}

// Record seals the event and forwards it.
func (s *SealedSink) Record(ev AuditEvent) error {
	sealed, err := s.codec.Seal(ev, s.sensitive)
	if err != nil {
		return err
	}
	return s.transport(sealed)
}

// MultiSink fans one event out to several sinks, returning the first
// error after attempting all of them.
type MultiSink []Sink

// Record delivers ev to every sink.
func (m MultiSink) Record(ev AuditEvent) error {
	var first error
	for _, s := range m {
		if err := s.Record(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
