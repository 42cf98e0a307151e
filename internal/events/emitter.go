package events

import (
	"github.com/rs/zerolog/log"
)

// Emitter receives rejection events. Implementations must not block the caller
// for long and must not fail the request.
type Emitter interface {
	Emit(event RejectionEvent)
}

// MultiEmitter fans an event out to every configured emitter.
type MultiEmitter struct {
	emitters []Emitter
}

func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	var nonNil []Emitter
	for _, e := range emitters {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	return &MultiEmitter{emitters: nonNil}
}

func (m *MultiEmitter) Emit(event RejectionEvent) {
	for _, e := range m.emitters {
		e.Emit(event)
	}
}

func (m *MultiEmitter) Len() int { return len(m.emitters) }

// AuditEmitter writes one structured audit line per rejection
type AuditEmitter struct {
	enabled bool
}

func NewAuditEmitter(enabled bool) *AuditEmitter {
	return &AuditEmitter{enabled: enabled}
}

func (a *AuditEmitter) Emit(event RejectionEvent) {
	if !a.enabled {
		return
	}
	log.Info().
		Str("event", "content_rejected").
		Str("request_id", event.RequestID).
		Str("user_hash", event.UserHash).
		Str("resource", event.Resource).
		Str("field", event.Field).
		Str("ruleset", event.Ruleset).
		Str("rule", event.Rule).
		Str("text_hash", event.TextHash).
		Msg("audit")
}
