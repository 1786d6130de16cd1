package session

import (
	"encoding/json"
	"fmt"

	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/logger"
)

// Recorder receives broadcast telemetry. Implemented by the observability
// package; a nil recorder disables recording.
type Recorder interface {
	EventPushed(kind event.Kind)
	EventDropped(reason string)
}

// Broadcaster is the public API workers use to report progress into a
// session's queue. Push is fire-and-forget: it never blocks, never panics
// to the caller, and silently drops events for sessions that no longer
// exist, so a disconnected client cannot back up background work.
type Broadcaster struct {
	reg      *Registry
	log      *logger.Logger
	recorder Recorder
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithRecorder attaches a telemetry recorder.
func WithRecorder(rec Recorder) BroadcasterOption {
	return func(b *Broadcaster) { b.recorder = rec }
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(reg *Registry, log *logger.Logger, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		reg: reg,
		log: log.WithComponent("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Push delivers an event to the session's queue. A progress-reporting
// failure must never fail the underlying business task, so all internal
// errors are logged and swallowed.
func (b *Broadcaster) Push(sessionID string, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Panic in push, event dropped", map[string]interface{}{
				logger.FieldSessionID: sessionID,
				"panic":               fmt.Sprintf("%v", r),
			})
		}
	}()

	sess, ok := b.reg.Get(sessionID)
	if !ok {
		// Intentional: late results for torn-down sessions are dropped.
		b.log.Debug("Push to unknown session, event dropped", map[string]interface{}{
			logger.FieldSessionID: sessionID,
			"kind":                string(ev.Kind()),
		})
		b.dropped("unknown_session")
		return
	}

	if _, err := json.Marshal(ev); err != nil {
		b.log.Warn("Event payload not serializable, event dropped", map[string]interface{}{
			logger.FieldSessionID: sessionID,
			"kind":                string(ev.Kind()),
			logger.FieldError:     err.Error(),
		})
		b.dropped("serialization")
		return
	}

	sess.push(ev)
	if b.recorder != nil {
		b.recorder.EventPushed(ev.Kind())
	}
}

// HandlePong records a liveness acknowledgment from the client.
// Returns false when the session does not exist.
func (b *Broadcaster) HandlePong(sessionID string) bool {
	sess, ok := b.reg.Get(sessionID)
	if !ok {
		return false
	}
	sess.RecordPong()
	return true
}

func (b *Broadcaster) dropped(reason string) {
	if b.recorder != nil {
		b.recorder.EventDropped(reason)
	}
}
