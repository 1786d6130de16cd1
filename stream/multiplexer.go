package stream

import (
	"net/http"
	"time"

	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/session"
)

// Multiplexer drains a session's event queue into a single live SSE
// stream for exactly one client connection. It polls with a non-blocking
// pop, synthesizes heartbeats into idle gaps, and terminates on the
// terminal event, client disconnect, or session deletion. On close the
// session is removed from the registry.
type Multiplexer struct {
	reg *session.Registry
	cfg Config
	log *logger.Logger
}

// NewMultiplexer creates a multiplexer over the given registry.
func NewMultiplexer(reg *session.Registry, cfg Config, log *logger.Logger) *Multiplexer {
	cfg.ApplyDefaults()
	return &Multiplexer{
		reg: reg,
		cfg: cfg,
		log: log.WithComponent("stream"),
	}
}

// Serve streams the session's events to the client until the stream
// closes. The caller must have verified the session exists.
func (m *Multiplexer) Serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		m.log.Error("Streaming not supported", map[string]interface{}{
			logger.FieldSessionID: sessionID,
		})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections are long-lived and must outlive the server's
	// WriteTimeout setting.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		m.log.Warn("Could not disable write deadline", map[string]interface{}{
			logger.FieldSessionID: sessionID,
			logger.FieldError:     err.Error(),
		})
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	m.log.Debug("Stream opened", map[string]interface{}{
		logger.FieldSessionID: sessionID,
		"remote_addr":         r.RemoteAddr,
	})

	ctx := r.Context()
	lastSend := time.Now()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected. Silent teardown: running workers keep
			// going and their late results are dropped by the broadcaster.
			m.log.Debug("Client disconnected", map[string]interface{}{
				logger.FieldSessionID: sessionID,
			})
			m.reg.Delete(sessionID)
			return
		default:
		}

		sess, ok := m.reg.Get(sessionID)
		if !ok {
			// Session torn down elsewhere (explicit delete).
			m.log.Debug("Session gone, closing stream", map[string]interface{}{
				logger.FieldSessionID: sessionID,
			})
			return
		}

		if ev, ok := sess.Pop(); ok {
			frame, err := event.Encode(ev)
			if err != nil {
				// A single malformed event never crashes the loop.
				m.log.Warn("Skipping unserializable event", map[string]interface{}{
					logger.FieldSessionID: sessionID,
					"kind":                string(ev.Kind()),
					logger.FieldError:     err.Error(),
				})
				continue
			}
			if _, err := w.Write(frame); err != nil {
				m.log.Debug("Write failed, closing stream", map[string]interface{}{
					logger.FieldSessionID: sessionID,
					logger.FieldError:     err.Error(),
				})
				m.reg.Delete(sessionID)
				return
			}
			flusher.Flush()
			lastSend = time.Now()

			if event.IsTerminal(ev) {
				m.log.Debug("Terminal event sent, closing stream", map[string]interface{}{
					logger.FieldSessionID: sessionID,
				})
				m.reg.Delete(sessionID)
				return
			}
			// Keep draining back-to-back events without sleeping so
			// heartbeats never interleave a burst.
			continue
		}

		if time.Since(lastSend) >= m.cfg.HeartbeatInterval {
			frame, err := event.Encode(event.NewHeartbeat(sessionID))
			if err == nil {
				if _, err := w.Write(frame); err != nil {
					m.reg.Delete(sessionID)
					return
				}
				flusher.Flush()
				lastSend = time.Now()
			}
		}

		timer := time.NewTimer(m.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.reg.Delete(sessionID)
			return
		case <-timer.C:
		}
	}
}
