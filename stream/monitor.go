package stream

import (
	"context"
	"time"

	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/session"
)

// Monitor runs per-session ping/pong liveness checks independent of data
// events. SSE has no built-in liveness signal through most proxies, so
// pings ride the normal event stream and clients acknowledge through the
// pong endpoint. A silent client is reported as degraded but never
// terminated: background processing must complete regardless of client
// presence.
type Monitor struct {
	reg *session.Registry
	b   *session.Broadcaster
	cfg Config
	log *logger.Logger
}

// NewMonitor creates a liveness monitor.
func NewMonitor(reg *session.Registry, b *session.Broadcaster, cfg Config, log *logger.Logger) *Monitor {
	cfg.ApplyDefaults()
	return &Monitor{
		reg: reg,
		b:   b,
		cfg: cfg,
		log: log.WithComponent("liveness"),
	}
}

// Start begins the ping loop for a session, typically once work reaches a
// long-running phase. Returns false if the session does not exist or a
// loop is already scheduled; concurrent triggers never start two loops.
func (m *Monitor) Start(ctx context.Context, sessionID string) bool {
	sess, ok := m.reg.Get(sessionID)
	if !ok {
		return false
	}
	if !sess.TrySchedulePing() {
		return false
	}

	go m.loop(ctx, sessionID)

	m.log.Debug("Ping loop started", map[string]interface{}{
		logger.FieldSessionID: sessionID,
	})
	return true
}

// Stop deactivates a running ping loop without touching the session.
func (m *Monitor) Stop(sessionID string) {
	if sess, ok := m.reg.Get(sessionID); ok {
		sess.DeactivatePing()
	}
}

func (m *Monitor) loop(ctx context.Context, sessionID string) {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Checked each tick: session deletion invalidates the loop.
		sess, ok := m.reg.Get(sessionID)
		if !ok || !sess.PingActive() {
			m.log.Debug("Ping loop stopped", map[string]interface{}{
				logger.FieldSessionID: sessionID,
			})
			return
		}

		count := sess.NextPing()
		m.b.Push(sessionID, event.NewPing(sessionID, count))

		if time.Since(sess.LastPong()) > m.cfg.MaxNoPong && sess.MarkStaleWarned() {
			m.log.Warn("No pong received, connection may be degraded", map[string]interface{}{
				logger.FieldSessionID: sessionID,
				"ping_count":          count,
			})
			m.b.Push(sessionID, event.NewProgress(event.StageNone, event.StatusWarning,
				"connection may be degraded; processing continues", map[string]any{
					"ping_count": count,
				}))
		}
	}
}
