package session

import (
	"context"
	"sync"

	"github.com/skillsenselab/menustream/logger"
)

// LifecycleRecorder receives session create/delete telemetry. Implemented
// by the observability package; a nil recorder disables recording.
type LifecycleRecorder interface {
	SessionOpened(ctx context.Context)
	SessionClosed(ctx context.Context)
}

// Registry is the single source of truth mapping session id to session
// state. All mutations are atomic with respect to concurrent reads from
// the broadcaster, multiplexer, and liveness monitor.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logger.Logger
	recorder LifecycleRecorder
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLifecycleRecorder attaches a telemetry recorder.
func WithLifecycleRecorder(rec LifecycleRecorder) RegistryOption {
	return func(r *Registry) { r.recorder = rec }
}

// NewRegistry creates an empty session registry.
func NewRegistry(log *logger.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		log:      log.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create returns the session for id, creating it if absent. Idempotent:
// calling Create on an existing id returns the existing session untouched.
func (r *Registry) Create(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[id]; ok {
		return sess
	}
	sess := newSession(id)
	r.sessions[id] = sess
	if r.recorder != nil {
		r.recorder.SessionOpened(context.Background())
	}
	r.log.Debug("Session created", map[string]interface{}{
		logger.FieldSessionID: id,
		"total_sessions":      len(r.sessions),
	})
	return sess
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Exists reports whether a session with the given id is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Delete removes a session and its queue. No-op if absent. A deleted id
// never resurrects: late pushes for it are dropped by the broadcaster,
// and any running ping loop observes the absence and stops.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	if r.recorder != nil {
		r.recorder.SessionClosed(context.Background())
	}
	r.log.Debug("Session deleted", map[string]interface{}{
		logger.FieldSessionID: id,
		"total_sessions":      len(r.sessions),
	})
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
