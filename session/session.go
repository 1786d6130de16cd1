package session

import (
	"sync"
	"time"

	"github.com/skillsenselab/menustream/event"
)

// Session is one logical end-to-end processing run. The registry owns the
// record; the event queue is owned by the session. All mutable state is
// guarded by a single coarse mutex.
type Session struct {
	ID         string
	CreatedAt  time.Time
	TotalItems int

	mu           sync.Mutex
	queue        []event.Event
	pendingClose bool

	lastPong      time.Time
	pingCount     int
	pingScheduled bool
	pingActive    bool
	staleWarned   bool
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// SetTotalItems declares the item count used for progress percentages.
func (s *Session) SetTotalItems(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalItems = n
}

// push appends an event to the FIFO queue. Terminal events also mark the
// session pending-close so the multiplexer terminates after flushing.
func (s *Session) push(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, ev)
	if event.IsTerminal(ev) {
		s.pendingClose = true
	}
}

// Pop removes and returns the oldest unconsumed event. Non-blocking.
func (s *Session) Pop() (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

// HasPending reports whether unconsumed events remain.
func (s *Session) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// PendingCount returns the number of unconsumed events.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// PendingClose reports whether a terminal event has been queued.
func (s *Session) PendingClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingClose
}

// --- liveness state ---

// RecordPong updates the last-pong timestamp.
func (s *Session) RecordPong() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPong = time.Now()
	s.staleWarned = false
}

// LastPong returns the time of the most recent pong acknowledgment.
// Zero if no pong has been received.
func (s *Session) LastPong() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPong
}

// NextPing increments and returns the ping counter.
func (s *Session) NextPing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingCount++
	return s.pingCount
}

// PingCount returns the number of pings sent so far.
func (s *Session) PingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingCount
}

// TrySchedulePing atomically claims the ping loop for this session.
// Returns false when a loop is already scheduled, so concurrent triggers
// never start two loops.
func (s *Session) TrySchedulePing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pingScheduled {
		return false
	}
	s.pingScheduled = true
	s.pingActive = true
	s.lastPong = time.Now()
	return true
}

// DeactivatePing asks a running ping loop to stop on its next tick.
func (s *Session) DeactivatePing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingActive = false
}

// PingActive reports whether the ping loop should keep running.
func (s *Session) PingActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingActive
}

// MarkStaleWarned records that a degraded-connectivity warning was emitted.
// Returns false when a warning is already outstanding, so staleness is
// reported once per silence period rather than every tick.
func (s *Session) MarkStaleWarned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleWarned {
		return false
	}
	s.staleWarned = true
	return true
}

// Snapshot is a point-in-time view of session state for ops endpoints.
type Snapshot struct {
	ID            string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	TotalItems    int       `json:"total_items"`
	PendingEvents int       `json:"pending_events"`
	PendingClose  bool      `json:"pending_close"`
	PingCount     int       `json:"ping_count"`
	PingActive    bool      `json:"ping_active"`
	LastPong      float64   `json:"last_pong,omitempty"`
}

// Snapshot returns a consistent copy of the session's state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		TotalItems:    s.TotalItems,
		PendingEvents: len(s.queue),
		PendingClose:  s.pendingClose,
		PingCount:     s.pingCount,
		PingActive:    s.pingActive,
	}
	if !s.lastPong.IsZero() {
		snap.LastPong = float64(s.lastPong.UnixNano()) / float64(time.Second)
	}
	return snap
}
