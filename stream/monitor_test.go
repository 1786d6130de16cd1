package stream

import (
	"context"
	"testing"
	"time"

	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/session"
)

func newTestMonitor(cfg Config) (*Monitor, *session.Registry, *session.Broadcaster) {
	log := logger.NewDefault("test")
	reg := session.NewRegistry(log)
	b := session.NewBroadcaster(reg, log)
	return NewMonitor(reg, b, cfg, log), reg, b
}

func drainEvents(sess *session.Session) []event.Event {
	var events []event.Event
	for {
		ev, ok := sess.Pop()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func TestMonitor_StartUnknownSession(t *testing.T) {
	m, _, _ := newTestMonitor(Config{})
	if m.Start(context.Background(), "missing") {
		t.Error("Start must fail for an unknown session")
	}
}

func TestMonitor_StartOnlyOnce(t *testing.T) {
	m, reg, _ := newTestMonitor(Config{PingInterval: time.Minute})
	reg.Create("s1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !m.Start(ctx, "s1") {
		t.Fatal("first Start must succeed")
	}
	if m.Start(ctx, "s1") {
		t.Error("second Start must not schedule a duplicate loop")
	}
}

func TestMonitor_PingsRideTheQueue(t *testing.T) {
	m, reg, _ := newTestMonitor(Config{
		PingInterval: 5 * time.Millisecond,
		MaxNoPong:    time.Minute,
	})
	sess := reg.Create("s1")

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, "s1")
	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	pings := 0
	var lastCount int
	for _, ev := range drainEvents(sess) {
		if p, ok := ev.(event.Ping); ok {
			pings++
			if p.Count <= lastCount {
				t.Errorf("ping counts must increase: %d after %d", p.Count, lastCount)
			}
			lastCount = p.Count
			if p.SessionID != "s1" {
				t.Errorf("ping for wrong session %s", p.SessionID)
			}
		}
	}
	if pings == 0 {
		t.Error("expected at least one ping")
	}
}

// Sustained silence produces exactly one warning, and the warning never
// terminates the session.
func TestMonitor_StaleWarningOncePerSilence(t *testing.T) {
	m, reg, _ := newTestMonitor(Config{
		PingInterval: 5 * time.Millisecond,
		MaxNoPong:    time.Millisecond,
	})
	sess := reg.Create("s1")

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, "s1")
	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	warnings := 0
	for _, ev := range drainEvents(sess) {
		if p, ok := ev.(event.Progress); ok && p.Status == event.StatusWarning {
			warnings++
			if p.Terminal() {
				t.Error("liveness warning must not be terminal")
			}
		}
	}
	if warnings != 1 {
		t.Errorf("expected exactly one stale warning, got %d", warnings)
	}
	if !reg.Exists("s1") {
		t.Error("silence must never tear the session down")
	}
}

// A pong rearms the warning so a new silence period is reported again.
func TestMonitor_PongRearmsWarning(t *testing.T) {
	m, reg, b := newTestMonitor(Config{
		PingInterval: 5 * time.Millisecond,
		MaxNoPong:    time.Millisecond,
	})
	sess := reg.Create("s1")

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, "s1")

	time.Sleep(20 * time.Millisecond)
	if !b.HandlePong("s1") {
		t.Fatal("pong for live session must succeed")
	}
	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	warnings := 0
	for _, ev := range drainEvents(sess) {
		if p, ok := ev.(event.Progress); ok && p.Status == event.StatusWarning {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("expected a second warning after pong reset, got %d", warnings)
	}
}

func TestMonitor_StopEndsLoop(t *testing.T) {
	m, reg, _ := newTestMonitor(Config{
		PingInterval: 5 * time.Millisecond,
		MaxNoPong:    time.Minute,
	})
	sess := reg.Create("s1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx, "s1")
	m.Stop("s1")

	time.Sleep(15 * time.Millisecond)
	settled := sess.PendingCount()
	time.Sleep(25 * time.Millisecond)
	if sess.PendingCount() != settled {
		t.Error("loop kept pushing pings after Stop")
	}
}

func TestMonitor_SessionDeletionEndsLoop(t *testing.T) {
	m, reg, b := newTestMonitor(Config{
		PingInterval: 5 * time.Millisecond,
		MaxNoPong:    time.Minute,
	})
	reg.Create("s1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx, "s1")
	reg.Delete("s1")
	time.Sleep(25 * time.Millisecond)

	if b.HandlePong("s1") {
		t.Error("pong for a deleted session must report absence")
	}
	if reg.Exists("s1") {
		t.Error("ping loop must not resurrect a deleted session")
	}
}
