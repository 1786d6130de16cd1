package component

import (
	"context"
	"errors"
	"testing"
)

type fakeComponent struct {
	name     string
	startErr error
	started  bool
	stopped  bool
	order    *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	if f.order != nil {
		*f.order = append(*f.order, "start:"+f.name)
	}
	return nil
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	f.stopped = true
	if f.order != nil {
		*f.order = append(*f.order, "stop:"+f.name)
	}
	return nil
}

func (f *fakeComponent) Health(ctx context.Context) Health {
	return Health{Name: f.name, Status: StatusHealthy}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeComponent{name: "a"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "a"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var order []string
	r := NewRegistry()
	a := &fakeComponent{name: "a", order: &order}
	b := &fakeComponent{name: "b", order: &order}
	r.Register(a)
	r.Register(b)

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestRegistry_StartAllStopsOnFailure(t *testing.T) {
	r := NewRegistry()
	a := &fakeComponent{name: "a"}
	b := &fakeComponent{name: "b", startErr: errors.New("boom")}
	c := &fakeComponent{name: "c"}
	r.Register(a)
	r.Register(b)
	r.Register(c)

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected StartAll to fail")
	}
	if !a.started || c.started {
		t.Errorf("unexpected start states: a=%v c=%v", a.started, c.started)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeComponent{name: "a"})
	r.Register(&fakeComponent{name: "b"})

	health := r.HealthAll(context.Background())
	if len(health) != 2 {
		t.Fatalf("expected 2 health reports, got %d", len(health))
	}
	for _, h := range health {
		if h.Status != StatusHealthy {
			t.Errorf("component %s unexpectedly %s", h.Name, h.Status)
		}
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	a := &fakeComponent{name: "a"}
	r.Register(a)

	if got := r.Get("a"); got != a {
		t.Error("Get returned wrong component")
	}
	if got := r.Get("missing"); got != nil {
		t.Error("Get for unknown name should return nil")
	}
}
