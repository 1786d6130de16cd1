package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/resilience"
)

type stubProcessor struct {
	name      string
	available bool
	calls     int
	fn        func(calls int) (Result, error)
}

func (s *stubProcessor) Name() string                       { return s.name }
func (s *stubProcessor) IsAvailable(_ context.Context) bool { return s.available }
func (s *stubProcessor) Process(_ context.Context, _ Item) (Result, error) {
	s.calls++
	return s.fn(s.calls)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  1.0,
	}
}

func TestWithRetry_TransientFailureRecovers(t *testing.T) {
	stub := &stubProcessor{
		name:      "translate",
		available: true,
		fn: func(calls int) (Result, error) {
			if calls < 3 {
				return Result{}, errors.New("connection reset")
			}
			return Succeeded(map[string]any{"translated": "grilled eel"}), nil
		},
	}

	p := WithRetry(stub, fastRetry(), logger.NewDefault("test"))
	res, err := p.Process(context.Background(), Item{ID: "i1", Name: "うなぎ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("expected success after retries")
	}
	if stub.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", stub.calls)
	}
}

func TestWithRetry_UnavailableFailsFast(t *testing.T) {
	stub := &stubProcessor{
		name:      "image",
		available: false,
		fn: func(int) (Result, error) {
			t.Fatal("unavailable processor must not be called")
			return Result{}, nil
		},
	}

	p := WithRetry(stub, fastRetry(), logger.NewDefault("test"))
	_, err := p.Process(context.Background(), Item{ID: "i1"})

	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if stub.calls != 0 {
		t.Errorf("expected no calls, got %d", stub.calls)
	}
}

func TestWithRetry_ExhaustionReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubProcessor{
		name:      "describe",
		available: true,
		fn:        func(int) (Result, error) { return Result{}, boom },
	}

	p := WithRetry(stub, fastRetry(), logger.NewDefault("test"))
	_, err := p.Process(context.Background(), Item{ID: "i1"})
	if !errors.Is(err, boom) {
		t.Errorf("expected last error, got %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", stub.calls)
	}
}

func TestFunc_Adapter(t *testing.T) {
	p := Func{
		ProcessorName: "ocr",
		Fn: func(_ context.Context, item Item) (Result, error) {
			return Succeeded(map[string]any{"echo": item.Name}), nil
		},
	}
	if p.Name() != "ocr" {
		t.Errorf("unexpected name %q", p.Name())
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("Func processors are always available")
	}
	res, err := p.Process(context.Background(), Item{Name: "天ぷら"})
	if err != nil || res.Payload["echo"] != "天ぷら" {
		t.Errorf("unexpected result %v err %v", res, err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(StageTranslate, Func{ProcessorName: "translate", Fn: nil})
	reg.Register(StageOCR, Func{ProcessorName: "ocr", Fn: nil})

	if _, err := reg.Get(StageTranslate); err != nil {
		t.Errorf("expected translate registered: %v", err)
	}
	if _, err := reg.Get(StageImage); err == nil {
		t.Error("expected error for unregistered stage")
	}
	if !reg.Available(context.Background(), StageOCR) {
		t.Error("expected ocr available")
	}
	if reg.Available(context.Background(), StageDescribe) {
		t.Error("expected describe unavailable")
	}

	stages := reg.Stages()
	if len(stages) != 2 || stages[0] != StageOCR || stages[1] != StageTranslate {
		t.Errorf("unexpected stages %v", stages)
	}
}
