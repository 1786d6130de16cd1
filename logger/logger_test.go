package logger

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format 'console', got '%s'", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected default output 'stdout', got '%s'", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to default on")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "verbose", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg = Config{Level: "debug", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}

	cfg = Config{Level: "debug", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two")
	if m["a"] != 1 {
		t.Errorf("expected a=1, got %v", m["a"])
	}
	if m["b"] != "two" {
		t.Errorf("expected b='two', got %v", m["b"])
	}

	// Odd trailing value is dropped.
	m = Fields("a", 1, "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 entry, got %d", len(m))
	}

	// Non-string keys are skipped.
	m = Fields(42, "value")
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("drain", 1500*time.Millisecond)
	if m[FieldOperation] != "drain" {
		t.Errorf("expected operation 'drain', got %v", m[FieldOperation])
	}
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected duration 1500, got %v", m[FieldDuration])
	}
}

func TestWithComponent(t *testing.T) {
	base := NewDefault("test")
	tagged := base.WithComponent("session")
	if tagged == base {
		t.Error("expected a new logger instance")
	}
}

func TestGetGlobalLogger_LazyInit(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Error("expected lazily-created global logger")
	}
}
