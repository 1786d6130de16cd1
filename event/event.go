package event

import (
	"encoding/json"
	"time"
)

// Kind discriminates event variants so consumers can pattern-match
// instead of probing JSON keys.
type Kind string

const (
	KindProgress      Kind = "progress"
	KindHeartbeat     Kind = "heartbeat"
	KindPing          Kind = "ping"
	KindItemCompleted Kind = "item_completed"
)

// Status is the progress status of a stage or item.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusWarning   Status = "warning"
)

// Stage identifies a step of the menu processing pipeline.
type Stage int

const (
	// StageNone marks events not tied to a pipeline stage, such as
	// liveness warnings.
	StageNone Stage = 0

	StageOCR        Stage = 1
	StageCategorize Stage = 2
	StageTranslate  Stage = 3
	StageDescribe   Stage = 4
	StageImage      Stage = 5
	// StageFinal is the terminal marker: a Progress event carrying it
	// closes the stream after being emitted.
	StageFinal Stage = 6
)

// Event is the tagged union delivered through a session's queue.
type Event interface {
	Kind() Kind
}

// Now returns the current time as float unix seconds, the wire timestamp format.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Progress reports pipeline stage status for a session.
type Progress struct {
	Stage     Stage          `json:"stage"`
	Status    Status         `json:"status"`
	Message   string         `json:"message"`
	Timestamp float64        `json:"timestamp"`
	Data      map[string]any `json:"-"`
}

// Kind implements Event.
func (Progress) Kind() Kind { return KindProgress }

// Terminal reports whether this event closes the stream.
func (p Progress) Terminal() bool { return p.Stage == StageFinal }

// MarshalJSON flattens Data entries into top-level extra fields.
// Fixed keys always win over Data entries of the same name.
func (p Progress) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Data)+4)
	for k, v := range p.Data {
		m[k] = v
	}
	m["stage"] = int(p.Stage)
	m["status"] = string(p.Status)
	m["message"] = p.Message
	m["timestamp"] = p.Timestamp
	return json.Marshal(m)
}

// NewProgress creates a Progress event stamped with the current time.
func NewProgress(stage Stage, status Status, message string, data map[string]any) Progress {
	return Progress{
		Stage:     stage,
		Status:    status,
		Message:   message,
		Timestamp: Now(),
		Data:      data,
	}
}

// NewFinal creates the terminal summary event for a completed batch.
func NewFinal(completed, failed, total int) Progress {
	return NewProgress(StageFinal, StatusCompleted, "processing complete", map[string]any{
		"completed_count": completed,
		"failed_count":    failed,
		"total":           total,
	})
}

// Heartbeat is synthesized by the multiplexer when the queue has been
// idle for longer than the heartbeat interval. It never displaces real events.
type Heartbeat struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
	SessionID string  `json:"session_id"`
}

// Kind implements Event.
func (Heartbeat) Kind() Kind { return KindHeartbeat }

// NewHeartbeat creates a Heartbeat event for the given session.
func NewHeartbeat(sessionID string) Heartbeat {
	return Heartbeat{
		Type:      string(KindHeartbeat),
		Timestamp: Now(),
		SessionID: sessionID,
	}
}

// Ping is an application-level liveness probe that rides the normal
// event stream. Clients answer via the pong endpoint.
type Ping struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
	SessionID string  `json:"session_id"`
	Count     int     `json:"ping_count"`
}

// Kind implements Event.
func (Ping) Kind() Kind { return KindPing }

// NewPing creates a Ping event for the given session.
func NewPing(sessionID string, count int) Ping {
	return Ping{
		Type:      string(KindPing),
		Timestamp: Now(),
		SessionID: sessionID,
		Count:     count,
	}
}

// ItemCompleted reports the result of one fully processed menu item.
type ItemCompleted struct {
	Type      string         `json:"type"`
	ItemID    string         `json:"item_id"`
	Payload   map[string]any `json:"payload"`
	Timestamp float64        `json:"timestamp"`
}

// Kind implements Event.
func (ItemCompleted) Kind() Kind { return KindItemCompleted }

// NewItemCompleted creates an ItemCompleted event stamped with the current time.
func NewItemCompleted(itemID string, payload map[string]any) ItemCompleted {
	return ItemCompleted{
		Type:      string(KindItemCompleted),
		ItemID:    itemID,
		Payload:   payload,
		Timestamp: Now(),
	}
}

// IsTerminal reports whether ev is a terminal Progress event.
func IsTerminal(ev Event) bool {
	p, ok := ev.(Progress)
	return ok && p.Terminal()
}
