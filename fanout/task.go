package fanout

import (
	"time"

	"github.com/skillsenselab/menustream/provider"
)

// State tracks a task through its lifecycle.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Task is one item-processing job within a fan-out batch. Each item is
// processed at most once per batch; failures are captured as failed-state
// results, never re-queued.
type Task struct {
	ItemID   string
	Item     provider.Item
	State    State
	Result   provider.Result
	Err      error
	Duration time.Duration
}

// Summary reports the outcome of a completed fan-out batch.
type Summary struct {
	Completed int
	Failed    int
	Total     int
	Duration  time.Duration
	Tasks     []Task
}
