package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/provider"
	"github.com/skillsenselab/menustream/resilience"
	"github.com/skillsenselab/menustream/session"
)

// Config configures a fan-out batch. Pool size and timeout are the only
// knobs: different "strategies" are configuration, not new designs.
type Config struct {
	// Concurrency is the bounded worker count.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	// ItemTimeout bounds each item's collaborator call.
	ItemTimeout time.Duration `yaml:"item_timeout" mapstructure:"item_timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.ItemTimeout <= 0 {
		c.ItemTimeout = 60 * time.Second
	}
}

// ProcessFunc runs the collaborator call chain for one item.
type ProcessFunc func(ctx context.Context, item provider.Item) (provider.Result, error)

// Recorder receives per-item telemetry. Implemented by the observability
// package; a nil recorder disables recording.
type Recorder interface {
	ItemProcessed(ctx context.Context, status string, duration time.Duration)
}

// Coordinator runs independent item jobs with bounded concurrency and
// reports completions as they happen, not in submission order. The
// fastest result reaches the client first.
type Coordinator struct {
	cfg         Config
	broadcaster *session.Broadcaster
	log         *logger.Logger
	recorder    Recorder
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRecorder attaches a telemetry recorder.
func WithRecorder(rec Recorder) Option {
	return func(c *Coordinator) { c.recorder = rec }
}

// New creates a coordinator that reports through the given broadcaster.
func New(cfg Config, b *session.Broadcaster, log *logger.Logger, opts ...Option) *Coordinator {
	cfg.ApplyDefaults()
	c := &Coordinator{
		cfg:         cfg,
		broadcaster: b,
		log:         log.WithComponent("fanout"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes all items and returns once every one of them has resolved,
// success or failure. A failed item never halts the batch. After the last
// item resolves, one terminal summary event is emitted.
//
// stage tags per-item error events with the pipeline phase being fanned out.
func (c *Coordinator) Run(ctx context.Context, sessionID string, stage event.Stage, items []provider.Item, fn ProcessFunc) Summary {
	start := time.Now()

	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "fanout",
		MaxConcurrent: c.cfg.Concurrency,
		MaxWait:       -1, // every submitted job eventually runs
	})

	tasks := make([]Task, len(items))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, item := range items {
		tasks[i] = Task{ItemID: item.ID, Item: item, State: StateQueued}

		wg.Add(1)
		go func(i int, item provider.Item) {
			defer wg.Done()

			if err := bulkhead.Acquire(ctx); err != nil {
				c.finish(&mu, &tasks[i], sessionID, stage, provider.Result{}, err, 0)
				return
			}
			defer bulkhead.Release()

			mu.Lock()
			tasks[i].State = StateRunning
			mu.Unlock()

			itemStart := time.Now()
			res, err := c.runOne(ctx, item, fn)
			c.finish(&mu, &tasks[i], sessionID, stage, res, err, time.Since(itemStart))
		}(i, item)
	}

	wg.Wait()

	completed, failed := 0, 0
	for _, task := range tasks {
		if task.State == StateCompleted {
			completed++
		} else {
			failed++
		}
	}

	c.broadcaster.Push(sessionID, event.NewFinal(completed, failed, len(items)))

	summary := Summary{
		Completed: completed,
		Failed:    failed,
		Total:     len(items),
		Duration:  time.Since(start),
		Tasks:     tasks,
	}
	c.log.Info("Fan-out batch complete", map[string]interface{}{
		logger.FieldSessionID: sessionID,
		"completed":           completed,
		"failed":              failed,
		"total":               len(items),
		logger.FieldDuration:  summary.Duration.Milliseconds(),
	})
	return summary
}

// runOne executes fn under the per-item timeout. A job that exceeds its
// deadline is treated as failed; the underlying call is cancelled through
// the context but never awaited past the deadline.
func (c *Coordinator) runOne(ctx context.Context, item provider.Item, fn ProcessFunc) (provider.Result, error) {
	itemCtx, cancel := context.WithTimeout(ctx, c.cfg.ItemTimeout)
	defer cancel()

	type outcome struct {
		res provider.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := fn(itemCtx, item)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-itemCtx.Done():
		if itemCtx.Err() == context.DeadlineExceeded {
			return provider.Result{}, errors.Timeout("process item " + item.ID)
		}
		return provider.Result{}, itemCtx.Err()
	}
}

// finish records a task outcome and reports it immediately, in completion order.
func (c *Coordinator) finish(mu *sync.Mutex, task *Task, sessionID string, stage event.Stage, res provider.Result, err error, d time.Duration) {
	mu.Lock()
	task.Result = res
	task.Err = err
	task.Duration = d
	failed := err != nil || !res.Success
	if failed {
		task.State = StateFailed
	} else {
		task.State = StateCompleted
	}
	mu.Unlock()

	if c.recorder != nil {
		status := "completed"
		if failed {
			status = "failed"
		}
		c.recorder.ItemProcessed(context.Background(), status, d)
	}

	if failed {
		reason := res.Error
		if err != nil {
			reason = err.Error()
		}
		c.broadcaster.Push(sessionID, event.NewProgress(stage, event.StatusError, "item processing failed", map[string]any{
			"item_id": task.ItemID,
			"error":   reason,
		}))
		return
	}

	c.broadcaster.Push(sessionID, event.NewItemCompleted(task.ItemID, res.Payload))
}
