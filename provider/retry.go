package provider

import (
	"context"
	"time"

	"github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/resilience"
)

// retrying wraps a Processor with the uniform retry-with-backoff policy.
// Retry lives here, at the collaborator-call boundary, and nowhere else:
// the fan-out coordinator never re-queues failed items.
type retrying struct {
	inner Processor
	cfg   resilience.RetryConfig
	log   *logger.Logger
}

// WithRetry decorates a processor with retry-with-backoff.
func WithRetry(inner Processor, cfg resilience.RetryConfig, log *logger.Logger) Processor {
	return &retrying{
		inner: inner,
		cfg:   cfg,
		log:   log.WithComponent("provider"),
	}
}

// Name implements Processor.
func (r *retrying) Name() string { return r.inner.Name() }

// IsAvailable implements Processor.
func (r *retrying) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

// Process implements Processor. Unavailable collaborators fail fast with
// a retryable ServiceUnavailable error; transient call errors are retried
// per the configured policy.
func (r *retrying) Process(ctx context.Context, item Item) (Result, error) {
	if !r.inner.IsAvailable(ctx) {
		return Result{}, errors.ServiceUnavailable(r.inner.Name())
	}

	cfg := r.cfg
	if cfg.OnRetry == nil {
		cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
			r.log.Warn("Collaborator call failed, retrying", map[string]interface{}{
				"provider":          r.inner.Name(),
				logger.FieldItemID:  item.ID,
				"attempt":           attempt,
				"backoff":           backoff.String(),
				logger.FieldError:   err.Error(),
			})
		}
	}

	return resilience.Retry(ctx, cfg, func() (Result, error) {
		return r.inner.Process(ctx, item)
	})
}
