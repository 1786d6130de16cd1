package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skillsenselab/menustream/event"
)

// Metrics holds the service's metric instruments. It satisfies the
// broadcaster's Recorder interface so event flow is counted without the
// session package knowing about OpenTelemetry.
type Metrics struct {
	eventsPushed   metric.Int64Counter
	eventsDropped  metric.Int64Counter
	itemsProcessed metric.Int64Counter
	itemDuration   metric.Float64Histogram
	sessionsActive metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	eventsPushed, err := meter.Int64Counter("stream.events.pushed",
		metric.WithDescription("Events pushed into session queues, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.events.pushed counter: %w", err)
	}

	eventsDropped, err := meter.Int64Counter("stream.events.dropped",
		metric.WithDescription("Events dropped before delivery, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.events.dropped counter: %w", err)
	}

	itemsProcessed, err := meter.Int64Counter("pipeline.items.processed",
		metric.WithDescription("Menu items resolved by the fan-out, by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.items.processed counter: %w", err)
	}

	itemDuration, err := meter.Float64Histogram("pipeline.item.duration",
		metric.WithDescription("Per-item processing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.item.duration histogram: %w", err)
	}

	sessionsActive, err := meter.Int64UpDownCounter("stream.sessions.active",
		metric.WithDescription("Currently registered sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.sessions.active gauge: %w", err)
	}

	return &Metrics{
		eventsPushed:   eventsPushed,
		eventsDropped:  eventsDropped,
		itemsProcessed: itemsProcessed,
		itemDuration:   itemDuration,
		sessionsActive: sessionsActive,
	}, nil
}

// EventPushed counts a delivered event by kind.
func (m *Metrics) EventPushed(kind event.Kind) {
	m.eventsPushed.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
	))
}

// EventDropped counts a dropped event by reason.
func (m *Metrics) EventDropped(reason string) {
	m.eventsDropped.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// ItemProcessed records one resolved fan-out item.
func (m *Metrics) ItemProcessed(ctx context.Context, status string, duration time.Duration) {
	m.itemsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.itemDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
	))
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened(ctx context.Context) {
	m.sessionsActive.Add(ctx, 1)
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed(ctx context.Context) {
	m.sessionsActive.Add(ctx, -1)
}
