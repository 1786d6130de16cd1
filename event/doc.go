// Package event defines the tagged event variants that flow through a
// session's queue to the SSE stream: pipeline progress, item completions,
// heartbeats, and liveness pings.
//
// Each variant carries an explicit discriminant (Kind) so the stream
// multiplexer can pattern-match on event type. All variants serialize to
// the flat JSON shapes expected on the wire.
package event
