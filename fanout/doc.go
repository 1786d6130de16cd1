// Package fanout dispatches independent item-processing jobs to a
// bounded-concurrency pool and reports each completion through the
// session broadcaster as it happens. It is the single canonical
// fan-out/fan-in implementation: pool size and per-item timeout are
// configuration.
package fanout
