// Package resilience provides the retry and concurrency-limiting
// primitives used at collaborator boundaries: exponential backoff with
// jitter for external calls, and a counting-semaphore bulkhead that
// enforces the fan-out concurrency limit.
package resilience
