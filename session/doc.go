// Package session provides the process-wide session registry, the
// per-session FIFO event queue, and the broadcaster that concurrent
// workers use to push progress events without blocking.
//
// Ownership: the Registry exclusively owns Session records; each Session
// owns its queue. A session exists in the registry from creation until the
// stream closes or an explicit delete; once removed, its id never silently
// resurrects — late events are dropped.
package session
