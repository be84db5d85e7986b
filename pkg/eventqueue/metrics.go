package eventqueue

import "time"

// Metrics receives optional instrumentation from an EventQueue. A nil
// Metrics is always safe to pass to New; EventQueue checks for nil
// before every call so that disabled metrics cost nothing beyond the
// branch.
type Metrics interface {
	// SetBacklog reports the current number of queued (non-inline)
	// events after a mutation.
	SetBacklog(depth int)
	// ObserveDispatch reports how long a dispatched event's callable
	// took to run, and whether it ran inline.
	ObserveDispatch(d time.Duration, inline bool)
}
