package conversation

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrCachePoisoned indicates a previous panic inside the cache's
	// critical section left the shared map in an unknown state. Every call
	// after poisoning fails with this error; the process should be
	// considered unhealthy rather than continue on corrupted state.
	ErrCachePoisoned = errors.New("conversation: cache poisoned by a prior panic")

	// ErrChannelNotFound is reserved in the error taxonomy. The cache
	// treats an absent user as an empty context and never returns it.
	ErrChannelNotFound = errors.New("conversation: channel not found")
)
