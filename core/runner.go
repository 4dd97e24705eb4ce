package core

import "context"

// Runner defines the orchestration contract for executing the root agent of a
// pipeline within a session. It provides:
//   - Asynchronous execution via Run (streaming events + terminal error channel)
//   - Cooperative cancellation through Cancel
//   - Stable run identifiers for tracking / external control
//
// Semantics & Guarantees:
//   - Event Ordering: Events emitted within a single run are delivered in the
//     order produced by the underlying agent pipeline ("in the order added").
//   - Channel Lifecycle: The returned events channel is closed after the run
//     completes (success, error, or cancellation). The error channel carries
//     at most one terminal error then closes (buffered size 1).
//   - Cancellation: Context cancellation or explicit Cancel(runID) stops
//     further event emission and triggers cleanup.
type Runner interface {
	// Run initiates an asynchronous pipeline execution bound to sessionID
	// using the provided query as the starting input. It returns:
	//   runID    - stable identifier for cancellation / tracking
	//   eventsCh - ordered stream of events (closed on completion)
	//   errorsCh - terminal error channel (size 1, closed after send/none)
	// The immediate error return covers startup failures (e.g. session load).
	Run(ctx context.Context, sessionID, query string) (string, <-chan Event, <-chan error, error)

	// Cancel requests cooperative termination of an in-flight run. It must be
	// idempotent; cancelling an unknown or already finished run returns an
	// error describing the condition.
	Cancel(runID string) error
}
