// Package runner executes the root pipeline agent within a session. It owns
// run lifecycle: session loading, the user query event, state delta
// persistence, event fan-out to the caller and cooperative cancellation. The
// final consolidated summary is additionally saved as a session artifact.
package runner
