// Package artifact provides core.ArtifactStore implementations for the
// rendered outputs of a run (final summaries, report bodies, email payloads).
// The in-memory store serves tests and examples; FileStore persists artifacts
// under a directory so reports survive process restarts.
package artifact
