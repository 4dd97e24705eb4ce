// Package session provides core.SessionStore implementations. The interface
// and the Session type live in core so agents and the runner depend on the
// contract rather than a concrete backend. The in-memory store covers tests,
// examples and single-process analysis runs; durable backends can be added in
// sub-packages without touching calling code.
package session
