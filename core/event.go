package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is the primary unit of communication between agents, the runner and
// external clients. After emission it should be treated as immutable. It
// captures:
//   - Correlation (RunID, ID, Author)
//   - Conversational content (optional role-based Parts)
//   - State mutations to merge into the session (StateDelta)
//   - Error metadata for failed stages
//   - High precision UTC timestamp
//
// Content may be nil for control or error-only events.
type Event struct {
	ID           string         `json:"id"`
	RunID        string         `json:"run_id"`
	Author       string         `json:"author"`
	Timestamp    time.Time      `json:"timestamp"`
	Content      *Content       `json:"content,omitempty"`
	StateDelta   map[string]any `json:"state_delta,omitempty"`
	Final        bool           `json:"final,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by 'author' bound to a run. Prefer
// the helper constructors for common semantic categories.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageEvent constructs an assistant-style message event with a single
// text part. Author can be an agent name or system identifier.
func NewMessageEvent(runID, author, message string) Event {
	e := NewEvent(runID, author)
	c := NewTextContent("assistant", message)
	e.Content = &c
	return e
}

// NewUserQueryEvent is a convenience wrapper for the user-authored query that
// starts a run.
func NewUserQueryEvent(runID, query string) Event {
	e := NewEvent(runID, "user")
	c := NewTextContent("user", query)
	e.Content = &c
	return e
}

// NewErrorEvent records a stage failure. The pipeline continues; the event
// exists so observers see which stage degraded and why.
func NewErrorEvent(runID, author string, err error) Event {
	e := NewEvent(runID, author)
	msg := err.Error()
	e.ErrorMessage = &msg
	return e
}

// NewID generates a new UUID-based unique identifier used for events and runs.
func NewID() string { return uuid.NewString() }

// IsError reports whether the event carries an error message.
func (e Event) IsError() bool { return e.ErrorMessage != nil }

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }
