package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/hupe1980/pharmamesh/logging"
)

// RunContext carries the mutable, per-run execution scope passed to each
// agent's Run method. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (SessionID, RunID, Agent info)
//   - The original user query
//   - The event emission channel
//   - Backing services (session, artifact) for persistence concerns
//   - A working Session snapshot and pending StateDelta to commit
//
// State mutations performed via SetState accumulate in StateDelta until
// EmitEvent or CommitStateDelta applies them. Because the pipeline is strictly
// sequential, agents never observe a partially committed delta from a peer.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Agent            AgentInfo
	Query            string
	Emit             chan<- Event
	SessionStore     SessionStore
	ArtifactStore    ArtifactStore
	Limiter          *ModelLimiter
	Session          *Session
	StateDelta       map[string]any

	Logger logging.Logger
}

// NewRunContext constructs a RunContext with an empty state delta.
func NewRunContext(
	ctx context.Context,
	sessionID, runID string,
	agent AgentInfo,
	query string,
	maxModelCalls int,
	emit chan<- Event,
	sess *Session,
	sessionStore SessionStore,
	artifactStore ArtifactStore,
	logger logging.Logger,
) *RunContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		RunID:         runID,
		Agent:         agent,
		Query:         query,
		Emit:          emit,
		Session:       sess,
		SessionStore:  sessionStore,
		ArtifactStore: artifactStore,
		Limiter:       NewModelLimiter(maxModelCalls),
		StateDelta:    map[string]any{},
		Logger:        logger,
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns a staged (delta) value if present, else the persisted
// session value.
func (rc *RunContext) GetState(k string) (any, bool) {
	if v, ok := rc.StateDelta[k]; ok {
		return v, true
	}

	if rc.Session != nil {
		return rc.Session.GetState(k)
	}

	return nil, false
}

// SetState stages a state mutation in the in-memory delta buffer.
func (rc *RunContext) SetState(k string, v any) { rc.StateDelta[k] = v }

// ApplyStateDelta merges all pairs from d into the staged StateDelta.
func (rc *RunContext) ApplyStateDelta(d map[string]any) {
	maps.Copy(rc.StateDelta, d)
}

// SaveArtifact stores bytes in the ArtifactStore under the run's session.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return fmt.Errorf("artifact store not configured")
	}

	return rc.ArtifactStore.Save(rc.SessionID, id, data)
}

// GetArtifact retrieves previously saved artifact bytes.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}

	return rc.ArtifactStore.Get(rc.SessionID, id)
}

// EmitEvent attaches the staged StateDelta to the event, sends it on the Emit
// channel and clears the buffer. The runner merges the delta into the session
// store before forwarding the event, so ordering between state and event
// delivery is preserved.
func (rc *RunContext) EmitEvent(ev Event) error {
	if len(rc.StateDelta) > 0 {
		ev.StateDelta = make(map[string]any, len(rc.StateDelta))
		maps.Copy(ev.StateDelta, rc.StateDelta)

		// Merge into the run-local snapshot so later stages can read the
		// value without waiting for the store commit.
		if rc.Session != nil {
			rc.Session.MergeState(rc.StateDelta)
		}

		rc.StateDelta = map[string]any{}
	}

	select {
	case <-rc.Done():
		return rc.Err()
	case rc.Emit <- ev:
		return nil
	}
}

// CommitStateDelta persists the accumulated StateDelta directly to the
// session store then clears the buffer. Used when a stage has state to record
// but no externally visible event to emit.
func (rc *RunContext) CommitStateDelta() error {
	if len(rc.StateDelta) == 0 {
		return nil
	}

	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}

	if err := rc.SessionStore.ApplyDelta(rc.SessionID, rc.StateDelta); err != nil {
		return err
	}

	if rc.Session != nil {
		rc.Session.MergeState(rc.StateDelta)
	}

	rc.StateDelta = map[string]any{}

	return nil
}

// RefreshSession reloads the session snapshot from the SessionStore.
func (rc *RunContext) RefreshSession() error {
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}

	s, err := rc.SessionStore.Get(rc.SessionID)
	if err != nil {
		return err
	}

	rc.Session = s

	return nil
}
