package core

import (
	"context"
	"testing"
)

type rcMockSessionStore struct {
	applied map[string]map[string]any
}

func (m *rcMockSessionStore) Create(id string) (*Session, error) { return NewSession(id), nil }
func (m *rcMockSessionStore) Get(id string) (*Session, error)    { return NewSession(id), nil }
func (m *rcMockSessionStore) AppendEvent(string, Event) error    { return nil }

func (m *rcMockSessionStore) ApplyDelta(sessionID string, delta map[string]any) error {
	if m.applied == nil {
		m.applied = map[string]map[string]any{}
	}
	m.applied[sessionID] = delta
	return nil
}

func newRunContextForTest() (*RunContext, chan Event) {
	emit := make(chan Event, 4)
	rc := NewRunContext(
		context.Background(),
		"sess-1", "run-1",
		AgentInfo{Name: "pipeline"},
		"query",
		0,
		emit,
		NewSession("sess-1"),
		&rcMockSessionStore{},
		nil,
		nil,
	)
	return rc, emit
}

func TestRunContext_EmitEventCarriesDelta(t *testing.T) {
	rc, emit := newRunContextForTest()
	rc.SetState("foo", "bar")

	if err := rc.EmitEvent(NewMessageEvent(rc.RunID, "capa_agent", "done")); err != nil {
		t.Fatalf("EmitEvent error: %v", err)
	}

	received := <-emit
	if received.StateDelta["foo"].(string) != "bar" {
		t.Fatalf("State delta missing: %+v", received.StateDelta)
	}
	if len(rc.StateDelta) != 0 {
		t.Error("StateDelta should clear after emit")
	}

	// The run-local snapshot already reflects the emitted delta.
	if v, ok := rc.GetState("foo"); !ok || v.(string) != "bar" {
		t.Errorf("expected merged state, got %v (ok=%v)", v, ok)
	}
}

func TestRunContext_EmitEventCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := NewRunContext(ctx, "s", "r", AgentInfo{}, "q", 0, make(chan Event), NewSession("s"), nil, nil, nil)
	if err := rc.EmitEvent(NewEvent("r", "agent")); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestRunContext_CommitStateDelta(t *testing.T) {
	rc, _ := newRunContextForTest()
	store := rc.SessionStore.(*rcMockSessionStore)

	rc.SetState("k1", 123)
	if err := rc.CommitStateDelta(); err != nil {
		t.Fatalf("CommitStateDelta error: %v", err)
	}

	if store.applied == nil || store.applied[rc.SessionID]["k1"].(int) != 123 {
		t.Fatalf("State delta not applied: %+v", store.applied)
	}
	if len(rc.StateDelta) != 0 {
		t.Error("StateDelta should be cleared after commit")
	}
}

func TestRunContext_GetStatePrefersStagedDelta(t *testing.T) {
	rc, _ := newRunContextForTest()
	rc.Session.SetState("k", "persisted")
	rc.SetState("k", "staged")

	if v, _ := rc.GetState("k"); v.(string) != "staged" {
		t.Errorf("expected staged value, got %v", v)
	}
}

func TestModelLimiter(t *testing.T) {
	lim := NewModelLimiter(2)

	if err := lim.Increment(); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := lim.Increment(); err != nil {
		t.Fatalf("second increment: %v", err)
	}
	if got := lim.Count(); got != 2 {
		t.Errorf("expected count 2, got %d", got)
	}
	if err := lim.Increment(); err == nil {
		t.Fatal("expected limit error on third increment")
	}

	unlimited := NewModelLimiter(0)
	for i := 0; i < 10; i++ {
		if err := unlimited.Increment(); err != nil {
			t.Fatalf("unlimited limiter errored: %v", err)
		}
	}
}
