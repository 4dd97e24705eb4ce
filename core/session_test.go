package core

import "testing"

func TestSession_StateAndClone(t *testing.T) {
	s := NewSession("s1")

	s.MergeState(map[string]any{"a": 1, "b": "x"})
	if v, ok := s.GetState("a"); !ok || v.(int) != 1 {
		t.Fatalf("State not applied: %+v", s.State)
	}

	clone := s.Clone()
	if clone == s {
		t.Error("Clone should be a different pointer")
	}

	clone.SetState("c", 2)
	if _, exists := s.GetState("c"); exists {
		t.Error("Original should not have clone's new key")
	}
}

func TestSession_AddEventAndCopyOnRead(t *testing.T) {
	s := NewSession("s2")
	s.AddEvent(NewUserQueryEvent("run-1", "how many open CAPAs?"))
	s.AddEvent(NewMessageEvent("run-1", "capa_agent", "Found 3 open CAPAs"))

	all := s.GetEvents()
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].Content == nil || all[0].Content.Role != "user" {
		t.Errorf("expected user content first, got %+v", all[0].Content)
	}

	orig := all[0].Author
	all[0].Author = "changed"
	if s.GetEvents()[0].Author != orig {
		t.Error("events slice should be copied on read")
	}
}
