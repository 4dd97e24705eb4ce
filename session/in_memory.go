package session

import (
	"fmt"
	"sync"

	"github.com/hupe1980/pharmamesh/core"
)

// InMemoryStore keeps sessions in a process-local map. Sessions returned to
// callers are clones, so a caller can inspect a snapshot while a run keeps
// writing to the stored copy.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create allocates a fresh session under the given id, overwriting any
// existing one.
func (s *InMemoryStore) Create(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess

	return sess.Clone(), nil
}

// Get returns a clone of the session, creating it lazily when unknown. Lazy
// creation lets a caller start a run against a fresh session id without a
// separate Create call.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = core.NewSession(sessionID)
		s.sessions[sessionID] = sess
	}

	return sess.Clone(), nil
}

// AppendEvent adds an event to the session's history.
func (s *InMemoryStore) AppendEvent(sessionID string, ev core.Event) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.AddEvent(ev)

	return nil
}

// ApplyDelta merges a state delta into the session.
func (s *InMemoryStore) ApplyDelta(sessionID string, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.MergeState(delta)

	return nil
}

// Delete removes a session and its history.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}

	delete(s.sessions, sessionID)

	return nil
}

// List returns the ids of all stored sessions.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}

	return ids
}

func (s *InMemoryStore) lookup(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	return sess, nil
}
