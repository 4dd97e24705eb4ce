package artifact

import (
	"sort"
	"sync"
)

// InMemoryStore keeps artifacts in a nested map, sessionID -> artifactID ->
// bytes. Data is copied on save and retrieval so callers cannot mutate stored
// buffers.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore creates an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores or overwrites the artifact bytes.
func (s *InMemoryStore) Save(sessionID, artifactID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[sessionID]; !ok {
		s.artifacts[sessionID] = make(map[string][]byte)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	s.artifacts[sessionID][artifactID] = cp

	return nil
}

// Get returns a copy of the artifact bytes or ErrNotFound.
func (s *InMemoryStore) Get(sessionID, artifactID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.artifacts[sessionID][artifactID]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

// List returns the sorted artifact ids stored for the session.
func (s *InMemoryStore) List(sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.artifacts[sessionID]

	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids, nil
}

// Delete removes the artifact or returns ErrNotFound.
func (s *InMemoryStore) Delete(sessionID, artifactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[sessionID][artifactID]; !ok {
		return ErrNotFound
	}

	delete(s.artifacts[sessionID], artifactID)

	return nil
}
