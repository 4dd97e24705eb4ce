package core

// ArtifactStore persists rendered run outputs (report bodies, email payloads)
// scoped by session identifier. Implementations must be thread-safe. Short
// method names (Save/Get/List/Delete) mirror the other store interfaces.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
