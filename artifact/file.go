package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore persists artifacts on disk under root/<sessionID>/<artifactID>.
// Artifact ids become file names, so ids must not contain path separators.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at the given directory. The
// directory is created if missing.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}

	return &FileStore{root: root}, nil
}

// Save writes the artifact bytes to disk, overwriting any previous version.
func (s *FileStore) Save(sessionID, artifactID string, data []byte) error {
	if err := validateID(sessionID); err != nil {
		return err
	}

	if err := validateID(artifactID); err != nil {
		return err
	}

	dir := filepath.Join(s.root, sessionID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, artifactID), data, 0o600); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	return nil
}

// Get reads the artifact bytes or returns ErrNotFound.
func (s *FileStore) Get(sessionID, artifactID string) ([]byte, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}

	if err := validateID(artifactID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, sessionID, artifactID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	return data, nil
}

// List returns the sorted artifact ids stored for the session.
func (s *FileStore) List(sessionID string) ([]string, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}

	sort.Strings(ids)

	return ids, nil
}

// Delete removes the artifact or returns ErrNotFound.
func (s *FileStore) Delete(sessionID, artifactID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}

	if err := validateID(artifactID); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.root, sessionID, artifactID))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}

	return nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid artifact path element: %q", id)
	}

	return nil
}
