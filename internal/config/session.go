package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// sessionVersion is bumped when the snapshot layout changes incompatibly.
const sessionVersion = 1

type sessionFile struct {
	Version int             `json:"version"`
	State   selection.State `json:"state"`
}

// FileSessionStore persists the selection state as JSON.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a store writing to path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Path returns the snapshot file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file or one written by another layout
// version reports found=false.
func (s *FileSessionStore) Load(ctx context.Context) (selection.State, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return selection.State{}, false, nil
	}
	if err != nil {
		return selection.State{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return selection.State{}, false, fmt.Errorf("failed to parse session: %w", err)
	}
	if file.Version != sessionVersion {
		return selection.State{}, false, nil
	}
	return file.State, true, nil
}

// Save writes the snapshot, replacing the file atomically.
func (s *FileSessionStore) Save(ctx context.Context, state selection.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.MarshalIndent(sessionFile{Version: sessionVersion, State: state}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}

// Reset removes the snapshot so the next session starts fresh.
func (s *FileSessionStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

var _ secondary.SessionStore = (*FileSessionStore)(nil)
