package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/qualitasnexus/nexctl/internal/errors"
)

// FileStorage persists session state as a JSON file, 0600, in the nexctl
// home directory.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed session storage at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the session file location.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads the persisted session. A missing file yields (nil, nil).
func (f *FileStorage) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStoreReadFailed, "failed to read session file", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreReadFailed, "failed to parse session file", err)
	}
	return &state, nil
}

// Save writes the persisted session subset.
func (f *FileStorage) Save(state *State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to create session directory", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to encode session", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to write session file", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is a no-op.
func (f *FileStorage) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to remove session file", err)
	}
	return nil
}
