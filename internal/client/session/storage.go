package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Storage persists session entries between process runs. Save replaces
// the whole entry set, so token and user always land together.
type Storage interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
}

// FileStorage keeps the entries as a JSON object in a single file.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed Storage at the given path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the entry set. A missing file is an empty session.
func (fs *FileStorage) Load() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return entries, nil
}

// Save writes the entry set, creating parent directories as needed. The
// file is mode 0600 since it holds a live credential.
func (fs *FileStorage) Save(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating session dir: %w", err)
		}
	}

	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
