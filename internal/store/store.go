// Package store persists advisor state as JSON documents under a data
// directory: the user profile, the trade journal, and portfolio holdings
// with their transaction log.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileStore serializes access to a single JSON document on disk.
type fileStore struct {
	path string
	mu   sync.Mutex
}

func newFileStore(dataDir, name string) (*fileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &fileStore{path: filepath.Join(dataDir, name)}, nil
}

func (f *fileStore) exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *fileStore) read(v any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return nil
}

func (f *fileStore) write(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}
