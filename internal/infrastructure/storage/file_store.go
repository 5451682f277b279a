package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// FileStore persists keys as a single JSON object in one file. Writes go
// through a temp file and rename so a crash never leaves a torn document.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a file-backed store at path
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Get returns the value stored under key, or ErrKeyNotFound
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key, rewriting the whole document
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal store document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return doc, nil
}
