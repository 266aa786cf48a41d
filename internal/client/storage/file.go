// Package storage persists the client's token pair between runs.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/isaidso/auth/internal/common"
)

// Pair is the persisted token pair.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store reads and writes the current token pair. Load returns
// common.ErrorNotFound when nothing is stored.
type Store interface {
	Load() (*Pair, error)
	Save(pair *Pair) error
	Clear() error
}

// FileStore keeps the pair in a mode-0600 JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return nil, common.ErrorNotFound
	}
	return &pair, nil
}

func (s *FileStore) Save(pair *Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
