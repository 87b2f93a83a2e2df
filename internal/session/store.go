package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"driver-portal-api-server/internal/models"
)

// Store persists the current admin credential in a single shared slot.
// Save overwrites, Clear is idempotent, and Load is self-healing: an
// expired or malformed stored value is removed as a side effect of
// reading it.
type Store interface {
	Save(token models.AuthToken) error
	Load() (models.AuthToken, bool)
	Clear() error
}

// FileStore keeps the serialized credential in one file, the CLI
// equivalent of the browser's named storage slot.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(token models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Load() (models.AuthToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.AuthToken{}, false
	}

	var token models.AuthToken
	if err := json.Unmarshal(data, &token); err != nil || token.Token == "" {
		os.Remove(s.path)
		return models.AuthToken{}, false
	}
	if token.Expired(time.Now()) {
		os.Remove(s.path)
		return models.AuthToken{}, false
	}
	return token, true
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore holds the credential in memory, for tests.
type MemoryStore struct {
	mu    sync.Mutex
	token *models.AuthToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(token models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &token
	return nil
}

func (s *MemoryStore) Load() (models.AuthToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return models.AuthToken{}, false
	}
	if s.token.Token == "" || s.token.Expired(time.Now()) {
		s.token = nil
		return models.AuthToken{}, false
	}
	return *s.token, true
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	return nil
}
