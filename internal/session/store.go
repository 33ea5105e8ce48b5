package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"meterbill-dashboard/internal/domain"
)

// ErrNoCredentials indicates no persisted session exists.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials is the persisted session state: the opaque bearer token and
// the user it belongs to.
type Credentials struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Store persists exactly one set of credentials per client context.
type Store interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Clear() error
}

// FileStore keeps credentials in a mode-0600 JSON file, the CLI analogue
// of the browser's local storage slot.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed credential store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if creds.Token == "" {
		return nil, ErrNoCredentials
	}
	return &creds, nil
}

func (s *FileStore) Save(creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

// MemoryStore keeps credentials in memory only, used by tests and by
// callers that never want persistence.
type MemoryStore struct {
	creds *Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Credentials, error) {
	if s.creds == nil {
		return nil, ErrNoCredentials
	}
	return s.creds, nil
}

func (s *MemoryStore) Save(creds *Credentials) error {
	s.creds = creds
	return nil
}

func (s *MemoryStore) Clear() error {
	s.creds = nil
	return nil
}
