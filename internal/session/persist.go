package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/preston-bernstein/pickem-client/internal/domain/users"
)

// Credentials are what survives a restart. Token and user are written and
// cleared together.
type Credentials struct {
	Token string      `json:"token"`
	User  *users.User `json:"user,omitempty"`
}

// Persister stores credentials between runs.
type Persister interface {
	Load() (Credentials, bool, error)
	Save(Credentials) error
	Clear() error
}

// FileStore keeps credentials in a single JSON file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore constructs a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path exposes the backing file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load returns ok=false when nothing is stored.
func (f *FileStore) Load() (Credentials, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("session file %s: %w", f.path, err)
	}
	return creds, true, nil
}

// Save writes atomically through a temp file.
func (f *FileStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear removes the file; a missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps credentials in memory. Useful for tests and the serve command
// when no session file is wanted.
type MemoryStore struct {
	mu    sync.Mutex
	creds *Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Credentials, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return Credentials{}, false, nil
	}
	return *m.creds, true, nil
}

func (m *MemoryStore) Save(creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = &creds
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	return nil
}
