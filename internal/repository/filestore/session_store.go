// Package filestore persists the operator session as a JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
)

// SessionStore writes the persisted session through a temp file and rename,
// so a crash mid-write can never leave a token without its identity.
type SessionStore struct {
	mu   sync.Mutex
	path string
}

// NewSessionStore creates a file-backed session store at path, creating the
// parent directory if needed.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		return nil, fmt.Errorf("session store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session store directory: %w", err)
	}
	return &SessionStore{path: path}, nil
}

// Load reads the persisted session, or port.ErrNoSession when absent.
func (s *SessionStore) Load(_ context.Context) (*domain.PersistedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, port.ErrNoSession
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var record domain.PersistedSession
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	return &record, nil
}

// Save writes the persisted session atomically.
func (s *SessionStore) Save(_ context.Context, session domain.PersistedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	return nil
}

// Clear removes the persisted session. Clearing an absent session is a no-op.
func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

var _ port.SessionStore = (*SessionStore)(nil)
