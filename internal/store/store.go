// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists the client's credential and preference entries:
// token, role, user profile, settings, and theme.
//
// Entries live in a single JSON file under the bloodlink data directory,
// written atomically with 0600 permissions. An optional passphrase enables
// AES-256-GCM encryption of the whole file at rest.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/util"
)

// DefaultTheme is used when no theme entry has been persisted.
const DefaultTheme = "light"

// credentialsFile is the file name under the data directory.
const credentialsFile = "credentials.json"

// entries is the on-disk shape. Field names match the persisted key names.
type entries struct {
	Token    string          `json:"token,omitempty"`
	Role     string          `json:"role,omitempty"`
	User     *donor.User     `json:"user,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
	Theme    string          `json:"theme,omitempty"`
}

// Store is the persistent key-value store. All methods are safe for
// concurrent use; every mutation is persisted before it returns.
type Store struct {
	mu   sync.Mutex
	path string
	key  []byte // non-nil enables encryption at rest
	data entries
}

// Dir returns the bloodlink data directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".bloodlink"), nil
}

// Open loads the store from the default location. A missing file is not an
// error: the store starts empty.
func Open(passphrase string) (*Store, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, credentialsFile), passphrase)
}

// OpenPath loads the store from an explicit file path.
func OpenPath(path string, passphrase string) (*Store, error) {
	s := &Store{path: path}
	if passphrase != "" {
		s.key = []byte(passphrase)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	plain, err := maybeDecrypt(raw, s.key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plain, &s.data); err != nil {
		return fmt.Errorf("failed to decode credentials file: %w", err)
	}
	return nil
}

// persist writes the current entries to disk. Callers must hold s.mu.
// SECURITY: 0600 - the token is a live credential.
func (s *Store) persist() error {
	plain, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	out := plain
	if s.key != nil {
		if out, err = encrypt(plain, s.key); err != nil {
			return err
		}
	}
	return util.AtomicWriteFile(s.path, out, 0600)
}

// =============================================================================
// AUTH ENTRIES
// =============================================================================

// Token returns the persisted bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

// Role returns the persisted account role.
func (s *Store) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Role
}

// User returns the persisted profile, or nil when none is stored.
func (s *Store) User() *donor.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.User == nil {
		return nil
	}
	u := *s.data.User
	return &u
}

// SetAuth persists token and role together.
func (s *Store) SetAuth(token, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	s.data.Role = role
	return s.persist()
}

// SetUser persists the profile record.
func (s *Store) SetUser(u donor.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.User = &u
	return s.persist()
}

// ClearAuth removes token, role, and user, leaving settings and theme
// untouched. Clearing an already-empty store is a no-op with the same end
// state.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = ""
	s.data.Role = ""
	s.data.User = nil
	return s.persist()
}

// =============================================================================
// PREFERENCE ENTRIES
// =============================================================================

// Theme returns the persisted theme, defaulting to DefaultTheme.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Theme == "" {
		return DefaultTheme
	}
	return s.data.Theme
}

// SetTheme persists the theme entry.
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Theme = theme
	return s.persist()
}

// Settings decodes the persisted settings entry into v. Returns false when
// no settings have been stored.
func (s *Store) Settings(v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data.Settings) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(s.data.Settings, v); err != nil {
		return false, fmt.Errorf("failed to decode settings: %w", err)
	}
	return true, nil
}

// SetSettings persists the settings entry.
func (s *Store) SetSettings(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings = raw
	return s.persist()
}

// Clear removes every entry, auth and preferences alike.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = entries{}
	return s.persist()
}
