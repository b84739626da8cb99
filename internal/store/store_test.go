// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink-tui/internal/donor"
)

func tempStore(t *testing.T, passphrase string) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "credentials.json"), passphrase)
	require.NoError(t, err)
	return s
}

func TestStore_AuthRoundTrip(t *testing.T) {
	s := tempStore(t, "")

	require.NoError(t, s.SetAuth("t1", "donor"))
	require.NoError(t, s.SetUser(donor.User{ID: "u1", Name: "Ana", Email: "a@b.com", Role: "donor"}))

	// A fresh open over the same file sees the same entries.
	reopened, err := OpenPath(s.Path(), "")
	require.NoError(t, err)
	assert.Equal(t, "t1", reopened.Token())
	assert.Equal(t, "donor", reopened.Role())
	require.NotNil(t, reopened.User())
	assert.Equal(t, "Ana", reopened.User().Name)
}

func TestStore_ClearAuthKeepsPreferences(t *testing.T) {
	s := tempStore(t, "")
	require.NoError(t, s.SetAuth("t1", "donor"))
	require.NoError(t, s.SetUser(donor.User{ID: "u1"}))
	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetSettings(map[string]bool{"notifications": true}))

	require.NoError(t, s.ClearAuth())

	assert.Empty(t, s.Token())
	assert.Empty(t, s.Role())
	assert.Nil(t, s.User())
	assert.Equal(t, "dark", s.Theme())
	var settings map[string]bool
	ok, err := s.Settings(&settings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, settings["notifications"])

	// Clearing again is a no-op with the same end state.
	require.NoError(t, s.ClearAuth())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	s := tempStore(t, "")
	require.NoError(t, s.SetAuth("t1", "donor"))
	require.NoError(t, s.SetTheme("dark"))

	require.NoError(t, s.Clear())

	assert.Empty(t, s.Token())
	assert.Equal(t, DefaultTheme, s.Theme())
	var v map[string]any
	ok, err := s.Settings(&v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ThemeDefault(t *testing.T) {
	s := tempStore(t, "")
	assert.Equal(t, "light", s.Theme())
}

func TestStore_MissingFileStartsEmpty(t *testing.T) {
	s, err := OpenPath(filepath.Join(t.TempDir(), "nope", "credentials.json"), "")
	require.NoError(t, err)
	assert.Empty(t, s.Token())
}

func TestStore_FilePermissions(t *testing.T) {
	s := tempStore(t, "")
	require.NoError(t, s.SetAuth("t1", "donor"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_EncryptedRoundTrip(t *testing.T) {
	s := tempStore(t, "hunter2-correct-horse")
	require.NoError(t, s.SetAuth("t1", "donor"))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), encryptedPrefix))
	assert.NotContains(t, string(raw), "t1", "token must not appear in plaintext")

	reopened, err := OpenPath(s.Path(), "hunter2-correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "t1", reopened.Token())
}

func TestStore_EncryptedWrongPassphrase(t *testing.T) {
	s := tempStore(t, "right")
	require.NoError(t, s.SetAuth("t1", "donor"))

	_, err := OpenPath(s.Path(), "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = OpenPath(s.Path(), "")
	assert.ErrorIs(t, err, ErrStoreEncrypted)
}

func TestStore_Reload(t *testing.T) {
	s := tempStore(t, "")
	require.NoError(t, s.SetAuth("t1", "donor"))

	// Simulate another process logging out.
	other, err := OpenPath(s.Path(), "")
	require.NoError(t, err)
	require.NoError(t, other.ClearAuth())

	require.NoError(t, s.Reload())
	assert.Empty(t, s.Token())
}
