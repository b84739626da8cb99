// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().APIURL, cfg.APIURL)
	assert.Equal(t, 30, cfg.TimeoutSecs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromPath_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_url = \"https://api.example.org/v1\"\ntimeout_secs = 10\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.org/v1", cfg.APIURL)
	assert.Equal(t, 10, cfg.TimeoutSecs)
	// Unset fields keep their defaults.
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("BLOODLINK_API_URL", "https://override.example.org")
	t.Setenv("BLOODLINK_LOG_LEVEL", "debug")
	t.Setenv("BLOODLINK_STORE_KEY", "secret-key")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.org", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "secret-key", cfg.StoreKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.APIURL = "not-a-url"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.TimeoutSecs = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.LogLevel = "verbose"
	assert.Error(t, bad.Validate())
}

func TestSaveToPath_StoreKeyNotPersisted(t *testing.T) {
	// StoreKey carries toml:"-"; saving a config must not leak the
	// passphrase to disk.
	cfg := Default()
	cfg.StoreKey = "super-secret"

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.APIURL = "https://api.example.org/v2"
	cfg.MaxRetries = 5

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.APIURL, loaded.APIURL)
	assert.Equal(t, 5, loaded.MaxRetries)
}
