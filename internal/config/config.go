// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// bloodlink client.
//
// Configuration comes from ~/.bloodlink/config.toml with built-in defaults,
// then environment variable overrides (BLOODLINK_*) applied last.
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete bloodlink client configuration.
type Config struct {
	// APIURL is the base URL of the BloodLink backend API.
	APIURL string `toml:"api_url"`
	// TimeoutSecs is the per-request HTTP timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the retry budget for transient API failures.
	MaxRetries int `toml:"max_retries"`
	// LogLevel is the minimum log level: trace, debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// StoreKey enables credential-store encryption at rest. It is accepted
	// from the environment only and never written back to the config file.
	StoreKey string `toml:"-"`
}

// envOverrides mirrors the fields that may be overridden from the
// environment.
type envOverrides struct {
	APIURL      string `env:"BLOODLINK_API_URL"`
	TimeoutSecs int    `env:"BLOODLINK_TIMEOUT"`
	LogLevel    string `env:"BLOODLINK_LOG_LEVEL"`
	StoreKey    string `env:"BLOODLINK_STORE_KEY"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		APIURL:      "http://localhost:5000/api",
		TimeoutSecs: 30,
		MaxRetries:  3,
		LogLevel:    "info",
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the bloodlink configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".bloodlink"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when the file is absent, then applies environment overrides and
// validates.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config file.
// SECURITY: 0600 - the file lives next to the credential store.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to an explicit file path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# bloodlink configuration file")
	fmt.Fprintln(f, "")

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// applyEnvOverrides layers BLOODLINK_* environment variables on top of the
// file values.
func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process(context.Background(), &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.APIURL != "" {
		c.APIURL = env.APIURL
	}
	if env.TimeoutSecs != 0 {
		c.TimeoutSecs = env.TimeoutSecs
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.StoreKey != "" {
		c.StoreKey = env.StoreKey
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()
	if c.APIURL == "" {
		c.APIURL = defaults.APIURL
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = defaults.TimeoutSecs
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate validates the configuration and returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url: %q is not an absolute URL", c.APIURL)
	}
	if c.TimeoutSecs < 1 || c.TimeoutSecs > 300 {
		return fmt.Errorf("timeout_secs: must be 1-300, got %d", c.TimeoutSecs)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries: must be 0-10, got %d", c.MaxRetries)
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level: invalid level %q", c.LogLevel)
	}
	return nil
}

// =============================================================================
// GLOBAL INSTANCE (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
