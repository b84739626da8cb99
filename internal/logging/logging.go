// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides a singleton structured logger backed by zerolog.
//
// The TUI owns stdout, so logs go to a file under the bloodlink data
// directory by default. Initialise once at startup with Init, then retrieve
// anywhere with Get.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Output is the writer logs are sent to. When nil, a log file under the
	// bloodlink data directory is opened (falling back to stderr).
	Output io.Writer
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init initialises the singleton logger. Safe to call multiple times - only
// the first call has any effect.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = defaultOutput()
		}

		lvl := parseLevel(opts.Level)

		instance = zerolog.New(out).
			Level(lvl).
			With().
			Timestamp().
			Logger()

		initialized = true
	})
	return instance
}

// Get returns the singleton logger, initialising it with defaults when Init
// has not been called yet. Background operations log through this without
// caring whether the CLI set a level first.
func Get() zerolog.Logger {
	if !initialized {
		return Init(Options{})
	}
	return instance
}

// Reset tears down the singleton so the next Init call rebuilds it.
// Intended for use in tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

// defaultOutput opens ~/.bloodlink/bloodlink.log, creating the directory if
// needed. Falls back to stderr when the home directory is unavailable.
func defaultOutput() io.Writer {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Stderr
	}
	dir := filepath.Join(home, ".bloodlink")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return os.Stderr
	}
	f, err := os.OpenFile(filepath.Join(dir, "bloodlink.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return os.Stderr
	}
	return f
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
