// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the donor dashboard TUI: open requests,
// accepted requests with live cancellation countdowns, and the profile
// summary.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/history"
	"github.com/bloodlink/bloodlink-tui/internal/session"
	"github.com/bloodlink/bloodlink-tui/internal/ui/styles"
)

// Tab identifies a dashboard view.
type Tab int

const (
	TabOpen Tab = iota
	TabAccepted
	TabProfile
)

// State represents the dashboard's loading state.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

// Model is the Bubble Tea model for the donor dashboard.
type Model struct {
	// Collaborators
	session *session.Session
	log     *history.Log

	// Styling
	theme *styles.Theme

	// State
	state  State
	tab    Tab
	cursor int
	errMsg string
	status string

	// Dimensions
	width  int
	height int

	// Countdown clock, advanced by one-second ticks
	now time.Time

	// Data
	open     []donor.BloodRequest
	accepted []donor.AcceptedRequest
	stats    *donor.DashboardStats

	// UI components
	spinner spinner.Model
	keys    KeyMap
}

// New creates a dashboard model over an authenticated session.
func New(s *session.Session, log *history.Log, theme *styles.Theme) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = theme.Spinner

	return Model{
		session: s,
		log:     log,
		theme:   theme,
		state:   StateLoading,
		now:     time.Now(),
		spinner: sp,
		keys:    DefaultKeyMap(),
	}
}

// Init starts data loading and the countdown clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadData(), donor.CountdownTick())
}

// rows returns the number of selectable rows on the current tab.
func (m Model) rows() int {
	switch m.tab {
	case TabOpen:
		return len(m.open)
	case TabAccepted:
		return len(m.accepted)
	default:
		return 0
	}
}

// clampCursor keeps the selection inside the current tab's rows.
func (m *Model) clampCursor() {
	if n := m.rows(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
