// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - Message handling for the dashboard.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloodlink/bloodlink-tui/internal/api"
	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/history"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.Width = msg.Width
		m.theme.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case donor.CountdownTickMsg:
		// Advance the countdown clock and re-arm the tick. Window checks
		// recompute from this wall-clock sample, so a suspended laptop
		// snaps to the correct remaining time on resume.
		m.now = msg.Now
		return m, donor.CountdownTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dataMsg:
		m.state = StateReady
		m.errMsg = ""
		m.open = msg.open
		m.accepted = msg.accepted
		m.stats = msg.stats
		m.clampCursor()
		return m, nil

	case errMsg:
		m.state = StateError
		m.errMsg = msg.message
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = m.theme.Error.Render(api.Message(msg.err, "Action failed. Please refresh."))
			return m, nil
		}
		switch msg.action {
		case history.ActionAccept:
			m.status = m.theme.Success.Render("Accepted " + msg.requestID + ". You have 5 minutes to cancel.")
		case history.ActionDecline:
			m.status = "Declined " + msg.requestID + "."
		case history.ActionCancel:
			m.status = m.theme.Success.Render("Cancelled acceptance of " + msg.requestID + ".")
		}
		// Reload so the lists reflect the action.
		m.state = StateLoading
		return m, m.loadData()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % 3
		m.cursor = 0
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + 2) % 3
		m.cursor = 0
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.state = StateLoading
		m.status = ""
		return m, m.loadData()

	case key.Matches(msg, m.keys.Accept):
		if m.tab == TabOpen && m.cursor < len(m.open) {
			return m, m.respond(m.open[m.cursor].ID, true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Decline):
		if m.tab == TabOpen && m.cursor < len(m.open) {
			return m, m.respond(m.open[m.cursor].ID, false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.tab != TabAccepted || m.cursor >= len(m.accepted) {
			return m, nil
		}
		req := m.accepted[m.cursor]
		// The window gate is advisory; the backend decides authoritatively.
		if !donor.CanCancel(req.AcceptedAt, m.now) {
			m.status = m.theme.Error.Render("The 5-minute cancellation window has passed.")
			return m, nil
		}
		return m, m.cancelAccepted(req.ID)
	}

	return m, nil
}
