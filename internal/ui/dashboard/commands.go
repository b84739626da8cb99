// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Async commands and messages for the dashboard.
package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloodlink/bloodlink-tui/internal/api"
	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/history"
)

// fetchTimeout bounds every background API call so a stalled request can
// never wedge the UI.
const fetchTimeout = 15 * time.Second

// dataMsg carries a full dashboard refresh.
type dataMsg struct {
	open     []donor.BloodRequest
	accepted []donor.AcceptedRequest
	stats    *donor.DashboardStats
}

// errMsg carries a load failure.
type errMsg struct {
	message string
}

// actionDoneMsg reports a completed respond or cancel action.
type actionDoneMsg struct {
	action    string // history.ActionAccept, ActionDecline, ActionCancel
	requestID string
	err       error
}

// loadData fetches everything the dashboard shows.
func (m Model) loadData() tea.Cmd {
	client := m.session.Client()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		open, err := client.OpenRequests(ctx)
		if err != nil {
			return errMsg{message: api.Message(err, "Could not load open requests.")}
		}
		accepted, err := client.AcceptedRequests(ctx)
		if err != nil {
			return errMsg{message: api.Message(err, "Could not load accepted requests.")}
		}
		// Stats are decoration; show the lists even if they fail.
		stats, _ := client.Dashboard(ctx)

		return dataMsg{open: open, accepted: accepted, stats: stats}
	}
}

// respond accepts or declines the request and records it locally.
func (m Model) respond(requestID string, accept bool) tea.Cmd {
	client := m.session.Client()
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		action := history.ActionAccept
		if !accept {
			action = history.ActionDecline
		}
		if err := client.Respond(ctx, requestID, accept); err != nil {
			return actionDoneMsg{action: action, requestID: requestID, err: err}
		}
		if log != nil {
			_ = log.Record(ctx, history.Entry{RequestID: requestID, Action: action})
		}
		return actionDoneMsg{action: action, requestID: requestID}
	}
}

// cancelAccepted cancels an accepted request and records it locally.
func (m Model) cancelAccepted(requestID string) tea.Cmd {
	client := m.session.Client()
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := client.CancelAccepted(ctx, requestID); err != nil {
			return actionDoneMsg{action: history.ActionCancel, requestID: requestID, err: err}
		}
		if log != nil {
			_ = log.Record(ctx, history.Entry{RequestID: requestID, Action: history.ActionCancel})
		}
		return actionDoneMsg{action: history.ActionCancel, requestID: requestID}
	}
}
