// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/session"
	"github.com/bloodlink/bloodlink-tui/internal/store"
	"github.com/bloodlink/bloodlink-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	st, err := store.OpenPath(filepath.Join(t.TempDir(), "credentials.json"), "")
	require.NoError(t, err)
	require.NoError(t, st.SetAuth("t1", "donor"))
	require.NoError(t, st.SetUser(donor.User{Name: "Ana", Email: "ana@example.org", Role: "donor", BloodGroup: "O+"}))

	s := session.New(st, "http://unused.invalid")
	return New(s, nil, styles.NewTheme("dark"))
}

func applyData(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestUpdate_DataMsgReadies(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, StateLoading, m.state)

	m = applyData(m, dataMsg{
		open: []donor.BloodRequest{{ID: "r1", BloodGroup: "O+", Units: 2, Urgency: "high", HospitalName: "Santa Maria"}},
	})
	assert.Equal(t, StateReady, m.state)
	assert.Len(t, m.open, 1)
}

func TestUpdate_CountdownTickAdvancesClock(t *testing.T) {
	m := newTestModel(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	updated, cmd := m.Update(donor.CountdownTickMsg{Now: at})
	m = updated.(Model)
	assert.Equal(t, at, m.now)
	assert.NotNil(t, cmd, "the tick must re-arm itself")
}

func TestView_AcceptedShowsCountdown(t *testing.T) {
	m := newTestModel(t)
	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m = applyData(m, dataMsg{accepted: []donor.AcceptedRequest{
		{ID: "r1", BloodGroup: "O+", Units: 1, HospitalName: "Santa Maria", AcceptedAt: accepted},
	}})
	m = applyData(m, donor.CountdownTickMsg{Now: accepted.Add(2 * time.Minute)})
	m.tab = TabAccepted

	view := m.View()
	assert.Contains(t, view, "3:00 left to cancel")
}

func TestView_AcceptedShowsCannotCancel(t *testing.T) {
	m := newTestModel(t)
	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m = applyData(m, dataMsg{accepted: []donor.AcceptedRequest{
		{ID: "r1", BloodGroup: "O+", Units: 1, HospitalName: "Santa Maria", AcceptedAt: accepted},
	}})
	m = applyData(m, donor.CountdownTickMsg{Now: accepted.Add(6 * time.Minute)})
	m.tab = TabAccepted

	assert.Contains(t, m.View(), donor.CannotCancelLabel)
}

func TestHandleKey_CancelGatedByWindow(t *testing.T) {
	m := newTestModel(t)
	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m = applyData(m, dataMsg{accepted: []donor.AcceptedRequest{
		{ID: "r1", AcceptedAt: accepted},
	}})
	m.tab = TabAccepted
	m = applyData(m, donor.CountdownTickMsg{Now: accepted.Add(10 * time.Minute)})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m = updated.(Model)
	assert.Nil(t, cmd, "no cancel command after the window closed")
	assert.Contains(t, m.status, "window has passed")
}

func TestHandleKey_CancelInsideWindowIssuesCommand(t *testing.T) {
	m := newTestModel(t)
	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m = applyData(m, dataMsg{accepted: []donor.AcceptedRequest{
		{ID: "r1", AcceptedAt: accepted},
	}})
	m.tab = TabAccepted
	m = applyData(m, donor.CountdownTickMsg{Now: accepted.Add(time.Minute)})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.NotNil(t, cmd, "cancel inside the window reaches the backend")
}

func TestHandleKey_TabCycles(t *testing.T) {
	m := newTestModel(t)
	m = applyData(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabAccepted, m.tab)
	m = applyData(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabProfile, m.tab)
	m = applyData(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabOpen, m.tab)
}

func TestView_ProfileTab(t *testing.T) {
	m := newTestModel(t)
	m.state = StateReady
	m.tab = TabProfile

	view := m.View()
	assert.Contains(t, view, "Ana")
	assert.Contains(t, view, "ana@example.org")
	assert.Contains(t, view, "O+")
}
