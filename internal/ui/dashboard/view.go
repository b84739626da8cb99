// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - Rendering for the dashboard.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case StateError:
		b.WriteString(m.theme.Error.Render(m.errMsg) + "\n")
		b.WriteString(m.theme.Meta.Render("Press r to retry.") + "\n")
	default:
		b.WriteString(m.renderContent())
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + m.renderStatusBar())

	return m.theme.App.Render(b.String())
}

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("BloodLink")
	meta := ""
	if u := m.session.User(); u != nil {
		who := u.Name
		if u.BloodGroup != "" {
			who += " (" + u.BloodGroup + ")"
		}
		meta = m.theme.HeaderMeta.Render("  " + who)
	}
	stats := ""
	if m.stats != nil {
		stats = m.theme.HeaderMeta.Render(fmt.Sprintf("  |  %d donation(s), %d live(s) impacted",
			m.stats.TotalDonations, m.stats.LivesImpacted))
	}
	return m.theme.Header.Render(brand + meta + stats)
}

func (m Model) renderTabs() string {
	labels := []string{
		fmt.Sprintf("Open (%d)", len(m.open)),
		fmt.Sprintf("Accepted (%d)", len(m.accepted)),
		"Profile",
	}
	var tabs []string
	for i, label := range labels {
		if Tab(i) == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderContent() string {
	switch m.tab {
	case TabOpen:
		return m.renderOpen()
	case TabAccepted:
		return m.renderAccepted()
	default:
		return m.renderProfile()
	}
}

func (m Model) renderOpen() string {
	if len(m.open) == 0 {
		return m.theme.Meta.Render("No open requests right now.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.theme.RowHeader.Render(fmt.Sprintf("  %-4s %-5s %-8s %-30s %s",
		"BG", "Units", "Urgency", "Hospital", "Distance")) + "\n")

	for i, r := range m.open {
		urgency := r.Urgency
		switch strings.ToLower(r.Urgency) {
		case "critical":
			urgency = m.theme.Urgent.Render(strings.ToUpper(r.Urgency))
		case "high":
			urgency = m.theme.UrgencyHigh.Render(r.Urgency)
		}

		line := fmt.Sprintf("  %-4s %-5d %-8s %-30s %.1f km",
			r.BloodGroup, r.Units, urgency,
			util.PadRight(util.Truncate(r.HospitalName, 30), 30), r.DistanceKm)

		if i == m.cursor {
			b.WriteString(m.theme.RowSelected.Render("> "+line[2:]) + "\n")
		} else {
			b.WriteString(m.theme.Row.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderAccepted() string {
	if len(m.accepted) == 0 {
		return m.theme.Meta.Render("No accepted requests.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.theme.RowHeader.Render(fmt.Sprintf("  %-4s %-5s %-30s %s",
		"BG", "Units", "Hospital", "Cancel window")) + "\n")

	for i, r := range m.accepted {
		window := donor.TimeRemaining(r.AcceptedAt, m.now)
		if donor.CanCancel(r.AcceptedAt, m.now) {
			window = m.theme.WindowOpen.Render(window)
		} else {
			window = m.theme.WindowClosed.Render(window)
		}

		line := fmt.Sprintf("  %-4s %-5d %-30s %s",
			r.BloodGroup, r.Units,
			util.PadRight(util.Truncate(r.HospitalName, 30), 30), window)

		if i == m.cursor {
			b.WriteString(m.theme.RowSelected.Render("> "+line[2:]) + "\n")
		} else {
			b.WriteString(m.theme.Row.Render(line) + "\n")
		}
		if r.HospitalPhone != "" {
			b.WriteString(m.theme.Meta.Render("       Contact: "+r.HospitalPhone) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderProfile() string {
	u := m.session.User()
	if u == nil {
		return m.theme.Meta.Render("Profile unavailable.") + "\n"
	}

	label := func(s string) string { return m.theme.Meta.Render(fmt.Sprintf("  %-12s", s)) }
	var b strings.Builder
	b.WriteString(label("Name") + u.Name + "\n")
	b.WriteString(label("Email") + u.Email + "\n")
	b.WriteString(label("Role") + u.Role + "\n")
	if u.BloodGroup != "" {
		b.WriteString(label("Blood group") + u.BloodGroup + "\n")
	}
	if u.City != "" {
		b.WriteString(label("City") + u.City + "\n")
	}
	availability := "unavailable"
	if u.Available {
		availability = m.theme.Success.Render("available")
	}
	b.WriteString(label("Status") + availability + "\n")
	return b.String()
}

func (m Model) renderStatusBar() string {
	shortcuts := []struct{ key, desc string }{
		{"tab", "switch view"},
		{"enter", "accept"},
		{"d", "decline"},
		{"c", "cancel"},
		{"r", "refresh"},
		{"q", "quit"},
	}
	var parts []string
	for _, s := range shortcuts {
		parts = append(parts, m.theme.ShortcutKey.Render(s.key)+" "+m.theme.ShortcutDesc.Render(s.desc))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}
