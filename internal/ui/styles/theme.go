// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application. The persisted
// theme preference ("light" or "dark") overrides terminal detection.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// CONTAINER AND HEADER STYLES
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// TAB BAR STYLES
	// ==========================================================================

	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// ==========================================================================
	// REQUEST LIST STYLES
	// ==========================================================================

	Row         lipgloss.Style
	RowSelected lipgloss.Style
	RowHeader   lipgloss.Style
	Urgent      lipgloss.Style
	UrgencyHigh lipgloss.Style
	Meta        lipgloss.Style

	// ==========================================================================
	// CANCEL WINDOW STYLES
	// ==========================================================================

	WindowOpen   lipgloss.Style
	WindowClosed lipgloss.Style

	// ==========================================================================
	// STATUS BAR AND FEEDBACK STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Success      lipgloss.Style
	Error        lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme creates a theme. pref is the persisted theme preference: "dark"
// or "light" force a mode, anything else falls back to terminal detection.
func NewTheme(pref string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch pref {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	// AdaptiveColor picks variants from lipgloss's own detection; align it
	// with the persisted preference.
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Crimson).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Crimson)

	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Tabs
	t.Tab = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 2)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Crimson).
		Padding(0, 2)

	// Rows
	t.Row = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.RowSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(Overlay)

	t.RowHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.Urgent = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.UrgencyHigh = lipgloss.NewStyle().
		Foreground(Amber)

	t.Meta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Cancel window
	t.WindowOpen = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.WindowClosed = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Crimson)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Success = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.Error = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Crimson)
}
