// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for all bloodlink CLI commands.
//
// Colors are automatically disabled for non-TTY output and NO_COLOR.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")). // Red
			MarginBottom(1)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(16)

	// ValueStyle is used for regular values and text
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Off-white

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for warnings, including closing cancel windows
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// UrgentStyle marks critical-urgency requests
	UrgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("199")). // Magenta
			Bold(true)
)

// RenderSeparator renders a horizontal separator line.
func RenderSeparator(width ...int) string {
	w := 70
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return DimStyle.Render(strings.Repeat("-", w))
}

// RenderUrgency renders an urgency value with appropriate color.
func RenderUrgency(urgency string) string {
	switch strings.ToLower(urgency) {
	case "critical":
		return UrgentStyle.Render(strings.ToUpper(urgency))
	case "high":
		return ErrorStyle.Render(urgency)
	case "medium":
		return WarningStyle.Render(urgency)
	default:
		return DimStyle.Render(urgency)
	}
}
