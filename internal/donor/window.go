// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package donor

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CancelWindow is how long after accepting a request a donor may still back
// out. Hospitals plan pickups against accepted responses, so the window is
// deliberately short.
const CancelWindow = 5 * time.Minute

// CannotCancelLabel is the fixed label shown once the window has closed.
const CannotCancelLabel = "Cannot cancel"

// Remaining returns the cancellation time left at instant now, clamped to
// [0, CancelWindow]. A future acceptedAt (clock skew between client and
// backend) yields the full window, never more and never a negative value.
func Remaining(acceptedAt, now time.Time) time.Duration {
	elapsed := now.Sub(acceptedAt)
	if elapsed < 0 {
		return CancelWindow
	}
	remaining := CancelWindow - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanCancel reports whether the donor may still cancel a request accepted at
// acceptedAt, evaluated at instant now. The boundary is inclusive: exactly
// CancelWindow elapsed still permits cancellation.
func CanCancel(acceptedAt, now time.Time) bool {
	return now.Sub(acceptedAt) <= CancelWindow
}

// TimeRemaining formats the countdown for display: "M:SS left to cancel"
// with seconds zero-padded, floor-truncated from the remaining duration.
// Once nothing remains it returns CannotCancelLabel.
func TimeRemaining(acceptedAt, now time.Time) string {
	remaining := Remaining(acceptedAt, now)
	if remaining <= 0 {
		return CannotCancelLabel
	}
	secs := int(remaining / time.Second)
	return fmt.Sprintf("%d:%02d left to cancel", secs/60, secs%60)
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// CountdownTickMsg is sent once per second while a countdown view is
// visible, carrying the evaluation instant for this frame.
type CountdownTickMsg struct {
	Now time.Time
}

// CountdownTick returns a command that fires a CountdownTickMsg after one
// second. The displaying model re-issues it on every tick and simply stops
// re-issuing when torn down, which cancels the recurring timer.
func CountdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return CountdownTickMsg{Now: t}
	})
}
