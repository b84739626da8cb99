// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package donor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCanCancel_Boundary(t *testing.T) {
	// Inclusive boundary: exactly 5:00 elapsed still permits cancellation.
	assert.True(t, CanCancel(base, base.Add(5*time.Minute)))
	assert.False(t, CanCancel(base, base.Add(5*time.Minute+time.Second)))
	assert.False(t, CanCancel(base, base.Add(5*time.Minute+time.Nanosecond)))
	assert.True(t, CanCancel(base, base))
	assert.True(t, CanCancel(base, base.Add(4*time.Minute+59*time.Second)))
}

func TestTimeRemaining_Format(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"fresh", 0, "5:00 left to cancel"},
		{"one second left", 4*time.Minute + 59*time.Second, "0:01 left to cancel"},
		{"mid window", 2*time.Minute + 30*time.Second, "2:30 left to cancel"},
		{"floor truncation", 2*time.Minute + 30*time.Second + 400*time.Millisecond, "2:29 left to cancel"},
		{"exactly expired", 5 * time.Minute, CannotCancelLabel},
		{"long expired", time.Hour, CannotCancelLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeRemaining(base, base.Add(tt.elapsed)))
		})
	}
}

func TestRemaining_ClockSkewClamp(t *testing.T) {
	// acceptedAt in the future must clamp to the full window, not beyond it,
	// and must never go negative.
	future := base.Add(10 * time.Minute)
	assert.Equal(t, CancelWindow, Remaining(future, base))
	assert.True(t, CanCancel(future, base))
	assert.Equal(t, "5:00 left to cancel", TimeRemaining(future, base))
}

func TestRemaining_Monotonic(t *testing.T) {
	// For a fixed acceptedAt, remaining time never increases as now advances.
	prev := Remaining(base, base)
	for elapsed := time.Second; elapsed <= 6*time.Minute; elapsed += 7 * time.Second {
		cur := Remaining(base, base.Add(elapsed))
		assert.LessOrEqual(t, cur, prev, "remaining increased at elapsed=%v", elapsed)
		assert.GreaterOrEqual(t, cur, time.Duration(0))
		prev = cur
	}
}
