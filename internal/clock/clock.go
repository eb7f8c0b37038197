// Package clock computes the displayed working time from an authoritative
// snapshot plus local wall-clock drift. Pure functions, no I/O.
package clock

import (
	"fmt"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
)

// Compute derives the display state for a local instant.
//
// When a session is active the display is anchored at the snapshot's
// FetchedAtLocal, so the value can only move forward as local time advances;
// a fresh snapshot may snap it further forward but never back. When no
// session is active the display is frozen at the accumulated total.
func Compute(s *attendance.Snapshot, localNow time.Time) attendance.DisplayState {
	if s == nil {
		return attendance.DisplayState{}
	}

	if !s.IsActiveSession {
		return attendance.DisplayState{
			DisplaySeconds: s.Timing.TotalSecondsToday,
			IsActive:       false,
		}
	}

	drift := int64(localNow.Sub(s.FetchedAtLocal) / time.Second)
	if drift < 0 {
		drift = 0
	}

	return attendance.DisplayState{
		DisplaySeconds: s.Timing.TotalSecondsToday + s.Timing.ElapsedSecondsAtFetch + drift,
		IsActive:       true,
	}
}

// FormatHMS renders seconds as zero-padded "HH:MM:SS". Hours may exceed 24
// for degenerate inputs; negative values clamp to zero.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDuration renders seconds as a compact "Xh Ym".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", h, m)
}
