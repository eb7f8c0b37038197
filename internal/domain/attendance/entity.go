package attendance

import "time"

// CommandKind identifies the direction of an attendance command.
type CommandKind string

const (
	KindCheckIn  CommandKind = "checkin"
	KindCheckOut CommandKind = "checkout"
)

// StatusCode is the server-assigned attendance status for the day.
type StatusCode string

const (
	StatusPresent   StatusCode = "P"
	StatusHalfLeave StatusCode = "HL"
	StatusAbsent    StatusCode = "A"
	StatusWaiting   StatusCode = "W"
)

// StatusInfo pairs a status code with its human-readable label.
type StatusInfo struct {
	Code  StatusCode
	Label string
}

// Timing holds the per-day session timestamps and accumulated seconds.
// TotalSecondsToday excludes the currently-open session's accrual.
// ElapsedSecondsAtFetch carries the open session's seconds at the server's
// clock when the snapshot was produced; it is 0 when no session is active.
type Timing struct {
	CheckinUTC            *time.Time
	CheckoutUTC           *time.Time
	LastSessionStartUTC   *time.Time
	ElapsedSecondsAtFetch int64
	TotalSecondsToday     int64
}

// Snapshot is the authoritative record for one employee's working day.
// A snapshot replaces (never merges with) its predecessor and is treated as
// immutable once stored, so a rollback can restore the prior pointer verbatim.
type Snapshot struct {
	ServerNowUTC    time.Time
	HasRecord       bool
	IsActiveSession bool
	Timing          Timing
	Status          StatusInfo

	// FetchedAtLocal is the local instant the response was received. The
	// display interpolates from this anchor rather than from ServerNowUTC,
	// so clock disagreement between server and agent can only push the
	// display forward, never backward.
	FetchedAtLocal   time.Time
	ServerNowAtFetch time.Time
}

// DisplayState is the derived, never-stored render model.
type DisplayState struct {
	DisplaySeconds int64
	IsActive       bool
}

// GeoSource labels which acquisition pass produced a fix.
type GeoSource string

const (
	GeoSourceHigh GeoSource = "high"
	GeoSourceLow  GeoSource = "low"
)

// GeoFix is a best-effort position attached to a command. A nil fix is a
// valid outcome; location never blocks or fails a command.
type GeoFix struct {
	Lat            float64
	Lng            float64
	AccuracyMeters float64
	Source         GeoSource
}

// CommandIntent is a pending check-in or check-out. At most one intent per
// employee exists at any instant; it lives only for the round trip.
type CommandIntent struct {
	ID               string
	Kind             CommandKind
	RequestedAtLocal time.Time
	Prior            *Snapshot
	Location         *GeoFix
}
