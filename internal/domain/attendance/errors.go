package attendance

import "errors"

// Attendance domain errors
var (
	// Command errors
	ErrBusy             = errors.New("a command is already in flight")
	ErrServerRejected   = errors.New("the server rejected the command")
	ErrNetwork          = errors.New("could not reach the attendance server")
	ErrNotAuthenticated = errors.New("no employee is signed in")

	// Informational only; never surfaced as a command failure
	ErrLocationUnavailable = errors.New("location unavailable")

	// Surfaced to the display loop only; silent for the user
	ErrStatusFetch = errors.New("status fetch failed")
)
