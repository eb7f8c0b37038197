package attendance

import (
	"time"

	"github.com/vtabsquare/attendance-agent/internal/pkg/validator"
)

// ========================================
// ATTENDANCE WIRE DTOs (server API v2)
// ========================================

// LocationPayload is the optional position attached to a command.
type LocationPayload struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AccuracyM float64 `json:"accuracy_m"`
}

// CommandRequest is the body of POST /api/v2/attendance/checkin|checkout.
type CommandRequest struct {
	EmployeeID string           `json:"employee_id"`
	Timezone   string           `json:"timezone"`
	Location   *LocationPayload `json:"location,omitempty"`
}

func (r *CommandRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Timezone) {
		errs = append(errs, validator.ValidationError{
			Field:   "timezone",
			Message: "timezone is required",
		})
	}

	if r.Location != nil {
		if r.Location.Lat < -90 || r.Location.Lat > 90 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lat",
				Message: "lat must be between -90 and 90",
			})
		}
		if r.Location.Lng < -180 || r.Location.Lng > 180 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lng",
				Message: "lng must be between -180 and 180",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// TimingPayload mirrors the timing block of the status response.
type TimingPayload struct {
	CheckinUTC          *time.Time `json:"checkin_utc,omitempty"`
	CheckoutUTC         *time.Time `json:"checkout_utc,omitempty"`
	LastSessionStartUTC *time.Time `json:"last_session_start_utc,omitempty"`
	ElapsedSeconds      int64      `json:"elapsed_seconds"`
	TotalSecondsToday   int64      `json:"total_seconds_today"`
}

// StatusPayload mirrors the status block of the status response.
type StatusPayload struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// StatusResponse is the body of GET /api/v2/attendance/status/{employeeId}.
type StatusResponse struct {
	Success         bool          `json:"success"`
	ServerNowUTC    time.Time     `json:"server_now_utc"`
	HasRecord       bool          `json:"has_record"`
	IsActiveSession bool          `json:"is_active_session"`
	Timing          TimingPayload `json:"timing"`
	Status          StatusPayload `json:"status"`
}

// ToSnapshot converts a status response into an authoritative snapshot,
// anchored at the local instant the response was received.
func (r *StatusResponse) ToSnapshot(fetchedAt time.Time) *Snapshot {
	elapsed := r.Timing.ElapsedSeconds
	if !r.IsActiveSession {
		elapsed = 0
	}

	return &Snapshot{
		ServerNowUTC:    r.ServerNowUTC,
		HasRecord:       r.HasRecord,
		IsActiveSession: r.IsActiveSession,
		Timing: Timing{
			CheckinUTC:            r.Timing.CheckinUTC,
			CheckoutUTC:           r.Timing.CheckoutUTC,
			LastSessionStartUTC:   r.Timing.LastSessionStartUTC,
			ElapsedSecondsAtFetch: elapsed,
			TotalSecondsToday:     max(0, r.Timing.TotalSecondsToday),
		},
		Status: StatusInfo{
			Code:  StatusCode(r.Status.Code),
			Label: r.Status.Label,
		},
		FetchedAtLocal:   fetchedAt,
		ServerNowAtFetch: r.ServerNowUTC,
	}
}

// CommandResponse is the body of a successful checkin/checkout POST.
type CommandResponse struct {
	Success           bool       `json:"success"`
	ServerNowUTC      time.Time  `json:"server_now_utc"`
	CheckinUTC        *time.Time `json:"checkin_utc,omitempty"`
	CheckoutUTC       *time.Time `json:"checkout_utc,omitempty"`
	TotalSecondsToday int64      `json:"total_seconds_today"`
	StatusCode        string     `json:"status_code"`
}

// DisplayResponse is what the control API reports to its callers.
type DisplayResponse struct {
	Display        string `json:"display"`
	DisplaySeconds int64  `json:"display_seconds"`
	IsActive       bool   `json:"is_active"`
	InFlight       bool   `json:"in_flight"`
	StatusCode     string `json:"status_code,omitempty"`
	StatusLabel    string `json:"status_label,omitempty"`
}
