package response

import (
	"errors"
	"net/http"

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
	"github.com/vtabsquare/attendance-agent/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, attendance.ErrBusy):
		Conflict(w, "A command is already in flight")
	case errors.Is(err, attendance.ErrNotAuthenticated):
		Unauthorized(w, "No employee is signed in")
	case errors.Is(err, attendance.ErrServerRejected):
		BadGateway(w, err.Error())
	case errors.Is(err, attendance.ErrNetwork):
		BadGateway(w, "Could not reach the attendance server")
	case errors.Is(err, attendance.ErrStatusFetch):
		BadGateway(w, "Status is currently unavailable")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
