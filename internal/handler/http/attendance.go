package http

import (
	"net/http"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/clock"
	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
	"github.com/vtabsquare/attendance-agent/internal/handler/http/response"
	"github.com/vtabsquare/attendance-agent/internal/store"
)

// AttendanceHandler is the local control surface for the timer core. It is
// the second command call site next to the terminal button: the portal's
// assistant dispatcher posts here.
type AttendanceHandler interface {
	Display(w http.ResponseWriter, r *http.Request)
	Snapshot(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Toggle(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

// Waker lets the handler request an immediate display refresh, as on
// tab-visibility regain.
type Waker interface {
	Wake()
}

type attendanceHandlerImpl struct {
	ctrl       attendance.Controller
	store      *store.Store
	waker      Waker
	employeeID string
}

func NewAttendanceHandler(ctrl attendance.Controller, st *store.Store, waker Waker, employeeID string) AttendanceHandler {
	return &attendanceHandlerImpl{
		ctrl:       ctrl,
		store:      st,
		waker:      waker,
		employeeID: employeeID,
	}
}

// Display implements AttendanceHandler.
func (h *attendanceHandlerImpl) Display(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Get()
	state := clock.Compute(snap, time.Now())

	resp := attendance.DisplayResponse{
		Display:        clock.FormatHMS(state.DisplaySeconds),
		DisplaySeconds: state.DisplaySeconds,
		IsActive:       state.IsActive,
		InFlight:       h.ctrl.InFlight(),
	}
	if snap != nil {
		resp.StatusCode = string(snap.Status.Code)
		resp.StatusLabel = snap.Status.Label
	}

	response.Success(w, resp)
}

// Snapshot implements AttendanceHandler.
func (h *attendanceHandlerImpl) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Get()
	if snap == nil {
		response.NotFound(w, "No snapshot fetched yet")
		return
	}
	response.Success(w, snap)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ctrl.CheckIn(r.Context(), h.employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Check in successful", snap)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ctrl.CheckOut(r.Context(), h.employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Check out successful", snap)
}

// Toggle implements AttendanceHandler.
func (h *attendanceHandlerImpl) Toggle(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ctrl.Toggle(r.Context(), h.employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Toggle successful", snap)
}

// Refresh implements AttendanceHandler. The portal calls this when a tab
// regains visibility; the loop refetches status immediately.
func (h *attendanceHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	h.waker.Wake()
	response.SuccessWithMessage(w, "Refresh scheduled", nil)
}
