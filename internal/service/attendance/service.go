package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
	"github.com/vtabsquare/attendance-agent/internal/metrics"
	"github.com/vtabsquare/attendance-agent/internal/pkg/utils"
	"github.com/vtabsquare/attendance-agent/internal/store"
)

// Office marks the configured workplace coordinates. Distance to it is
// logged alongside a fix; it never gates a command.
type Office struct {
	Lat float64
	Lng float64
}

type ControllerImpl struct {
	store    *store.Store
	gateway  attendance.Gateway
	locator  attendance.Locator
	timezone string
	office   *Office
	now      func() time.Time
	log      *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}

	// Set when a check-out POST failed and the optimistic stopped state is
	// awaiting server acknowledgement via the next successful refresh.
	pendingAck atomic.Bool
}

func NewController(
	st *store.Store,
	gateway attendance.Gateway,
	locator attendance.Locator,
	timezone string,
	office *Office,
	logger *slog.Logger,
) *ControllerImpl {
	if locator == nil {
		locator = nopLocator{}
	}
	return &ControllerImpl{
		store:    st,
		gateway:  gateway,
		locator:  locator,
		timezone: timezone,
		office:   office,
		now:      time.Now,
		log:      logger.With("component", "controller"),
		inflight: make(map[string]struct{}),
	}
}

type nopLocator struct{}

func (nopLocator) Locate(context.Context) *attendance.GeoFix { return nil }

// CheckIn implements attendance.Controller.
func (c *ControllerImpl) CheckIn(ctx context.Context, employeeID string) (*attendance.Snapshot, error) {
	return c.command(ctx, attendance.KindCheckIn, employeeID)
}

// CheckOut implements attendance.Controller.
func (c *ControllerImpl) CheckOut(ctx context.Context, employeeID string) (*attendance.Snapshot, error) {
	return c.command(ctx, attendance.KindCheckOut, employeeID)
}

// Toggle implements attendance.Controller.
func (c *ControllerImpl) Toggle(ctx context.Context, employeeID string) (*attendance.Snapshot, error) {
	snap := c.store.Get()
	if snap == nil {
		var err error
		snap, err = c.Refresh(ctx, employeeID)
		if err != nil {
			return nil, fmt.Errorf("cannot toggle without a known session state: %w", err)
		}
	}

	if snap.IsActiveSession {
		return c.CheckOut(ctx, employeeID)
	}
	return c.CheckIn(ctx, employeeID)
}

// Refresh implements attendance.Controller. On success it replaces the
// stored snapshot and clears any pending check-out acknowledgement.
func (c *ControllerImpl) Refresh(ctx context.Context, employeeID string) (*attendance.Snapshot, error) {
	if employeeID == "" {
		return nil, attendance.ErrNotAuthenticated
	}

	status, err := c.gateway.Status(ctx, employeeID, c.timezone)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	snap := status.ToSnapshot(c.now())
	c.store.Set(snap)
	c.setActiveGauge(snap)
	if c.pendingAck.CompareAndSwap(true, false) {
		c.log.Info("pending check-out reconciled by refresh",
			"is_active_session", snap.IsActiveSession,
			"total_seconds_today", snap.Timing.TotalSecondsToday)
	}
	metrics.RefreshesTotal.WithLabelValues("ok").Inc()

	return snap, nil
}

// InFlight implements attendance.Controller.
func (c *ControllerImpl) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight) > 0
}

// PendingAck reports whether a stopped state is awaiting server confirmation.
func (c *ControllerImpl) PendingAck() bool {
	return c.pendingAck.Load()
}

func (c *ControllerImpl) command(ctx context.Context, kind attendance.CommandKind, employeeID string) (*attendance.Snapshot, error) {
	if employeeID == "" {
		return nil, attendance.ErrNotAuthenticated
	}

	if !c.acquire(employeeID) {
		metrics.CommandsTotal.WithLabelValues(string(kind), "busy").Inc()
		return nil, fmt.Errorf("%w: employee %s", attendance.ErrBusy, employeeID)
	}
	defer c.release(employeeID)

	started := c.now()
	fix := c.locator.Locate(ctx)
	c.logFix(kind, fix)

	intent := attendance.CommandIntent{
		ID:               uuid.NewString(),
		Kind:             kind,
		RequestedAtLocal: c.now(),
		Prior:            c.store.Get(),
		Location:         fix,
	}
	c.store.ApplyOptimistic(intent)

	req := attendance.CommandRequest{
		EmployeeID: employeeID,
		Timezone:   c.timezone,
	}
	if fix != nil {
		req.Location = &attendance.LocationPayload{
			Lat:       fix.Lat,
			Lng:       fix.Lng,
			AccuracyM: fix.AccuracyMeters,
		}
	}

	var (
		resp *attendance.CommandResponse
		err  error
	)
	switch kind {
	case attendance.KindCheckIn:
		resp, err = c.gateway.CheckIn(ctx, req)
	case attendance.KindCheckOut:
		resp, err = c.gateway.CheckOut(ctx, req)
	default:
		return nil, fmt.Errorf("unknown command kind %q", kind)
	}
	metrics.CommandDuration.WithLabelValues(string(kind)).Observe(c.now().Sub(started).Seconds())

	if err != nil {
		return nil, c.settleFailure(intent, err)
	}

	snap := c.reconcile(intent, resp)
	c.store.Set(snap)
	c.setActiveGauge(snap)
	metrics.CommandsTotal.WithLabelValues(string(kind), "ok").Inc()
	c.log.Info("command settled",
		"intent_id", intent.ID,
		"kind", string(kind),
		"total_seconds_today", snap.Timing.TotalSecondsToday)

	return snap, nil
}

// settleFailure applies the per-kind failure contract: a failed check-in
// restores the prior snapshot, a failed check-out keeps the optimistic
// stopped state. A user who pressed stop must never re-see a running timer
// because of a transient error.
func (c *ControllerImpl) settleFailure(intent attendance.CommandIntent, cause error) error {
	switch intent.Kind {
	case attendance.KindCheckIn:
		c.store.Rollback(intent)
		metrics.RollbacksTotal.Inc()
		metrics.CommandsTotal.WithLabelValues(string(intent.Kind), outcome(cause)).Inc()
		c.log.Warn("check-in failed, rolled back", "intent_id", intent.ID, "error", cause)
		return fmt.Errorf("check-in failed: %w", cause)

	case attendance.KindCheckOut:
		c.pendingAck.Store(true)
		metrics.CommandsTotal.WithLabelValues(string(intent.Kind), outcome(cause)).Inc()
		c.log.Warn("check-out failed, keeping optimistic stop until next refresh",
			"intent_id", intent.ID, "error", cause)
		return fmt.Errorf("check-out pending server acknowledgement: %w", cause)
	}
	return cause
}

// reconcile folds the server's command response into a fresh snapshot. The
// local interpolation anchor stays at the intent's request instant, so the
// display continues from the optimistic value without a backward jump, and
// the stored total never decreases across a command.
func (c *ControllerImpl) reconcile(intent attendance.CommandIntent, resp *attendance.CommandResponse) *attendance.Snapshot {
	optimistic := c.store.Get()

	snap := &attendance.Snapshot{
		ServerNowUTC: resp.ServerNowUTC,
		HasRecord:    true,
		Status: attendance.StatusInfo{
			Code: attendance.StatusCode(resp.StatusCode),
		},
		FetchedAtLocal:   intent.RequestedAtLocal,
		ServerNowAtFetch: resp.ServerNowUTC,
	}
	if intent.Prior != nil && string(snap.Status.Code) == "" {
		snap.Status = intent.Prior.Status
	}

	floor := resp.TotalSecondsToday
	if intent.Prior != nil && intent.Prior.Timing.TotalSecondsToday > floor {
		floor = intent.Prior.Timing.TotalSecondsToday
	}

	switch intent.Kind {
	case attendance.KindCheckIn:
		start := resp.CheckinUTC
		if start == nil {
			utc := intent.RequestedAtLocal.UTC()
			start = &utc
		}
		snap.IsActiveSession = true
		snap.Timing = attendance.Timing{
			CheckinUTC:            start,
			LastSessionStartUTC:   start,
			ElapsedSecondsAtFetch: 0,
			TotalSecondsToday:     floor,
		}

	case attendance.KindCheckOut:
		if optimistic != nil && optimistic.Timing.TotalSecondsToday > floor {
			floor = optimistic.Timing.TotalSecondsToday
		}
		snap.IsActiveSession = false
		snap.Timing = attendance.Timing{
			CheckoutUTC:           resp.CheckoutUTC,
			ElapsedSecondsAtFetch: 0,
			TotalSecondsToday:     floor,
		}
		if intent.Prior != nil {
			snap.Timing.CheckinUTC = intent.Prior.Timing.CheckinUTC
		}
	}

	return snap
}

func (c *ControllerImpl) logFix(kind attendance.CommandKind, fix *attendance.GeoFix) {
	if fix == nil {
		c.log.Debug("command proceeding without location", "kind", string(kind))
		return
	}
	attrs := []any{
		"kind", string(kind),
		"source", string(fix.Source),
		"accuracy_m", fix.AccuracyMeters,
	}
	if c.office != nil {
		attrs = append(attrs, "office_distance_m",
			utils.HaversineDistanceMeters(fix.Lat, fix.Lng, c.office.Lat, c.office.Lng))
	}
	c.log.Debug("location captured", attrs...)
}

func (c *ControllerImpl) acquire(employeeID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[employeeID]; busy {
		return false
	}
	c.inflight[employeeID] = struct{}{}
	return true
}

func (c *ControllerImpl) release(employeeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, employeeID)
}

func (c *ControllerImpl) setActiveGauge(snap *attendance.Snapshot) {
	if snap != nil && snap.IsActiveSession {
		metrics.ActiveSession.Set(1)
	} else {
		metrics.ActiveSession.Set(0)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, attendance.ErrNetwork):
		return "network"
	default:
		return "rejected"
	}
}
