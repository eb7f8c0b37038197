// Package display runs the two render cadences of the attendance core: a
// 1 Hz visual tick that interpolates from the last snapshot without I/O,
// and a 60 s authoritative refresh. It additionally refreshes on wake
// (visibility regain), on matching attendance-changed events, and on store
// invalidation.
package display

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/clock"
	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
	"github.com/vtabsquare/attendance-agent/internal/metrics"
	"github.com/vtabsquare/attendance-agent/internal/store"
)

const (
	DefaultTickInterval    = time.Second
	DefaultRefreshInterval = 60 * time.Second

	refreshTimeout = 10 * time.Second
)

// Config wires a Loop.
type Config struct {
	Store      *store.Store
	Controller attendance.Controller
	Renderer   Renderer
	EmployeeID string

	TickInterval    time.Duration
	RefreshInterval time.Duration

	Logger *slog.Logger
}

// Loop owns both cadences; no other component may register a ticker.
type Loop struct {
	store      *store.Store
	ctrl       attendance.Controller
	renderer   Renderer
	employeeID string

	tickEvery    time.Duration
	refreshEvery time.Duration

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
	log       *slog.Logger

	mu        sync.Mutex
	lastText  string
	lastBusy  bool
	lastLabel string
	painted   bool
}

func NewLoop(cfg Config) *Loop {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		store:        cfg.Store,
		ctrl:         cfg.Controller,
		renderer:     cfg.Renderer,
		employeeID:   cfg.EmployeeID,
		tickEvery:    tick,
		refreshEvery: refresh,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		now:          time.Now,
		log:          logger.With("component", "display"),
	}
}

// Run drives the display until the context is canceled or Close is called.
// It performs an initial authoritative refresh before entering the cadence.
func (l *Loop) Run(ctx context.Context) error {
	tick := time.NewTicker(l.tickEvery)
	defer tick.Stop()
	refresh := time.NewTicker(l.refreshEvery)
	defer refresh.Stop()

	l.refresh(ctx)
	l.repaint(true)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-tick.C:
			l.repaint(false)
		case <-refresh.C:
			l.refresh(ctx)
		case <-l.wake:
			l.refresh(ctx)
		case <-l.store.Invalidated():
			l.refresh(ctx)
		case <-l.store.Changed():
			l.repaint(true)
		}
	}
}

// Wake requests an immediate authoritative refresh, as on tab-visibility
// regain. Safe to call from any goroutine; coalesces while one is pending.
func (l *Loop) Wake() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// HandleAttendanceChanged is the exported socket-event handler. Events for
// other employees are ignored.
func (l *Loop) HandleAttendanceChanged(employeeID string) {
	if employeeID != l.employeeID {
		return
	}
	l.log.Debug("attendance changed remotely, refreshing")
	l.store.Invalidate()
	l.Wake()
}

// Close stops the loop. Idempotent; both cadences stop and no further
// repaints occur once Run returns.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// refresh fetches authoritative status. Failures are deliberately silent
// for the user: the last snapshot keeps driving the display.
func (l *Loop) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if _, err := l.ctrl.Refresh(ctx, l.employeeID); err != nil {
		if !errors.Is(err, context.Canceled) {
			l.log.Warn("status refresh failed", "error", err)
		}
		return
	}
}

// repaint recomputes the display state from the last snapshot and paints it.
// Visual ticks never issue I/O. When no session is active the painted text
// is frozen, so unchanged frames are skipped unless forced.
func (l *Loop) repaint(force bool) {
	snap := l.store.Get()
	state := clock.Compute(snap, l.now())

	text := clock.FormatHMS(state.DisplaySeconds)
	label := LabelCheckIn
	if state.IsActive {
		label = LabelCheckOut
	}
	busy := l.ctrl.InFlight()

	l.mu.Lock()
	unchanged := l.painted && text == l.lastText && label == l.lastLabel && busy == l.lastBusy
	if unchanged && !force {
		l.mu.Unlock()
		return
	}
	l.lastText = text
	l.lastLabel = label
	l.lastBusy = busy
	l.painted = true
	l.mu.Unlock()

	l.renderer.PaintTimer(text)
	l.renderer.PaintButton(label, state.IsActive, busy)
	metrics.RepaintsTotal.Inc()
}
