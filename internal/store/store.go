// Package store holds the most recent authoritative snapshot and fans out
// change and invalidation signals to the display loop.
package store

import (
	"sync"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
)

// Store is the single shared cell of the core. Only the attendance
// controller and the display loop mutate it; everything else reads.
type Store struct {
	mu       sync.Mutex
	current  *attendance.Snapshot
	revision uint64

	// Coalesced one-slot signals. A dropped signal is fine: the consumer
	// re-reads the full state on every wakeup.
	changed     chan struct{}
	invalidated chan struct{}
}

func New() *Store {
	return &Store{
		changed:     make(chan struct{}, 1),
		invalidated: make(chan struct{}, 1),
	}
}

// Get returns the current snapshot, or nil before the first fetch.
func (s *Store) Get() *attendance.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Revision returns the number of replacements performed so far.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Set replaces the current snapshot and broadcasts a change signal.
func (s *Store) Set(snap *attendance.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.revision++
	s.mu.Unlock()
	signal(s.changed)
}

// ApplyOptimistic installs a provisional snapshot built from the intent and
// the current snapshot, so the renderer paints the commanded state within a
// single display tick. It returns the provisional snapshot.
func (s *Store) ApplyOptimistic(intent attendance.CommandIntent) *attendance.Snapshot {
	s.mu.Lock()
	prior := s.current
	provisional := buildOptimistic(intent, prior)
	s.current = provisional
	s.revision++
	s.mu.Unlock()
	signal(s.changed)
	return provisional
}

// Rollback restores the intent's prior snapshot verbatim.
func (s *Store) Rollback(intent attendance.CommandIntent) {
	s.mu.Lock()
	s.current = intent.Prior
	s.revision++
	s.mu.Unlock()
	signal(s.changed)
}

// Invalidate asks the display loop for an immediate authoritative refresh.
// It does not clear the current snapshot.
func (s *Store) Invalidate() {
	signal(s.invalidated)
}

// Changed yields a signal whenever the snapshot was replaced.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

// Invalidated yields a signal whenever an immediate refresh was requested.
func (s *Store) Invalidated() <-chan struct{} {
	return s.invalidated
}

func buildOptimistic(intent attendance.CommandIntent, prior *attendance.Snapshot) *attendance.Snapshot {
	requestedAt := intent.RequestedAtLocal
	requestedUTC := requestedAt.UTC()

	snap := &attendance.Snapshot{
		ServerNowUTC:     requestedUTC,
		HasRecord:        true,
		FetchedAtLocal:   requestedAt,
		ServerNowAtFetch: requestedUTC,
	}
	if prior != nil {
		snap.Status = prior.Status
		snap.Timing.CheckinUTC = prior.Timing.CheckinUTC
		snap.Timing.CheckoutUTC = prior.Timing.CheckoutUTC
		snap.Timing.TotalSecondsToday = prior.Timing.TotalSecondsToday
	}

	switch intent.Kind {
	case attendance.KindCheckIn:
		snap.IsActiveSession = true
		snap.Timing.LastSessionStartUTC = &requestedUTC
		snap.Timing.ElapsedSecondsAtFetch = 0
		if snap.Timing.CheckinUTC == nil {
			snap.Timing.CheckinUTC = &requestedUTC
		}

	case attendance.KindCheckOut:
		var localElapsed int64
		if prior != nil {
			localElapsed = int64(requestedAt.Sub(prior.FetchedAtLocal)/time.Second) + prior.Timing.ElapsedSecondsAtFetch
			if localElapsed < 0 {
				localElapsed = 0
			}
		}
		snap.IsActiveSession = false
		snap.Timing.LastSessionStartUTC = nil
		snap.Timing.ElapsedSecondsAtFetch = 0
		snap.Timing.TotalSecondsToday += localElapsed
		snap.Timing.CheckoutUTC = &requestedUTC
	}

	return snap
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
