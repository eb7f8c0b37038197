package attendance

import "context"

// Controller issues attendance commands and owns the optimistic-update
// contract: a failed check-in rolls the store back to the prior snapshot,
// a failed check-out preserves the user-intended stop until the next
// successful refresh reconciles it.
//
// Every call site (the manual button surface and the assistant dispatcher)
// must funnel through this interface; none may re-implement optimism.
type Controller interface {
	CheckIn(ctx context.Context, employeeID string) (*Snapshot, error)
	CheckOut(ctx context.Context, employeeID string) (*Snapshot, error)

	// Toggle selects check-in or check-out from the current snapshot's
	// session state, refreshing first when no snapshot exists yet.
	Toggle(ctx context.Context, employeeID string) (*Snapshot, error)

	// Refresh performs an authoritative status fetch and stores the result.
	// Errors wrap ErrStatusFetch and must stay silent for the user.
	Refresh(ctx context.Context, employeeID string) (*Snapshot, error)

	// InFlight reports whether a command round trip is currently open.
	InFlight() bool
}
