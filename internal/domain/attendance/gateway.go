package attendance

import "context"

// Gateway is the outbound port to the attendance server.
type Gateway interface {
	// Status fetches the authoritative record for today. Errors wrap
	// ErrStatusFetch.
	Status(ctx context.Context, employeeID, timezone string) (*StatusResponse, error)

	// CheckIn and CheckOut post a command. Errors wrap ErrNetwork for
	// transport failures and ErrServerRejected for non-2xx or success=false.
	CheckIn(ctx context.Context, req CommandRequest) (*CommandResponse, error)
	CheckOut(ctx context.Context, req CommandRequest) (*CommandResponse, error)
}

// Locator acquires a best-effort position for a command. Implementations
// must return nil rather than fail: location is metadata, never a gate.
type Locator interface {
	Locate(ctx context.Context) *GeoFix
}
