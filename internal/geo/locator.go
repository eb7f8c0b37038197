// Package geo acquires best-effort position fixes for attendance commands.
//
// A command never waits longer than the overall budget for a fix and never
// fails because of one: every path out of this package returns either a fix
// or nil.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
)

// Budget is the overall time allowed for acquisition, split across the
// high-accuracy pass and the low-accuracy retry.
const Budget = 15 * time.Second

// fixPayload is the position provider's response shape.
type fixPayload struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AccuracyM float64 `json:"accuracy_m"`
}

// HTTPLocator queries a position-provider endpoint, high accuracy first,
// then one low-accuracy retry on any error.
type HTTPLocator struct {
	providerURL string
	http        *http.Client
	budget      time.Duration
	log         *slog.Logger
}

func NewHTTPLocator(providerURL string, logger *slog.Logger) *HTTPLocator {
	return &HTTPLocator{
		providerURL: providerURL,
		http:        &http.Client{},
		budget:      Budget,
		log:         logger.With("component", "geo"),
	}
}

// Locate implements attendance.Locator.
func (l *HTTPLocator) Locate(ctx context.Context) *attendance.GeoFix {
	ctx, cancel := context.WithTimeout(ctx, l.budget)
	defer cancel()

	half := l.budget / 2

	fix, err := l.query(ctx, half, attendance.GeoSourceHigh, 0)
	if err == nil {
		return fix
	}
	l.log.Debug("high-accuracy fix failed, retrying low", "error", err)

	fix, err = l.query(ctx, half, attendance.GeoSourceLow, 60*time.Second)
	if err != nil {
		l.log.Debug("location unavailable", "error", err)
		return nil
	}
	return fix
}

func (l *HTTPLocator) query(ctx context.Context, limit time.Duration, source attendance.GeoSource, maxAge time.Duration) (*attendance.GeoFix, error) {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	q := url.Values{}
	q.Set("accuracy", string(source))
	q.Set("max_age_ms", fmt.Sprintf("%d", maxAge.Milliseconds()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.providerURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider status %d", attendance.ErrLocationUnavailable, resp.StatusCode)
	}

	var payload fixPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode fix: %v", attendance.ErrLocationUnavailable, err)
	}

	return &attendance.GeoFix{
		Lat:            payload.Lat,
		Lng:            payload.Lng,
		AccuracyMeters: payload.AccuracyM,
		Source:         source,
	}, nil
}

// NopLocator reports no position. Used when no provider is configured.
type NopLocator struct{}

func (NopLocator) Locate(context.Context) *attendance.GeoFix { return nil }
