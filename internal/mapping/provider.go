// Package mapping abstracts the map widget the browse surface mirrors its
// filtered subset onto.
package mapping

import (
	"context"
	"errors"

	domain "github.com/otop-atlas/api/internal/domain"
)

// Marker is one point placed on the map.
type Marker struct {
	ID       int64
	Title    string
	Position domain.GeoPoint
	// Color is a hex color chosen from the product category.
	Color string
}

// Viewport is the visible region of the map.
type Viewport struct {
	Center domain.GeoPoint
	Zoom   int
}

// ErrProviderUnavailable indicates the provider could not be brought up,
// typically because no API key was configured.
var ErrProviderUnavailable = errors.New("mapping: provider unavailable")

// Provider renders markers and viewport changes. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Initialize brings the provider up. Callers treat failure as a
	// degraded mode, not a fatal error.
	Initialize(ctx context.Context) error
	// Ready reports whether the provider accepts marker updates.
	Ready() bool
	// SetMarkers replaces the full marker set.
	SetMarkers(ctx context.Context, markers []Marker) error
	// SetViewport recentres and rezooms the map.
	SetViewport(ctx context.Context, viewport Viewport) error
}
