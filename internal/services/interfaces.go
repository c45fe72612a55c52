package services

import (
	"context"

	domain "github.com/otop-atlas/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product       = domain.Product
	GeoPoint      = domain.GeoPoint
	QueryState    = domain.QueryState
	FilterOptions = domain.FilterOptions
	CatalogStats  = domain.CatalogStats
	CardView      = domain.CardView
	CatalogView   = domain.CatalogView
	DetailView    = domain.DetailView
	MapSummary    = domain.MapSummary
	BrowseView    = domain.BrowseView
)

// CatalogService exposes the loaded snapshot and the pure filter engine.
// All methods are safe for concurrent use; none of them mutate the snapshot.
type CatalogService interface {
	// Products returns the full snapshot in dataset order.
	Products() []Product
	// Filter applies the query to the snapshot and returns the matching
	// subset in dataset order.
	Filter(query QueryState) []Product
	// FindByID returns the first product carrying the id.
	FindByID(id int64) (Product, bool)
	// Options lists the selectable filter values.
	Options() FilterOptions
	// Stats summarises the snapshot against a filtered subset size.
	Stats(filtered int) CatalogStats
}

// ViewRenderer projects products into display structures. Rendering never
// fails; missing fields degrade to their documented fallbacks.
type ViewRenderer interface {
	RenderCatalog(products []Product) CatalogView
	RenderCard(product Product) CardView
	RenderDetail(product Product) DetailView
}

// MapService mirrors the filtered subset onto the map provider. Marker
// updates are skipped until the provider reports readiness; the textual
// summary is always available.
type MapService interface {
	// Initialize attempts to bring the provider up. A provider failure is
	// not fatal; the service then serves summaries only.
	Initialize(ctx context.Context) error
	// Ready reports whether markers are being placed.
	Ready() bool
	// Sync replaces the marker set with the given subset.
	Sync(ctx context.Context, products []Product) MapSummary
	// Summarize builds the textual summary without touching markers.
	Summarize(products []Product) MapSummary
	// Focus recentres the map on one product's coordinates.
	Focus(ctx context.Context, product Product) error
}

// BrowseController owns the query state of one browse session and keeps
// the derived views current. SetSearch is debounced; the selector setters
// recompute immediately.
type BrowseController interface {
	SetSearch(ctx context.Context, term string)
	SetCategory(ctx context.Context, category string)
	SetProvince(ctx context.Context, province string)
	SetLevel(ctx context.Context, level string)
	// Flush forces any pending debounced search to take effect now.
	Flush(ctx context.Context)
	// View returns the current materialised state.
	View() BrowseView
	// ShowOnMap focuses the map on one product by id.
	ShowOnMap(ctx context.Context, id int64) error
	// Close cancels pending work and releases the session.
	Close()
}
