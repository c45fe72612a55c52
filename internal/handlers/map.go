package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/services"
)

// MapImageSource exposes the rendered map image for providers that can
// compose one.
type MapImageSource interface {
	ImageURL() string
}

// MapHandlers exposes the map mirror of the catalog.
type MapHandlers struct {
	catalog services.CatalogService
	maps    services.MapService
	// image may be nil when the provider cannot render an image.
	image MapImageSource
}

// NewMapHandlers constructs a new MapHandlers instance.
func NewMapHandlers(catalog services.CatalogService, maps services.MapService, image MapImageSource) *MapHandlers {
	return &MapHandlers{catalog: catalog, maps: maps, image: image}
}

// Routes registers the /map endpoint.
func (h *MapHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/map", h.getMap)
}

// getMap reports the map mirror for the requested query: the textual
// summary always, marker readiness, and the image URL when the provider
// is up.
func (h *MapHandlers) getMap(w http.ResponseWriter, r *http.Request) {
	query := queryFromValues(r.URL.Query())
	filtered := h.catalog.Filter(query)

	payload := getMapResponse{
		Query:   query,
		Ready:   h.maps.Ready(),
		Summary: h.maps.Summarize(filtered),
	}
	if payload.Ready && h.image != nil {
		h.maps.Sync(r.Context(), filtered)
		payload.ImageURL = h.image.ImageURL()
	}

	writeJSONResponse(w, http.StatusOK, payload)
}

type getMapResponse struct {
	Query    domain.QueryState `json:"query"`
	Ready    bool              `json:"ready"`
	Summary  domain.MapSummary `json:"summary"`
	ImageURL string            `json:"imageUrl,omitempty"`
}
