package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/mapping"
	"github.com/otop-atlas/api/internal/mapping/staticmap"
	"github.com/otop-atlas/api/internal/services"
)

func TestGetMapSummaryOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map?category=อาหาร", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Ready    bool              `json:"ready"`
		Summary  domain.MapSummary `json:"summary"`
		ImageURL string            `json:"imageUrl"`
	}
	decodeBody(t, rec, &payload)
	if payload.Ready {
		t.Fatalf("map must not report ready without a provider")
	}
	if payload.Summary.Count != 1 {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
	if payload.ImageURL != "" {
		t.Fatalf("no image expected while degraded, got %q", payload.ImageURL)
	}
}

func TestGetMapWithProvider(t *testing.T) {
	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{Products: fixtureProducts()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider := staticmap.NewProvider("test-key", mapping.Viewport{
		Center: domain.GeoPoint{Lat: 15.87, Long: 100.9925},
		Zoom:   6,
	})
	maps := services.NewMapService(services.MapServiceDeps{Provider: provider})
	if err := maps.Initialize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	router := NewRouter(WithMapRoutes(NewMapHandlers(catalog, maps, provider).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Ready    bool   `json:"ready"`
		ImageURL string `json:"imageUrl"`
	}
	decodeBody(t, rec, &payload)
	if !payload.Ready {
		t.Fatalf("expected map ready")
	}
	if payload.ImageURL == "" {
		t.Fatalf("expected image url")
	}
}
