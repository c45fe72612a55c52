package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/platform/httpx"
	"github.com/otop-atlas/api/internal/services"
)

// CatalogHandlers exposes the read-only catalog endpoints.
type CatalogHandlers struct {
	catalog  services.CatalogService
	renderer services.ViewRenderer
}

// NewCatalogHandlers constructs a new CatalogHandlers instance.
func NewCatalogHandlers(catalog services.CatalogService, renderer services.ViewRenderer) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, renderer: renderer}
}

// Routes registers the catalog endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productId}", h.getProduct)
	r.Get("/filters", h.listFilters)
	r.Get("/stats", h.getStats)
}

// queryFromValues maps URL parameters onto a query state. Absent
// parameters leave their constraint inactive.
func queryFromValues(values url.Values) domain.QueryState {
	return domain.QueryState{
		Search:   values.Get("search"),
		Category: values.Get("category"),
		Province: values.Get("province"),
		Level:    values.Get("level"),
	}
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	query := queryFromValues(r.URL.Query())
	filtered := h.catalog.Filter(query)

	writeJSONResponse(w, http.StatusOK, listProductsResponse{
		Query:   query,
		Catalog: h.renderer.RenderCatalog(filtered),
		Stats:   h.catalog.Stats(len(filtered)),
	})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSpace(chi.URLParam(r, "productId"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_product_id", "product id must be an integer", http.StatusBadRequest))
		return
	}

	product, ok := h.catalog.FindByID(id)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "no product with that id", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, getProductResponse{
		Product: h.renderer.RenderDetail(product),
	})
}

func (h *CatalogHandlers) listFilters(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, listFiltersResponse{
		Filters: h.catalog.Options(),
	})
}

func (h *CatalogHandlers) getStats(w http.ResponseWriter, r *http.Request) {
	query := queryFromValues(r.URL.Query())
	filtered := h.catalog.Filter(query)

	writeJSONResponse(w, http.StatusOK, getStatsResponse{
		Stats: h.catalog.Stats(len(filtered)),
	})
}

type listProductsResponse struct {
	Query   domain.QueryState   `json:"query"`
	Catalog domain.CatalogView  `json:"catalog"`
	Stats   domain.CatalogStats `json:"stats"`
}

type getProductResponse struct {
	Product domain.DetailView `json:"product"`
}

type listFiltersResponse struct {
	Filters domain.FilterOptions `json:"filters"`
}

type getStatsResponse struct {
	Stats domain.CatalogStats `json:"stats"`
}
