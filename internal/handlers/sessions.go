package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/platform/httpx"
	"github.com/otop-atlas/api/internal/services"
)

const maxSessionBodySize = 4 * 1024

// SessionHandlers exposes the stateful browse sessions.
type SessionHandlers struct {
	store *services.SessionStore
}

// NewSessionHandlers constructs a new SessionHandlers instance.
func NewSessionHandlers(store *services.SessionStore) *SessionHandlers {
	return &SessionHandlers{store: store}
}

// Routes registers the /sessions endpoints.
func (h *SessionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createSession)
	r.Route("/{sessionId}", func(sr chi.Router) {
		sr.Get("/", h.getSession)
		sr.Patch("/query", h.patchQuery)
		sr.Post("/flush", h.flushSession)
		sr.Post("/show-on-map", h.showOnMap)
		sr.Delete("/", h.deleteSession)
	})
}

func (h *SessionHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.store.Create()
	if err != nil {
		writeSessionError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, sessionResponse{
		SessionID: session.ID,
		View:      session.Controller.View(),
	})
}

func (h *SessionHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.lookup(r)
	if err != nil {
		writeSessionError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		View:      session.Controller.View(),
	})
}

// patchQuery applies the supplied query fields. A search change is
// debounced; the selector fields take effect before the response is
// rendered.
func (h *SessionHandlers) patchQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.lookup(r)
	if err != nil {
		writeSessionError(ctx, w, err)
		return
	}

	body, err := readLimitedBody(r, maxSessionBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req patchQueryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if req.Search == nil && req.Category == nil && req.Province == nil && req.Level == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "at least one query field is required", http.StatusBadRequest))
		return
	}

	controller := session.Controller
	if req.Search != nil {
		controller.SetSearch(ctx, *req.Search)
	}
	if req.Category != nil {
		controller.SetCategory(ctx, *req.Category)
	}
	if req.Province != nil {
		controller.SetProvince(ctx, *req.Province)
	}
	if req.Level != nil {
		controller.SetLevel(ctx, *req.Level)
	}

	writeJSONResponse(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		View:      controller.View(),
	})
}

func (h *SessionHandlers) flushSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.lookup(r)
	if err != nil {
		writeSessionError(ctx, w, err)
		return
	}

	session.Controller.Flush(ctx)
	writeJSONResponse(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		View:      session.Controller.View(),
	})
}

func (h *SessionHandlers) showOnMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.lookup(r)
	if err != nil {
		writeSessionError(ctx, w, err)
		return
	}

	body, err := readLimitedBody(r, maxSessionBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req showOnMapRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if req.ProductID == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId is required", http.StatusBadRequest))
		return
	}

	if err := session.Controller.ShowOnMap(ctx, req.ProductID); err != nil {
		writeSessionError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		View:      session.Controller.View(),
	})
}

func (h *SessionHandlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if err := h.store.Delete(id); err != nil {
		writeSessionError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandlers) lookup(r *http.Request) (services.BrowseSession, error) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if id == "" {
		return services.BrowseSession{}, services.ErrSessionNotFound
	}
	return h.store.Get(id)
}

func writeSessionError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("session_not_found", "no session with that id", http.StatusNotFound))
	case errors.Is(err, services.ErrSessionLimit):
		httpx.WriteError(ctx, w, httpx.NewError("session_limit_reached", "too many live sessions; retry later", http.StatusTooManyRequests))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "no product with that id", http.StatusNotFound))
	case errors.Is(err, services.ErrNoCoordinates):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_mappable", "product has no coordinates", http.StatusConflict))
	case errors.Is(err, services.ErrMapNotReady):
		httpx.WriteError(ctx, w, httpx.NewError("map_not_ready", "map provider is not initialised", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected failure", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

type patchQueryRequest struct {
	Search   *string `json:"search"`
	Category *string `json:"category"`
	Province *string `json:"province"`
	Level    *string `json:"level"`
}

type showOnMapRequest struct {
	ProductID int64 `json:"productId"`
}

type sessionResponse struct {
	SessionID string            `json:"sessionId"`
	View      domain.BrowseView `json:"view"`
}
