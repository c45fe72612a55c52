package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/otop-atlas/api/internal/domain"
)

func createSession(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	decodeBody(t, rec, &payload)
	if payload.SessionID == "" {
		t.Fatalf("expected session id")
	}
	return payload.SessionID
}

func TestCreateSessionReturnsInitialView(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var payload struct {
		SessionID string            `json:"sessionId"`
		View      domain.BrowseView `json:"view"`
	}
	decodeBody(t, rec, &payload)
	if len(payload.View.Catalog.Cards) != 3 {
		t.Fatalf("expected full initial catalog, got %d cards", len(payload.View.Catalog.Cards))
	}
	if payload.View.Stats.Filtered != 3 {
		t.Fatalf("unexpected stats %+v", payload.View.Stats)
	}
}

func TestPatchQuerySelectorTakesEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+id+"/query", strings.NewReader(`{"category":"อาหาร"}`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		View domain.BrowseView `json:"view"`
	}
	decodeBody(t, rec, &payload)
	if payload.View.Query.Category != "อาหาร" {
		t.Fatalf("unexpected query %+v", payload.View.Query)
	}
	if len(payload.View.Catalog.Cards) != 1 || payload.View.Catalog.Cards[0].ID != 2 {
		t.Fatalf("unexpected cards %+v", payload.View.Catalog.Cards)
	}
}

func TestPatchQuerySearchIsDebounced(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+id+"/query", strings.NewReader(`{"search":"silk"}`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		View domain.BrowseView `json:"view"`
	}
	decodeBody(t, rec, &payload)
	if payload.View.Query.Search != "" {
		t.Fatalf("search must not commit inside the quiet period, got %q", payload.View.Query.Search)
	}

	// After the quiet period the committed view is served.
	time.Sleep(250 * time.Millisecond)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
	decodeBody(t, rec, &payload)
	if payload.View.Query.Search != "silk" {
		t.Fatalf("expected committed search, got %q", payload.View.Query.Search)
	}
	if len(payload.View.Catalog.Cards) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(payload.View.Catalog.Cards))
	}
}

func TestFlushCommitsPendingSearchNow(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+id+"/query", strings.NewReader(`{"search":"น้ำพริก"}`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/flush", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		View domain.BrowseView `json:"view"`
	}
	decodeBody(t, rec, &payload)
	if payload.View.Query.Search != "น้ำพริก" {
		t.Fatalf("expected flushed search, got %q", payload.View.Query.Search)
	}
	if len(payload.View.Catalog.Cards) != 1 || payload.View.Catalog.Cards[0].ID != 2 {
		t.Fatalf("unexpected cards %+v", payload.View.Catalog.Cards)
	}
}

func TestPatchQueryValidation(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+id+"/query", strings.NewReader(`{}`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty patch, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+id+"/query", strings.NewReader(`not json`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestShowOnMapErrors(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/show-on-map", strings.NewReader(`{"productId":999}`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}

	// The degraded map provider cannot focus.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/show-on-map", strings.NewReader(`{"productId":1}`))
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while map is down, got %d", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	id := createSession(t, env)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSessionLimitAnswers429(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 4; i++ {
		createSession(t, env)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestUnknownSessionAnswers404(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{
		"/api/v1/sessions/01JUNKSESSIONID",
		fmt.Sprintf("/api/v1/sessions/%s/flush", "01JUNKSESSIONID"),
	} {
		method := http.MethodGet
		if strings.HasSuffix(target, "/flush") {
			method = http.MethodPost
		}
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", target, rec.Code)
		}
	}
}
