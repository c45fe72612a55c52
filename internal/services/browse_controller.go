package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/platform/debounce"
	"github.com/otop-atlas/api/internal/platform/observability"
)

var (
	// ErrBrowseCatalogMissing indicates the catalog dependency is absent.
	ErrBrowseCatalogMissing = errors.New("browse controller: catalog service is required")
	// ErrBrowseRendererMissing indicates the renderer dependency is absent.
	ErrBrowseRendererMissing = errors.New("browse controller: view renderer is required")
	// ErrBrowseMapMissing indicates the map dependency is absent.
	ErrBrowseMapMissing = errors.New("browse controller: map service is required")
	// ErrProductNotFound indicates a show-on-map request named an unknown id.
	ErrProductNotFound = errors.New("browse controller: product not found")
)

// BrowseControllerDeps bundles constructor inputs for a browse controller.
type BrowseControllerDeps struct {
	Catalog  CatalogService
	Renderer ViewRenderer
	Map      MapService
	Metrics  *observability.BrowseMetrics
	Logger   *zap.Logger
	// DebounceDelay is the search quiet period. Zero selects the default.
	DebounceDelay time.Duration
}

type browseController struct {
	catalog  CatalogService
	renderer ViewRenderer
	maps     MapService
	metrics  *observability.BrowseMetrics
	logger   *zap.Logger

	debouncer *debounce.Debouncer

	mu sync.Mutex
	// query is the committed state; pendingSearch holds a search term that
	// has been typed but not yet debounce-committed.
	query         domain.QueryState
	pendingSearch string
	view          domain.BrowseView
	closed        bool
}

// NewBrowseController builds a controller and materialises the initial
// unfiltered view.
func NewBrowseController(deps BrowseControllerDeps) (BrowseController, error) {
	if deps.Catalog == nil {
		return nil, ErrBrowseCatalogMissing
	}
	if deps.Renderer == nil {
		return nil, ErrBrowseRendererMissing
	}
	if deps.Map == nil {
		return nil, ErrBrowseMapMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []debounce.Option{}
	if deps.DebounceDelay > 0 {
		opts = append(opts, debounce.WithDelay(deps.DebounceDelay))
	}

	c := &browseController{
		catalog:   deps.Catalog,
		renderer:  deps.Renderer,
		maps:      deps.Map,
		metrics:   deps.Metrics,
		logger:    logger,
		debouncer: debounce.New(opts...),
	}

	c.mu.Lock()
	c.recomputeLocked(context.Background(), "initial")
	c.mu.Unlock()
	return c, nil
}

// SetSearch stores the term and schedules the recompute behind the quiet
// period. Only the last term of a burst is ever committed.
func (c *browseController) SetSearch(ctx context.Context, term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingSearch = term
	c.mu.Unlock()

	// The commit can fire long after the triggering request has finished,
	// so it must survive that request's cancellation.
	ctx = context.WithoutCancel(ctx)
	c.debouncer.Call(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		c.query.Search = c.pendingSearch
		c.recomputeLocked(ctx, "search")
	})
}

func (c *browseController) SetCategory(ctx context.Context, category string) {
	c.setImmediate(ctx, "category", func(q *domain.QueryState) { q.Category = category })
}

func (c *browseController) SetProvince(ctx context.Context, province string) {
	c.setImmediate(ctx, "province", func(q *domain.QueryState) { q.Province = province })
}

func (c *browseController) SetLevel(ctx context.Context, level string) {
	c.setImmediate(ctx, "level", func(q *domain.QueryState) { q.Level = level })
}

// setImmediate commits a selector change and recomputes without waiting.
// A pending debounced search stays pending; the selector recompute sees
// the last committed search term.
func (c *browseController) setImmediate(ctx context.Context, trigger string, apply func(*domain.QueryState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	apply(&c.query)
	c.recomputeLocked(ctx, trigger)
}

// Flush commits any pending search immediately.
func (c *browseController) Flush(ctx context.Context) {
	c.debouncer.Flush()
}

func (c *browseController) View() domain.BrowseView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *browseController) ShowOnMap(ctx context.Context, id int64) error {
	product, ok := c.catalog.FindByID(id)
	if !ok {
		return ErrProductNotFound
	}
	return c.maps.Focus(ctx, product)
}

// Close drops pending work. A closed controller ignores further input and
// keeps serving its last view.
func (c *browseController) Close() {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// recomputeLocked runs the full pipeline: filter, render, stats, map sync.
// The caller holds c.mu.
func (c *browseController) recomputeLocked(ctx context.Context, trigger string) {
	start := time.Now()
	filtered := c.catalog.Filter(c.query)

	c.view = domain.BrowseView{
		Query:   c.query,
		Catalog: c.renderer.RenderCatalog(filtered),
		Stats:   c.catalog.Stats(len(filtered)),
		Map:     c.maps.Sync(ctx, filtered),
	}

	elapsed := time.Since(start)
	c.metrics.RecordRecompute(ctx, trigger, elapsed)
	c.logger.Debug("browse: recomputed",
		zap.String("trigger", trigger),
		zap.Int("matched", len(filtered)),
		zap.Duration("elapsed", elapsed),
	)
}
