// Package di assembles the runtime object graph: dataset source, catalog
// services, map provider, and browse session infrastructure.
package di

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/mapping"
	"github.com/otop-atlas/api/internal/mapping/staticmap"
	"github.com/otop-atlas/api/internal/platform/config"
	"github.com/otop-atlas/api/internal/platform/observability"
	"github.com/otop-atlas/api/internal/platform/secrets"
	"github.com/otop-atlas/api/internal/repositories"
	"github.com/otop-atlas/api/internal/repositories/gcsobject"
	"github.com/otop-atlas/api/internal/repositories/jsonfile"
	"github.com/otop-atlas/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog  services.CatalogService
	Renderer services.ViewRenderer
	Map      services.MapService
	Sessions *services.SessionStore
}

// Container wires the dataset, services, and map infrastructure for runtime use.
type Container struct {
	Config   config.Config
	Services Services
	// MapImage is non-nil when the provider can compose a map image.
	MapImage interface{ ImageURL() string }

	closers []io.Closer
}

// NewContainer loads the dataset and assembles all services. A dataset
// failure is returned to the caller, which decides between aborting and
// serving degraded.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{Config: cfg}

	source, err := c.buildSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("loading catalog dataset", zap.String("source", source.Describe()))
	products, err := source.Load(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("catalog dataset loaded", zap.Int("products", len(products)))

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{Products: products})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("build catalog service: %w", err)
	}

	renderer := services.NewViewRenderer(services.ViewRendererDeps{
		AssetBaseURL:     cfg.Assets.BaseURL,
		PlaceholderImage: cfg.Assets.PlaceholderURL,
	})

	mapSvc, err := c.buildMapService(ctx, cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	metrics := observability.NewBrowseMetrics(logger)
	sessions, err := services.NewSessionStore(services.SessionStoreDeps{
		TTL:    cfg.Browse.SessionTTL,
		Limit:  cfg.Browse.SessionLimit,
		Logger: logger,
		Factory: func() (services.BrowseController, error) {
			return services.NewBrowseController(services.BrowseControllerDeps{
				Catalog:       catalog,
				Renderer:      renderer,
				Map:           mapSvc,
				Metrics:       metrics,
				Logger:        logger,
				DebounceDelay: cfg.Browse.DebounceInterval,
			})
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("build session store: %w", err)
	}

	c.Services = Services{
		Catalog:  catalog,
		Renderer: renderer,
		Map:      mapSvc,
		Sessions: sessions,
	}
	return c, nil
}

// Close releases clients and shuts down live sessions.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Services.Sessions != nil {
		c.Services.Sessions.Close()
	}
	for _, closer := range c.closers {
		_ = closer.Close()
	}
}

func (c *Container) buildSource(ctx context.Context, cfg config.Config) (repositories.CatalogSource, error) {
	switch cfg.Dataset.Source {
	case config.SourceGCS:
		source, err := gcsobject.NewSource(ctx, cfg.Dataset.Bucket, cfg.Dataset.Object)
		if err != nil {
			return nil, fmt.Errorf("build gcs source: %w", err)
		}
		c.closers = append(c.closers, source)
		return source, nil
	default:
		return jsonfile.NewSource(cfg.Dataset.Path), nil
	}
}

// buildMapService resolves the provider API key and brings the provider
// up. Initialisation failure degrades to summary-only mode.
func (c *Container) buildMapService(ctx context.Context, cfg config.Config, logger *zap.Logger) (services.MapService, error) {
	apiKey := cfg.Map.APIKey
	if secrets.IsReference(apiKey) {
		resolver, err := secrets.NewResolver(ctx,
			secrets.WithLogger(logger),
			secrets.WithProject(cfg.Map.SecretProject),
			secrets.WithFallbackFile(cfg.Map.SecretFallbackFile),
		)
		if err != nil {
			return nil, fmt.Errorf("build secrets resolver: %w", err)
		}
		c.closers = append(c.closers, resolver)

		apiKey, err = resolver.Resolve(ctx, cfg.Map.APIKey)
		if err != nil {
			logger.Warn("map api key resolution failed; map stays degraded", zap.Error(err))
			apiKey = ""
		}
	}

	var provider mapping.Provider
	if apiKey != "" {
		staticProvider := staticmap.NewProvider(apiKey, mapping.Viewport{
			Center: domain.GeoPoint{Lat: cfg.Map.CenterLat, Long: cfg.Map.CenterLong},
			Zoom:   cfg.Map.Zoom,
		}, staticmap.WithLogger(logger))
		provider = staticProvider
		c.MapImage = staticProvider
	}

	mapSvc := services.NewMapService(services.MapServiceDeps{Provider: provider, Logger: logger})
	if provider != nil {
		if err := mapSvc.Initialize(ctx); err != nil {
			logger.Warn("map provider initialisation failed", zap.Error(err))
		}
	}
	return mapSvc, nil
}
