// Package staticmap renders the browse map through the Google Static Maps
// API. The provider keeps the latest marker set and viewport and exposes
// the composed image URL for clients to embed.
package staticmap

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/mapping"
)

const (
	endpoint      = "https://maps.googleapis.com/maps/api/staticmap"
	defaultWidth  = 640
	defaultHeight = 400
	// markerCap bounds the URL length; the API rejects oversized requests.
	markerCap = 60
)

// Provider implements mapping.Provider against the Static Maps API.
type Provider struct {
	apiKey string
	logger *zap.Logger
	width  int
	height int

	mu       sync.RWMutex
	ready    bool
	markers  []mapping.Marker
	viewport mapping.Viewport
}

// ProviderOption customises Provider construction.
type ProviderOption func(*Provider)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSize overrides the rendered image dimensions.
func WithSize(width, height int) ProviderOption {
	return func(p *Provider) {
		if width > 0 && height > 0 {
			p.width = width
			p.height = height
		}
	}
}

// NewProvider builds a provider for the given API key. The key may be
// empty; Initialize then fails and the caller stays in degraded mode.
func NewProvider(apiKey string, viewport mapping.Viewport, opts ...ProviderOption) *Provider {
	p := &Provider{
		apiKey:   strings.TrimSpace(apiKey),
		logger:   zap.NewNop(),
		width:    defaultWidth,
		height:   defaultHeight,
		viewport: viewport,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Initialize implements mapping.Provider.
func (p *Provider) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.apiKey == "" {
		return fmt.Errorf("%w: missing api key", mapping.ErrProviderUnavailable)
	}

	p.mu.Lock()
	p.ready = true
	p.mu.Unlock()
	p.logger.Info("staticmap: provider initialised",
		zap.Float64("center_lat", p.viewport.Center.Lat),
		zap.Float64("center_long", p.viewport.Center.Long),
		zap.Int("zoom", p.viewport.Zoom),
	)
	return nil
}

// Ready implements mapping.Provider.
func (p *Provider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

// SetMarkers implements mapping.Provider.
func (p *Provider) SetMarkers(ctx context.Context, markers []mapping.Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return mapping.ErrProviderUnavailable
	}
	p.markers = append([]mapping.Marker(nil), markers...)
	return nil
}

// SetViewport implements mapping.Provider.
func (p *Provider) SetViewport(ctx context.Context, viewport mapping.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return mapping.ErrProviderUnavailable
	}
	p.viewport = viewport
	return nil
}

// ImageURL composes the Static Maps request for the current state.
func (p *Provider) ImageURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	query := url.Values{}
	query.Set("center", formatPoint(p.viewport.Center))
	query.Set("zoom", fmt.Sprintf("%d", p.viewport.Zoom))
	query.Set("size", fmt.Sprintf("%dx%d", p.width, p.height))
	query.Set("key", p.apiKey)

	// One markers parameter per color keeps styling intact.
	byColor := make(map[string][]string)
	colors := make([]string, 0)
	count := 0
	for _, m := range p.markers {
		if count >= markerCap {
			break
		}
		color := strings.TrimPrefix(m.Color, "#")
		if color == "" {
			color = "666666"
		}
		if _, ok := byColor[color]; !ok {
			colors = append(colors, color)
		}
		byColor[color] = append(byColor[color], formatPoint(m.Position))
		count++
	}
	for _, color := range colors {
		query.Add("markers", "color:0x"+color+"|"+strings.Join(byColor[color], "|"))
	}

	return endpoint + "?" + query.Encode()
}

func formatPoint(point domain.GeoPoint) string {
	return fmt.Sprintf("%.6f,%.6f", point.Lat, point.Long)
}
