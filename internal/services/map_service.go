package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/mapping"
)

const (
	// summaryLimit caps the textual summary entry list.
	summaryLimit = 8
	// focusZoom is the zoom level used when centring on one product.
	focusZoom = 15
	// defaultMarkerColor is used for categories without a table entry.
	defaultMarkerColor = "#666666"
)

// markerColors maps product categories to marker colors.
var markerColors = map[string]string{
	"อาหาร":           "#ff5722",
	"เครื่องดื่ม":     "#ff5722",
	"ของใช้ของตะวัน":  "#9c27b0",
	"สิ่งทอ":          "#2196f3",
	"สมุนไพร":         "#4caf50",
	"ขนมหวาน":         "#ff9800",
}

// ErrMapNotReady indicates a focus request arrived while the provider is
// absent or still uninitialised.
var ErrMapNotReady = errors.New("map service: provider not ready")

// ErrNoCoordinates indicates the product cannot be placed on the map.
var ErrNoCoordinates = errors.New("map service: product has no coordinates")

// MapServiceDeps bundles constructor inputs for the map service.
type MapServiceDeps struct {
	// Provider may be nil; the service then serves summaries only.
	Provider mapping.Provider
	Logger   *zap.Logger
}

type mapService struct {
	provider mapping.Provider
	logger   *zap.Logger

	mu sync.Mutex
	// pending holds the latest subset received before the provider came
	// up, so initialisation can replay it.
	pending []domain.Product
}

// NewMapService builds the map sync service.
func NewMapService(deps MapServiceDeps) MapService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mapService{provider: deps.Provider, logger: logger}
}

// Initialize brings the provider up and replays the subset that arrived
// while the map was still down.
func (s *mapService) Initialize(ctx context.Context) error {
	if s.provider == nil {
		return mapping.ErrProviderUnavailable
	}
	if err := s.provider.Initialize(ctx); err != nil {
		s.logger.Warn("map service: provider initialisation failed; serving summaries only", zap.Error(err))
		return err
	}

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending != nil {
		if err := s.provider.SetMarkers(ctx, buildMarkers(pending)); err != nil {
			s.logger.Warn("map service: replaying pending subset failed", zap.Error(err))
		}
	}
	return nil
}

func (s *mapService) Ready() bool {
	return s.provider != nil && s.provider.Ready()
}

// Sync mirrors the filtered subset. The summary is computed from the full
// subset; marker placement skips records without coordinates.
func (s *mapService) Sync(ctx context.Context, products []domain.Product) domain.MapSummary {
	if !s.Ready() {
		s.mu.Lock()
		s.pending = products
		s.mu.Unlock()
		return buildSummary(products)
	}

	if err := s.provider.SetMarkers(ctx, buildMarkers(products)); err != nil {
		s.logger.Warn("map service: marker update failed", zap.Error(err))
	}
	return buildSummary(products)
}

func (s *mapService) Summarize(products []domain.Product) domain.MapSummary {
	return buildSummary(products)
}

func (s *mapService) Focus(ctx context.Context, product domain.Product) error {
	if product.Location == nil {
		return fmt.Errorf("%w: product %d", ErrNoCoordinates, product.ID)
	}
	if !s.Ready() {
		return ErrMapNotReady
	}
	return s.provider.SetViewport(ctx, mapping.Viewport{
		Center: *product.Location,
		Zoom:   focusZoom,
	})
}

func buildMarkers(products []domain.Product) []mapping.Marker {
	markers := make([]mapping.Marker, 0, len(products))
	for _, p := range products {
		if p.Location == nil {
			continue
		}
		markers = append(markers, mapping.Marker{
			ID:       p.ID,
			Title:    p.Name,
			Position: *p.Location,
			Color:    MarkerColor(p.Category),
		})
	}
	return markers
}

func buildSummary(products []domain.Product) domain.MapSummary {
	summary := domain.MapSummary{Count: len(products)}
	limit := len(products)
	if limit > summaryLimit {
		limit = summaryLimit
		summary.Overflow = len(products) - summaryLimit
	}
	summary.Entries = make([]string, 0, limit)
	for _, p := range products[:limit] {
		summary.Entries = append(summary.Entries, fmt.Sprintf("%s - %s (%s)", p.Name, p.Province, p.Category))
	}
	return summary
}

// MarkerColor returns the marker color for a product category.
func MarkerColor(category string) string {
	if color, ok := markerColors[category]; ok {
		return color
	}
	return defaultMarkerColor
}
