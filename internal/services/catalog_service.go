package services

import (
	"errors"
	"strings"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/platform/textutil"
)

// ErrCatalogEmptySnapshot indicates the service was constructed without a
// loaded dataset.
var ErrCatalogEmptySnapshot = errors.New("catalog service: snapshot is required")

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	// Products is the loaded dataset snapshot. The service takes ownership
	// and never mutates it.
	Products []domain.Product
}

type catalogService struct {
	products []domain.Product
	// haystacks holds the folded searchable text per product, aligned by
	// index with products.
	haystacks []string
	options   domain.FilterOptions
	provinces int
}

// NewCatalogService builds the snapshot-backed catalog service. The
// searchable text of every product is folded once here so each keystroke
// pays only a substring scan.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, ErrCatalogEmptySnapshot
	}

	haystacks := make([]string, len(deps.Products))
	for i, p := range deps.Products {
		haystacks[i] = textutil.Fold(strings.Join([]string{
			p.Name,
			p.NameLocalized,
			p.Description,
			p.Province,
			p.Category,
			p.Producer,
		}, "\n"))
	}

	return &catalogService{
		products:  deps.Products,
		haystacks: haystacks,
		options:   domain.DeriveFilterOptions(deps.Products),
		provinces: domain.CountProvinces(deps.Products),
	}, nil
}

func (s *catalogService) Products() []domain.Product {
	return s.products
}

// Filter evaluates the four constraints as a conjunction. Text search is
// case and width insensitive; category and province are exact string
// matches; level compares the raw selection against the decimal rendering
// of the product level.
func (s *catalogService) Filter(query domain.QueryState) []domain.Product {
	if query.IsZero() {
		return s.products
	}

	needle := textutil.Fold(query.Search)
	matched := make([]domain.Product, 0, len(s.products))
	for i, p := range s.products {
		if needle != "" && !textutil.ContainsFolded(s.haystacks[i], needle) {
			continue
		}
		if query.Category != "" && p.Category != query.Category {
			continue
		}
		if query.Province != "" && p.Province != query.Province {
			continue
		}
		if query.Level != "" && p.LevelString() != query.Level {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func (s *catalogService) FindByID(id int64) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *catalogService) Options() domain.FilterOptions {
	return s.options
}

func (s *catalogService) Stats(filtered int) domain.CatalogStats {
	return domain.CatalogStats{
		TotalProducts:  len(s.products),
		TotalProvinces: s.provinces,
		Filtered:       filtered,
	}
}
