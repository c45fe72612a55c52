// Package jsonfile loads the product catalog from a JSON document on the
// local filesystem.
package jsonfile

import (
	"context"
	"fmt"
	"os"

	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/repositories"
)

// Source reads the dataset from a file path.
type Source struct {
	path string
}

// NewSource builds a file-backed catalog source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Load implements repositories.CatalogSource.
func (s *Source) Load(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", repositories.ErrDatasetUnavailable, s.path, err)
	}
	defer file.Close()

	products, err := repositories.DecodeDataset(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return products, nil
}

// Describe implements repositories.CatalogSource.
func (s *Source) Describe() string {
	return fmt.Sprintf("file:%s", s.path)
}
