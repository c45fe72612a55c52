package repositories

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/otop-atlas/api/internal/domain"
)

// CatalogSource supplies the product dataset. A source is read at most
// once per process; there is no retry and no partial result. The returned
// slice is owned by the caller and never mutated by the source afterwards.
type CatalogSource interface {
	// Load reads and validates the full dataset document.
	Load(ctx context.Context) ([]domain.Product, error)
	// Describe names the source for logs and error reports.
	Describe() string
}

var (
	// ErrDatasetUnavailable indicates the dataset document could not be read.
	ErrDatasetUnavailable = errors.New("catalog source: dataset unavailable")
	// ErrDatasetInvalid indicates the dataset document violates the schema.
	ErrDatasetInvalid = errors.New("catalog source: dataset invalid")
)

// SchemaError reports the first schema violation found in a dataset
// document, located by record index and field.
type SchemaError struct {
	Index  int
	Field  string
	Reason string
}

// Error implements error.
func (e SchemaError) Error() string {
	return fmt.Sprintf("catalog source: record %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// Unwrap classifies schema errors under ErrDatasetInvalid.
func (e SchemaError) Unwrap() error { return ErrDatasetInvalid }
