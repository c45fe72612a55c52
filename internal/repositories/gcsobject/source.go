// Package gcsobject loads the product catalog from a JSON document stored
// in a Cloud Storage bucket.
package gcsobject

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	domain "github.com/otop-atlas/api/internal/domain"
	"github.com/otop-atlas/api/internal/repositories"
	"google.golang.org/api/option"
)

// Source reads the dataset from a bucket object.
type Source struct {
	client     *storage.Client
	ownsClient bool
	bucket     string
	object     string
}

// SourceOption customises Source construction.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	client     *storage.Client
	clientOpts []option.ClientOption
}

// WithClient injects a preconfigured storage client (primarily for tests).
func WithClient(client *storage.Client) SourceOption {
	return func(cfg *sourceConfig) {
		cfg.client = client
	}
}

// WithClientOptions forwards Cloud client options when constructing the client.
func WithClientOptions(opts ...option.ClientOption) SourceOption {
	return func(cfg *sourceConfig) {
		cfg.clientOpts = append(cfg.clientOpts, opts...)
	}
}

// NewSource builds a bucket-backed catalog source.
func NewSource(ctx context.Context, bucket, object string, opts ...SourceOption) (*Source, error) {
	if bucket == "" || object == "" {
		return nil, errors.New("gcsobject: bucket and object are required")
	}

	cfg := sourceConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Source{bucket: bucket, object: object}
	if cfg.client != nil {
		s.client = cfg.client
	} else {
		client, err := storage.NewClient(ctx, cfg.clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("gcsobject: create client: %w", err)
		}
		s.client = client
		s.ownsClient = true
	}
	return s, nil
}

// Close releases the storage client when the source owns it.
func (s *Source) Close() error {
	if s.ownsClient && s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Load implements repositories.CatalogSource.
func (s *Source) Load(ctx context.Context) ([]domain.Product, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read gs://%s/%s: %v", repositories.ErrDatasetUnavailable, s.bucket, s.object, err)
	}
	defer reader.Close()

	products, err := repositories.DecodeDataset(reader)
	if err != nil {
		return nil, fmt.Errorf("decode gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return products, nil
}

// Describe implements repositories.CatalogSource.
func (s *Source) Describe() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}
