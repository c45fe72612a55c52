package repositories

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	domain "github.com/otop-atlas/api/internal/domain"
)

// productRecord mirrors the dataset document wire format.
type productRecord struct {
	ID            *int64   `json:"id"`
	Name          string   `json:"name"`
	NameEN        string   `json:"name_en"`
	Description   string   `json:"description"`
	DescriptionEN string   `json:"description_en"`
	Category      string   `json:"category"`
	Level         *int     `json:"otop_level"`
	Province      string   `json:"province"`
	District      string   `json:"district"`
	Subdistrict   string   `json:"tambon"`
	Lat           *float64 `json:"lat"`
	Long          *float64 `json:"long"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency"`
	Producer      string   `json:"producer"`
	ProducerEN    string   `json:"producer_en"`
	Contact       string   `json:"contact"`
	Certification []string `json:"certification"`
	Image         string   `json:"image"`
}

// DecodeDataset parses and validates a dataset document. The whole load
// fails on the first schema violation; there is no partial result.
func DecodeDataset(r io.Reader) ([]domain.Product, error) {
	var records []productRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetInvalid, err)
	}

	products := make([]domain.Product, 0, len(records))
	for i, rec := range records {
		product, err := rec.toProduct(i)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (r productRecord) toProduct(index int) (domain.Product, error) {
	if r.ID == nil {
		return domain.Product{}, SchemaError{Index: index, Field: "id", Reason: "required"}
	}
	if strings.TrimSpace(r.Name) == "" {
		return domain.Product{}, SchemaError{Index: index, Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(r.Category) == "" {
		return domain.Product{}, SchemaError{Index: index, Field: "category", Reason: "required"}
	}
	if strings.TrimSpace(r.Province) == "" {
		return domain.Product{}, SchemaError{Index: index, Field: "province", Reason: "required"}
	}

	level := 0
	if r.Level != nil {
		level = *r.Level
		if level < 1 || level > domain.LevelMax {
			return domain.Product{}, SchemaError{
				Index:  index,
				Field:  "otop_level",
				Reason: fmt.Sprintf("must be 1..%d, got %d", domain.LevelMax, level),
			}
		}
	}

	price := 0.0
	if r.Price != nil {
		price = *r.Price
		if price < 0 {
			return domain.Product{}, SchemaError{Index: index, Field: "price", Reason: "must be non-negative"}
		}
	}

	// A record needs both coordinates to place a marker; a lone value is
	// treated as absent rather than failing the load, but out-of-range
	// values are schema violations.
	var location *domain.GeoPoint
	if r.Lat != nil && r.Long != nil {
		point := domain.GeoPoint{Lat: *r.Lat, Long: *r.Long}
		if !point.Valid() {
			return domain.Product{}, SchemaError{
				Index:  index,
				Field:  "lat,long",
				Reason: fmt.Sprintf("out of world bounds: %v,%v", point.Lat, point.Long),
			}
		}
		location = &point
	}

	certifications := make([]string, 0, len(r.Certification))
	for _, cert := range r.Certification {
		cert = strings.TrimSpace(cert)
		if cert == "" {
			continue
		}
		certifications = append(certifications, cert)
	}
	if len(certifications) == 0 {
		certifications = nil
	}

	return domain.Product{
		ID:                   *r.ID,
		Name:                 strings.TrimSpace(r.Name),
		NameLocalized:        strings.TrimSpace(r.NameEN),
		Description:          strings.TrimSpace(r.Description),
		DescriptionLocalized: strings.TrimSpace(r.DescriptionEN),
		Category:             strings.TrimSpace(r.Category),
		Level:                level,
		Province:             strings.TrimSpace(r.Province),
		District:             strings.TrimSpace(r.District),
		Subdistrict:          strings.TrimSpace(r.Subdistrict),
		Location:             location,
		Price:                price,
		Currency:             strings.TrimSpace(r.Currency),
		Producer:             strings.TrimSpace(r.Producer),
		ProducerLocalized:    strings.TrimSpace(r.ProducerEN),
		Contact:              strings.TrimSpace(r.Contact),
		Certifications:       certifications,
		Image:                strings.TrimSpace(r.Image),
	}, nil
}
