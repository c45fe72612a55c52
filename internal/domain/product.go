package domain

import (
	"sort"
	"strconv"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Valid reports whether the point lies inside world bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Long >= -180 && p.Long <= 180
}

// LevelMax is the highest certification level a product can carry.
const LevelMax = 5

// Product is a single catalog record. Products are immutable once the
// dataset snapshot has been loaded; every field is read-only afterwards.
type Product struct {
	ID int64

	Name          string
	NameLocalized string
	Description   string
	// DescriptionLocalized is shown on the detail view only and is not a
	// search target.
	DescriptionLocalized string

	Category string
	// Level is the certification tier (1..LevelMax). Zero means unrated.
	Level int

	Province    string
	District    string
	Subdistrict string
	// Location is nil when the record ships without usable coordinates.
	Location *GeoPoint

	Price    float64
	Currency string

	Producer          string
	ProducerLocalized string
	Contact           string

	// Certifications keeps the order the dataset declares.
	Certifications []string

	Image string
}

// LevelString renders the level the way the level filter compares it.
func (p Product) LevelString() string {
	return strconv.Itoa(p.Level)
}

// QueryState carries the four independent browse inputs. The zero value is
// the unconstrained query.
type QueryState struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Province string `json:"province"`
	// Level holds the raw selection string; it is compared against the
	// decimal rendering of the product level, never converted to a number.
	Level string `json:"level"`
}

// IsZero reports whether no constraint is active.
func (q QueryState) IsZero() bool {
	return q.Search == "" && q.Category == "" && q.Province == "" && q.Level == ""
}

// FilterOptions lists the selectable values derived from the dataset.
// Categories keep first-seen order, provinces are sorted, levels are the
// fixed certification range.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Provinces  []string `json:"provinces"`
	Levels     []int    `json:"levels"`
}

// CatalogStats summarises the dataset and the current filtered subset.
type CatalogStats struct {
	TotalProducts  int `json:"totalProducts"`
	TotalProvinces int `json:"totalProvinces"`
	Filtered       int `json:"filteredProducts"`
}

// DeriveFilterOptions scans the snapshot once and builds the option lists.
func DeriveFilterOptions(products []Product) FilterOptions {
	var opts FilterOptions
	seenCategories := make(map[string]struct{})
	seenProvinces := make(map[string]struct{})
	for _, p := range products {
		if p.Category != "" {
			if _, ok := seenCategories[p.Category]; !ok {
				seenCategories[p.Category] = struct{}{}
				opts.Categories = append(opts.Categories, p.Category)
			}
		}
		if p.Province != "" {
			if _, ok := seenProvinces[p.Province]; !ok {
				seenProvinces[p.Province] = struct{}{}
				opts.Provinces = append(opts.Provinces, p.Province)
			}
		}
	}
	sort.Strings(opts.Provinces)
	for level := 1; level <= LevelMax; level++ {
		opts.Levels = append(opts.Levels, level)
	}
	return opts
}

// CountProvinces returns the number of distinct provinces in the snapshot.
func CountProvinces(products []Product) int {
	seen := make(map[string]struct{})
	for _, p := range products {
		if p.Province == "" {
			continue
		}
		seen[p.Province] = struct{}{}
	}
	return len(seen)
}
