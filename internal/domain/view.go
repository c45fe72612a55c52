package domain

// CardView is the grid projection of one product.
type CardView struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	NameLocalized string   `json:"nameLocalized,omitempty"`
	Category      string   `json:"category"`
	Level         int      `json:"level,omitempty"`
	Stars         string   `json:"stars,omitempty"`
	Location      string   `json:"location"`
	Price         string   `json:"price"`
	Description   string   `json:"description,omitempty"`
	Certification []string `json:"certification,omitempty"`
	ImageURL      string   `json:"imageUrl"`
}

// CatalogView is the rendered card grid. Empty distinguishes the explicit
// no-results state from a grid that simply has zero cards so far.
type CatalogView struct {
	Empty bool       `json:"empty"`
	Cards []CardView `json:"cards"`
}

// DetailView is the modal projection of one product.
type DetailView struct {
	CardView
	DescriptionLocalized string    `json:"descriptionLocalized,omitempty"`
	Producer             string    `json:"producer,omitempty"`
	ProducerLocalized    string    `json:"producerLocalized,omitempty"`
	Contact              string    `json:"contact,omitempty"`
	Subdistrict          string    `json:"subdistrict,omitempty"`
	District             string    `json:"district,omitempty"`
	Province             string    `json:"province,omitempty"`
	Coordinates          *GeoPoint `json:"coordinates,omitempty"`
}

// MapSummary is the degraded map rendering used while the provider widget
// is absent or not yet initialised. It always reflects the current
// filtered subset, never the full dataset.
type MapSummary struct {
	Count    int      `json:"count"`
	Entries  []string `json:"entries"`
	Overflow int      `json:"overflow,omitempty"`
}

// BrowseView is the fully materialised state of one browse session.
type BrowseView struct {
	Query   QueryState   `json:"query"`
	Catalog CatalogView  `json:"catalog"`
	Stats   CatalogStats `json:"stats"`
	Map     MapSummary   `json:"map"`
}
