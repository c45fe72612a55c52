package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	domain "github.com/otop-atlas/api/internal/domain"
)

// ViewRendererDeps bundles constructor inputs for the view renderer.
type ViewRendererDeps struct {
	// AssetBaseURL prefixes relative image references. Absolute URLs pass
	// through untouched.
	AssetBaseURL string
	// PlaceholderImage replaces a missing product image URL.
	PlaceholderImage string
	// Locale drives thousands grouping in price rendering. Defaults to Thai.
	Locale language.Tag
}

type viewRenderer struct {
	policy      *bluemonday.Policy
	assetBase   string
	placeholder string
	printer     *message.Printer
}

// NewViewRenderer builds the renderer. Free-text dataset fields pass
// through a strict sanitizer before they reach any client surface.
func NewViewRenderer(deps ViewRendererDeps) ViewRenderer {
	locale := deps.Locale
	if locale == language.Und {
		locale = language.Thai
	}
	return &viewRenderer{
		policy:      bluemonday.StrictPolicy(),
		assetBase:   strings.TrimRight(deps.AssetBaseURL, "/"),
		placeholder: deps.PlaceholderImage,
		printer:     message.NewPrinter(locale),
	}
}

func (r *viewRenderer) RenderCatalog(products []domain.Product) domain.CatalogView {
	view := domain.CatalogView{Cards: make([]domain.CardView, 0, len(products))}
	if len(products) == 0 {
		view.Empty = true
		return view
	}
	for _, p := range products {
		view.Cards = append(view.Cards, r.RenderCard(p))
	}
	return view
}

func (r *viewRenderer) RenderCard(p domain.Product) domain.CardView {
	return domain.CardView{
		ID:            p.ID,
		Name:          r.sanitize(p.Name),
		NameLocalized: r.sanitize(p.NameLocalized),
		Category:      r.sanitize(p.Category),
		Level:         p.Level,
		Stars:         strings.Repeat("★", p.Level),
		Location:      r.cardLocation(p),
		Price:         r.formatPrice(p),
		Description:   r.sanitize(p.Description),
		Certification: r.sanitizeAll(p.Certifications),
		ImageURL:      r.imageURL(p),
	}
}

func (r *viewRenderer) RenderDetail(p domain.Product) domain.DetailView {
	return domain.DetailView{
		CardView:             r.RenderCard(p),
		DescriptionLocalized: r.sanitize(p.DescriptionLocalized),
		Producer:             r.sanitize(p.Producer),
		ProducerLocalized:    r.sanitize(p.ProducerLocalized),
		Contact:              r.sanitize(p.Contact),
		Subdistrict:          r.sanitize(p.Subdistrict),
		District:             r.sanitize(p.District),
		Province:             r.sanitize(p.Province),
		Coordinates:          p.Location,
	}
}

// cardLocation renders "province, district", dropping whichever side is
// absent.
func (r *viewRenderer) cardLocation(p domain.Product) string {
	parts := make([]string, 0, 2)
	if p.Province != "" {
		parts = append(parts, r.sanitize(p.Province))
	}
	if p.District != "" {
		parts = append(parts, r.sanitize(p.District))
	}
	return strings.Join(parts, ", ")
}

func (r *viewRenderer) formatPrice(p domain.Product) string {
	if p.Price == 0 && p.Currency == "" {
		return ""
	}
	formatted := r.printer.Sprint(number.Decimal(p.Price))
	if p.Currency == "" {
		return formatted
	}
	return formatted + " " + p.Currency
}

func (r *viewRenderer) imageURL(p domain.Product) string {
	image := strings.TrimSpace(p.Image)
	if image == "" {
		return r.placeholder
	}
	if r.assetBase != "" && !strings.Contains(image, "://") {
		return r.assetBase + "/" + strings.TrimLeft(image, "/")
	}
	return image
}

func (r *viewRenderer) sanitize(value string) string {
	if value == "" {
		return ""
	}
	return strings.TrimSpace(r.policy.Sanitize(value))
}

func (r *viewRenderer) sanitizeAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := r.sanitize(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
