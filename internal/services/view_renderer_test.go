package services

import (
	"testing"

	domain "github.com/otop-atlas/api/internal/domain"
)

const testPlaceholder = "https://via.placeholder.com/300x200?text=No+Image"

func newTestRenderer() ViewRenderer {
	return NewViewRenderer(ViewRendererDeps{PlaceholderImage: testPlaceholder})
}

func TestRenderCard(t *testing.T) {
	renderer := newTestRenderer()

	card := renderer.RenderCard(domain.Product{
		ID:            1,
		Name:          "ผ้าพันคอไหมมัดหมี่",
		NameLocalized: "Mudmee Silk Scarf",
		Category:      "ผ้าและเครื่องแต่งกาย",
		Level:         5,
		Province:      "ขอนแก่น",
		District:      "ชนบท",
		Price:         1250,
		Currency:      "THB",
		Image:         "https://example.com/silk.jpg",
	})

	if card.Stars != "★★★★★" {
		t.Fatalf("expected five stars, got %q", card.Stars)
	}
	if card.Location != "ขอนแก่น, ชนบท" {
		t.Fatalf("unexpected location %q", card.Location)
	}
	if card.Price != "1,250 THB" {
		t.Fatalf("unexpected price %q", card.Price)
	}
	if card.ImageURL != "https://example.com/silk.jpg" {
		t.Fatalf("unexpected image %q", card.ImageURL)
	}
}

func TestRenderCardFallbacks(t *testing.T) {
	renderer := newTestRenderer()

	card := renderer.RenderCard(domain.Product{
		ID:       2,
		Name:     "น้ำพริกหนุ่ม",
		Category: "อาหาร",
		Province: "เชียงใหม่",
	})

	if card.Stars != "" {
		t.Fatalf("unrated product must not show stars, got %q", card.Stars)
	}
	if card.Location != "เชียงใหม่" {
		t.Fatalf("expected province-only location, got %q", card.Location)
	}
	if card.Price != "" {
		t.Fatalf("expected empty price, got %q", card.Price)
	}
	if card.ImageURL != testPlaceholder {
		t.Fatalf("expected placeholder image, got %q", card.ImageURL)
	}
}

func TestRenderCardResolvesRelativeImages(t *testing.T) {
	renderer := NewViewRenderer(ViewRendererDeps{
		AssetBaseURL:     "https://cdn.example.com/otop/",
		PlaceholderImage: testPlaceholder,
	})

	card := renderer.RenderCard(domain.Product{
		ID:       4,
		Name:     "x",
		Category: "อาหาร",
		Province: "น่าน",
		Image:    "images/chili.jpg",
	})
	if card.ImageURL != "https://cdn.example.com/otop/images/chili.jpg" {
		t.Fatalf("unexpected image %q", card.ImageURL)
	}

	card = renderer.RenderCard(domain.Product{
		ID:       5,
		Name:     "y",
		Category: "อาหาร",
		Province: "น่าน",
		Image:    "https://example.com/absolute.jpg",
	})
	if card.ImageURL != "https://example.com/absolute.jpg" {
		t.Fatalf("absolute url must pass through, got %q", card.ImageURL)
	}
}

func TestRenderCardStripsMarkup(t *testing.T) {
	renderer := newTestRenderer()

	card := renderer.RenderCard(domain.Product{
		ID:          3,
		Name:        "<b>ชื่อ</b>",
		Description: `<script>alert("x")</script>คำอธิบาย`,
		Category:    "อาหาร",
		Province:    "น่าน",
	})

	if card.Name != "ชื่อ" {
		t.Fatalf("expected tags stripped from name, got %q", card.Name)
	}
	if card.Description != "คำอธิบาย" {
		t.Fatalf("expected script removed from description, got %q", card.Description)
	}
}

func TestRenderCatalogEmptyState(t *testing.T) {
	renderer := newTestRenderer()

	view := renderer.RenderCatalog(nil)
	if !view.Empty {
		t.Fatalf("expected explicit empty state")
	}
	if len(view.Cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(view.Cards))
	}

	view = renderer.RenderCatalog(sampleProducts())
	if view.Empty {
		t.Fatalf("non-empty result must not set the empty flag")
	}
	if len(view.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(view.Cards))
	}
}

func TestRenderDetail(t *testing.T) {
	renderer := newTestRenderer()

	product := domain.Product{
		ID:                   1,
		Name:                 "ผ้าพันคอไหมมัดหมี่",
		DescriptionLocalized: "Handwoven silk",
		Category:             "ผ้าและเครื่องแต่งกาย",
		Province:             "ขอนแก่น",
		District:             "ชนบท",
		Subdistrict:          "ชนบท",
		Producer:             "กลุ่มทอผ้าบ้านชนบท",
		Contact:              "043-286-160",
		Location:             &domain.GeoPoint{Lat: 16.0802, Long: 102.6147},
	}

	detail := renderer.RenderDetail(product)
	if detail.Province != "ขอนแก่น" || detail.Subdistrict != "ชนบท" {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if detail.Coordinates == nil || detail.Coordinates.Lat != 16.0802 {
		t.Fatalf("expected coordinates carried through, got %+v", detail.Coordinates)
	}
	if detail.DescriptionLocalized != "Handwoven silk" {
		t.Fatalf("unexpected localized description %q", detail.DescriptionLocalized)
	}
}
