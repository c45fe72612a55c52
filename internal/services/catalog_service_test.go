package services

import (
	"testing"

	domain "github.com/otop-atlas/api/internal/domain"
)

func geo(lat, long float64) *domain.GeoPoint {
	return &domain.GeoPoint{Lat: lat, Long: long}
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID:            1,
			Name:          "ผ้าพันคอไหมมัดหมี่",
			NameLocalized: "Mudmee Silk Scarf",
			Description:   "ผ้าไหมทอมือ",
			Category:      "ผ้าและเครื่องแต่งกาย",
			Level:         5,
			Province:      "ขอนแก่น",
			Location:      geo(16.0802, 102.6147),
			Price:         1250,
			Currency:      "THB",
			Producer:      "กลุ่มทอผ้าบ้านชนบท",
		},
		{
			ID:            2,
			Name:          "น้ำพริกหนุ่ม",
			NameLocalized: "Nam Prik Num Chili Paste",
			Category:      "อาหาร",
			Level:         4,
			Province:      "เชียงใหม่",
			Location:      geo(18.7904, 98.9847),
			Price:         65,
			Currency:      "THB",
			Producer:      "กลุ่มแม่บ้านศรีภูมิ",
		},
		{
			ID:            3,
			Name:          "กระเป๋าผ้าไหม",
			NameLocalized: "Silk Handbag",
			Category:      "ผ้าและเครื่องแต่งกาย",
			Level:         3,
			Province:      "สุรินทร์",
			Price:         450,
			Currency:      "THB",
			Producer:      "วิสาหกิจชุมชนบ้านท่าสว่าง",
		},
	}
}

func newTestCatalog(t *testing.T) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{Products: sampleProducts()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestNewCatalogServiceRequiresSnapshot(t *testing.T) {
	if _, err := NewCatalogService(CatalogServiceDeps{}); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}

func TestFilterZeroQueryReturnsEverything(t *testing.T) {
	svc := newTestCatalog(t)
	got := svc.Filter(domain.QueryState{})
	if len(got) != 3 {
		t.Fatalf("expected full snapshot, got %d products", len(got))
	}
}

func TestFilterSearchMatchesAcrossFields(t *testing.T) {
	svc := newTestCatalog(t)

	cases := []struct {
		name   string
		search string
		want   []int64
	}{
		{name: "thai name substring", search: "น้ำพริก", want: []int64{2}},
		{name: "localized name case-insensitive", search: "silk", want: []int64{1, 3}},
		{name: "province text", search: "สุรินทร์", want: []int64{3}},
		{name: "producer text", search: "ศรีภูมิ", want: []int64{2}},
		{name: "surrounding whitespace ignored", search: "  SILK  ", want: []int64{1, 3}},
		{name: "no match", search: "เซรามิก", want: []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(svc.Filter(domain.QueryState{Search: tc.search}))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestFilterConstraintsAreConjunctive(t *testing.T) {
	svc := newTestCatalog(t)

	got := svc.Filter(domain.QueryState{
		Search:   "silk",
		Category: "ผ้าและเครื่องแต่งกาย",
		Province: "ขอนแก่น",
	})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected product 1 only, got %v", ids(got))
	}
}

func TestFilterLevelComparesRawStrings(t *testing.T) {
	svc := newTestCatalog(t)

	if got := svc.Filter(domain.QueryState{Level: "4"}); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected product 2, got %v", ids(got))
	}
	// A non-canonical selection string never matches even when numerically
	// equal.
	if got := svc.Filter(domain.QueryState{Level: "04"}); len(got) != 0 {
		t.Fatalf("expected no matches for %q, got %v", "04", ids(got))
	}
}

func TestFilterPreservesDatasetOrder(t *testing.T) {
	svc := newTestCatalog(t)

	got := ids(svc.Filter(domain.QueryState{Category: "ผ้าและเครื่องแต่งกาย"}))
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected dataset order [1 3], got %v", got)
	}
}

func TestFindByIDReturnsFirstMatch(t *testing.T) {
	products := sampleProducts()
	products = append(products, domain.Product{
		ID:       1,
		Name:     "ซ้ำ",
		Category: "อาหาร",
		Province: "น่าน",
	})
	svc, err := NewCatalogService(CatalogServiceDeps{Products: products})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, ok := svc.FindByID(1)
	if !ok || p.Name != "ผ้าพันคอไหมมัดหมี่" {
		t.Fatalf("expected first record for duplicate id, got %+v ok=%v", p, ok)
	}
	if _, ok := svc.FindByID(999); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestOptions(t *testing.T) {
	svc := newTestCatalog(t)
	opts := svc.Options()

	if len(opts.Categories) != 2 || opts.Categories[0] != "ผ้าและเครื่องแต่งกาย" || opts.Categories[1] != "อาหาร" {
		t.Fatalf("expected first-seen category order, got %v", opts.Categories)
	}
	if len(opts.Provinces) != 3 || opts.Provinces[0] != "ขอนแก่น" {
		t.Fatalf("expected sorted provinces, got %v", opts.Provinces)
	}
	if len(opts.Levels) != 5 || opts.Levels[0] != 1 || opts.Levels[4] != 5 {
		t.Fatalf("expected levels 1..5, got %v", opts.Levels)
	}
}

func TestStats(t *testing.T) {
	svc := newTestCatalog(t)

	stats := svc.Stats(1)
	if stats.TotalProducts != 3 || stats.TotalProvinces != 3 || stats.Filtered != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
