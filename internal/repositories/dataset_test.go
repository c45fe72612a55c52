package repositories

import (
	"errors"
	"strings"
	"testing"
)

const validDataset = `[
  {
    "id": 1,
    "name": "ผ้าไหมมัดหมี่",
    "name_en": "Mudmee Silk Scarf",
    "description": "ผ้าไหมทอมือ",
    "description_en": "Handwoven silk",
    "category": "ผ้าและเครื่องแต่งกาย",
    "otop_level": 5,
    "province": "ขอนแก่น",
    "district": "ชนบท",
    "tambon": "ชนบท",
    "lat": 16.0802,
    "long": 102.6147,
    "price": 1250,
    "currency": "THB",
    "producer": "กลุ่มทอผ้าบ้านชนบท",
    "producer_en": "Ban Chonnabot Weaving Group",
    "contact": "043-286-160",
    "certification": ["มผช.", " OTOP 5 ดาว "],
    "image": "https://example.com/silk.jpg"
  },
  {
    "id": 2,
    "name": "น้ำพริกหนุ่ม",
    "category": "อาหาร",
    "province": "เชียงใหม่"
  }
]`

func TestDecodeDataset(t *testing.T) {
	products, err := DecodeDataset(strings.NewReader(validDataset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	silk := products[0]
	if silk.ID != 1 || silk.Name != "ผ้าไหมมัดหมี่" || silk.NameLocalized != "Mudmee Silk Scarf" {
		t.Fatalf("unexpected first product: %+v", silk)
	}
	if silk.Level != 5 || silk.Province != "ขอนแก่น" || silk.Subdistrict != "ชนบท" {
		t.Fatalf("unexpected first product fields: %+v", silk)
	}
	if silk.Location == nil || silk.Location.Lat != 16.0802 || silk.Location.Long != 102.6147 {
		t.Fatalf("unexpected location: %+v", silk.Location)
	}
	if len(silk.Certifications) != 2 || silk.Certifications[1] != "OTOP 5 ดาว" {
		t.Fatalf("expected trimmed certifications, got %v", silk.Certifications)
	}

	chili := products[1]
	if chili.Level != 0 {
		t.Fatalf("missing level should read as unrated, got %d", chili.Level)
	}
	if chili.Location != nil {
		t.Fatalf("missing coordinates should leave location nil, got %+v", chili.Location)
	}
	if chili.Price != 0 {
		t.Fatalf("missing price should read as zero, got %v", chili.Price)
	}
}

func TestDecodeDatasetRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeDataset(strings.NewReader(`{"not":"an array"`))
	if !errors.Is(err, ErrDatasetInvalid) {
		t.Fatalf("expected ErrDatasetInvalid, got %v", err)
	}
}

func TestDecodeDatasetSchemaViolations(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing id",
			doc:   `[{"name":"x","category":"c","province":"p"}]`,
			field: "id",
		},
		{
			name:  "blank name",
			doc:   `[{"id":1,"name":"  ","category":"c","province":"p"}]`,
			field: "name",
		},
		{
			name:  "missing category",
			doc:   `[{"id":1,"name":"x","province":"p"}]`,
			field: "category",
		},
		{
			name:  "missing province",
			doc:   `[{"id":1,"name":"x","category":"c"}]`,
			field: "province",
		},
		{
			name:  "level out of range",
			doc:   `[{"id":1,"name":"x","category":"c","province":"p","otop_level":7}]`,
			field: "otop_level",
		},
		{
			name:  "negative price",
			doc:   `[{"id":1,"name":"x","category":"c","province":"p","price":-5}]`,
			field: "price",
		},
		{
			name:  "latitude out of bounds",
			doc:   `[{"id":1,"name":"x","category":"c","province":"p","lat":95.0,"long":100.0}]`,
			field: "lat,long",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDataset(strings.NewReader(tc.doc))
			if err == nil {
				t.Fatalf("expected schema error")
			}
			var schemaErr SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, schemaErr.Field)
			}
			if !errors.Is(err, ErrDatasetInvalid) {
				t.Fatalf("schema error should classify as ErrDatasetInvalid")
			}
		})
	}
}

func TestDecodeDatasetKeepsOneSidedCoordinatesAbsent(t *testing.T) {
	doc := `[{"id":1,"name":"x","category":"c","province":"p","lat":16.08}]`
	products, err := DecodeDataset(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products[0].Location != nil {
		t.Fatalf("expected nil location for one-sided coordinates, got %+v", products[0].Location)
	}
}
