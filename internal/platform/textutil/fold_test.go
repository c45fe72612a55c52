package textutil

import "testing"

func TestFold(t *testing.T) {
	t.Run("trims and lowercases", func(t *testing.T) {
		if got, want := Fold("  Organic RICE  "), "organic rice"; got != want {
			t.Fatalf("expected %q got %q", want, got)
		}
	})

	t.Run("collapses width variants", func(t *testing.T) {
		if got, want := Fold("ＲＩＣＥ"), "rice"; got != want {
			t.Fatalf("expected %q got %q", want, got)
		}
	})

	t.Run("keeps thai text intact", func(t *testing.T) {
		if got, want := Fold(" ข้าวหอมมะลิ "), "ข้าวหอมมะลิ"; got != want {
			t.Fatalf("expected %q got %q", want, got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if Fold("   ") != "" {
			t.Fatalf("expected empty fold for blank input")
		}
	})
}

func TestContainsFold(t *testing.T) {
	cases := []struct {
		name     string
		haystack string
		needle   string
		want     bool
	}{
		{"case insensitive", "Organic Rice", "RICE", true},
		{"substring not word boundary", "Silk Scarf", "ilk", true},
		{"empty needle matches", "anything", "", true},
		{"empty haystack never matches", "", "rice", false},
		{"no match", "Chili Paste", "silk", false},
		{"thai substring", "ข้าวหอมมะลิอินทรีย์", "หอมมะลิ", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContainsFold(tc.haystack, tc.needle); got != tc.want {
				t.Fatalf("ContainsFold(%q, %q) = %v, want %v", tc.haystack, tc.needle, got, tc.want)
			}
		})
	}
}
