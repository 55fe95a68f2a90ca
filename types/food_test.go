package types

import "testing"

func TestIdentityKey(t *testing.T) {
	t.Run("BarcodeWins", func(t *testing.T) {
		item := FoodItem{Name: "Oat Crunch", Barcode: "123"}
		if got := item.IdentityKey(); got != "123" {
			t.Errorf("expected the barcode as identity, got %q", got)
		}
	})

	t.Run("NameFallbackIsLowercased", func(t *testing.T) {
		item := FoodItem{Name: "Oat Crunch"}
		if got := item.IdentityKey(); got != "oat crunch" {
			t.Errorf("expected the lower-cased name, got %q", got)
		}
	})
}

func TestParseMealCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want MealCategory
		ok   bool
	}{
		{"BREAKFAST", CategoryBreakfast, true},
		{"lunch", CategoryLunch, true},
		{" Dinner ", CategoryDinner, true},
		{"snack", CategorySnack, true},
		{"brunch", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, err := ParseMealCategory(c.raw)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseMealCategory(%q) = (%q, %v); want %q", c.raw, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseMealCategory(%q) should have failed", c.raw)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := CategoryBreakfast.DisplayName(); got != "Breakfast" {
		t.Errorf("expected 'Breakfast', got %q", got)
	}
	if got := CategorySnack.DisplayName(); got != "Snack" {
		t.Errorf("expected 'Snack', got %q", got)
	}
}
