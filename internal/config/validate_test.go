package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestParseCategoryMarkups(t *testing.T) {
	table, err := ParseCategoryMarkups("Fruit & Veg:1.75, Fridge & Freezer:1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table) != 2 {
		t.Fatalf("len = %d, want 2", len(table))
	}
	if !table["Fruit & Veg"].Equal(mustDec(t, "1.75")) {
		t.Errorf("Fruit & Veg = %s, want 1.75", table["Fruit & Veg"])
	}
	if !table["Fridge & Freezer"].Equal(mustDec(t, "1.5")) {
		t.Errorf("Fridge & Freezer = %s, want 1.5", table["Fridge & Freezer"])
	}
}

func TestParseCategoryMarkups_Empty(t *testing.T) {
	table, err := ParseCategoryMarkups("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("len = %d, want 0", len(table))
	}
}

func TestParseCategoryMarkups_CategoryMayContainColon(t *testing.T) {
	// The multiplier sits after the LAST colon, so category names may
	// themselves contain one.
	table, err := ParseCategoryMarkups("Deli: Hot Food:1.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table["Deli: Hot Food"].Equal(mustDec(t, "1.4")) {
		t.Errorf("Deli: Hot Food = %s, want 1.4", table["Deli: Hot Food"])
	}
}

func TestParseCategoryMarkups_Malformed(t *testing.T) {
	cases := []string{
		"NoMultiplier",
		":1.5",
		"Fruit & Veg:zero",
		"Fruit & Veg:0",
		"Fruit & Veg:-1.2",
	}
	for _, raw := range cases {
		if _, err := ParseCategoryMarkups(raw); err == nil {
			t.Errorf("ParseCategoryMarkups(%q): expected error", raw)
		}
	}
}
