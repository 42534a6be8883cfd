package models

import (
	"encoding/json"
	"testing"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SortKey
	}{
		{"price ascending", "price_asc", SortPriceAsc},
		{"name descending", "name_desc", SortNameDesc},
		{"expiry ascending", "expiry_asc", SortExpiryAsc},
		{"empty falls back", "", SortDefault},
		{"unknown falls back", "magic", SortDefault},
		{"case sensitive", "PRICE_ASC", SortDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSortKey(tt.in); got != tt.want {
				t.Errorf("ParseSortKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterCriteriaIsZero(t *testing.T) {
	if !(FilterCriteria{}).IsZero() {
		t.Error("empty criteria should be zero")
	}

	price := "10.00"
	qty := 0
	tests := []struct {
		name     string
		criteria FilterCriteria
	}{
		{"search term", FilterCriteria{SearchTerm: "amox"}},
		{"manufacturers", FilterCriteria{Manufacturers: []string{"Pfizer"}}},
		{"price max", FilterCriteria{PriceMax: &price}},
		{"zero quantity min still counts", FilterCriteria{QuantityMin: &qty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.criteria.IsZero() {
				t.Error("criteria with a constraint should not be zero")
			}
		})
	}
}

// Watchlist criteria are persisted as JSON; a saved search must deserialize
// back to exactly what was stored.
func TestFilterCriteriaJSONRoundTrip(t *testing.T) {
	price := "99.99"
	days := 30
	original := FilterCriteria{
		SearchTerm:          "insulin",
		Manufacturers:       []string{"Novo Nordisk", "Eli Lilly"},
		PriceMax:            &price,
		ExpiryDaysThreshold: &days,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored FilterCriteria
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.SearchTerm != original.SearchTerm {
		t.Errorf("search term = %q, want %q", restored.SearchTerm, original.SearchTerm)
	}
	if len(restored.Manufacturers) != 2 {
		t.Fatalf("manufacturers = %v, want 2 entries", restored.Manufacturers)
	}
	if restored.PriceMax == nil || *restored.PriceMax != price {
		t.Errorf("price max = %v, want %q", restored.PriceMax, price)
	}
	if restored.QuantityMin != nil {
		t.Errorf("quantity min should stay nil, got %v", *restored.QuantityMin)
	}
	if restored.ExpiryDaysThreshold == nil || *restored.ExpiryDaysThreshold != days {
		t.Errorf("expiry threshold = %v, want %d", restored.ExpiryDaysThreshold, days)
	}
}

func TestRecordStatusValid(t *testing.T) {
	for _, s := range []RecordStatus{StatusAvailable, StatusReserved, StatusSold} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []RecordStatus{"", "expired", "Available"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}
