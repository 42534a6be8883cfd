package handlers

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/atlaspharma/atlas-api/internal/models"
)

// runParseCriteria exercises parseCriteria through a real request so query
// handling matches production behavior.
func runParseCriteria(t *testing.T, target string) (models.FilterCriteria, error) {
	t.Helper()

	var criteria models.FilterCriteria
	var parseErr error

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		criteria, parseErr = parseCriteria(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	return criteria, parseErr
}

func TestParseCriteria(t *testing.T) {
	criteria, err := runParseCriteria(t,
		"/?search=amox&manufacturers=Pfizer,%20Bayer&dosage_forms=tablet&price_min=1.50&quantity_max=200&expiry_days=30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if criteria.SearchTerm != "amox" {
		t.Errorf("search term = %q, want %q", criteria.SearchTerm, "amox")
	}
	if want := []string{"Pfizer", "Bayer"}; !reflect.DeepEqual(criteria.Manufacturers, want) {
		t.Errorf("manufacturers = %v, want %v", criteria.Manufacturers, want)
	}
	if want := []string{"tablet"}; !reflect.DeepEqual(criteria.DosageForms, want) {
		t.Errorf("dosage forms = %v, want %v", criteria.DosageForms, want)
	}
	if criteria.PriceMin == nil || *criteria.PriceMin != "1.50" {
		t.Errorf("price min = %v, want 1.50", criteria.PriceMin)
	}
	if criteria.PriceMax != nil {
		t.Errorf("price max should be nil, got %v", *criteria.PriceMax)
	}
	if criteria.QuantityMax == nil || *criteria.QuantityMax != 200 {
		t.Errorf("quantity max = %v, want 200", criteria.QuantityMax)
	}
	if criteria.ExpiryDaysThreshold == nil || *criteria.ExpiryDaysThreshold != 30 {
		t.Errorf("expiry days = %v, want 30", criteria.ExpiryDaysThreshold)
	}
}

func TestParseCriteriaEmpty(t *testing.T) {
	criteria, err := runParseCriteria(t, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !criteria.IsZero() {
		t.Errorf("expected zero criteria, got %+v", criteria)
	}
}

func TestParseCriteriaRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"non-decimal price_min", "/?price_min=cheap"},
		{"non-decimal price_max", "/?price_max=12.x"},
		{"non-integer quantity_min", "/?quantity_min=many"},
		{"non-integer quantity_max", "/?quantity_max=1.5"},
		{"non-integer expiry_days", "/?expiry_days=soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runParseCriteria(t, tt.target); err == nil {
				t.Errorf("expected error for %q", tt.target)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Pfizer", []string{"Pfizer"}},
		{"trims whitespace", " Pfizer , Bayer ", []string{"Pfizer", "Bayer"}},
		{"drops empty segments", "Pfizer,,Bayer,", []string{"Pfizer", "Bayer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
