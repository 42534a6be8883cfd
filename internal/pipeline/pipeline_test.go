package pipeline

import (
	"testing"
	"time"

	"github.com/atlaspharma/atlas-api/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func rec(id int, brand, manufacturer, form, price string, qty int, expiresInDays int) models.InventoryRecord {
	return models.InventoryRecord{
		ID: id,
		Pharmaceutical: models.Pharmaceutical{
			BrandName:    brand,
			GenericName:  brand + " generic",
			Manufacturer: manufacturer,
			DosageForm:   form,
			NDCCode:      "0000-0000",
		},
		Quantity:   qty,
		UnitPrice:  price,
		ExpiryDate: testNow.Add(time.Duration(expiresInDays) * 24 * time.Hour),
		Status:     models.StatusAvailable,
	}
}

func ids(records []models.InventoryRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestApplyScenarioMaxPriceSortAsc(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "Amoxil", "Pfizer", "tablet", "10.00", 5, 3),
		rec(2, "Lipitor", "Pfizer", "tablet", "5.00", 20, 400),
	}

	result := ApplyAt(testNow, records, models.FilterCriteria{PriceMax: strPtr("8")}, models.SortPriceAsc)

	if len(result.Records) != 1 || result.Records[0].ID != 2 {
		t.Fatalf("expected only record 2, got %v", ids(result.Records))
	}
	if result.Stats.TotalCount != 1 {
		t.Errorf("expected total_count 1, got %d", result.Stats.TotalCount)
	}
	if result.Stats.AveragePrice != "5.00" {
		t.Errorf("expected average_price 5.00, got %s", result.Stats.AveragePrice)
	}
	if result.Stats.ExpiringSoonCount != 0 {
		t.Errorf("expected expiring_soon_count 0 (400 days out), got %d", result.Stats.ExpiringSoonCount)
	}
}

func TestApplySearchTerm(t *testing.T) {
	records := []models.InventoryRecord{
		{ID: 1, Pharmaceutical: models.Pharmaceutical{BrandName: "Amoxil", GenericName: "amoxicillin", Manufacturer: "GSK", NDCCode: "0029-6006"}},
		{ID: 2, Pharmaceutical: models.Pharmaceutical{BrandName: "Lipitor", GenericName: "atorvastatin", Manufacturer: "Pfizer", NDCCode: "0071-0155"}},
	}

	testCases := []struct {
		name   string
		term   string
		expect []int
	}{
		{"case-insensitive brand substring", "amox", []int{1}},
		{"generic name match", "ATORVA", []int{2}},
		{"manufacturer match", "pfizer", []int{2}},
		{"ndc match", "0029", []int{1}},
		{"no match", "insulin", []int{}},
		{"empty term matches all", "", []int{1, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ApplyAt(testNow, records, models.FilterCriteria{SearchTerm: tc.term}, models.SortDefault)
			got := ids(result.Records)
			if len(got) != len(tc.expect) {
				t.Fatalf("expected %v, got %v", tc.expect, got)
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Fatalf("expected %v, got %v", tc.expect, got)
				}
			}
		})
	}
}

func TestApplyEmptyInput(t *testing.T) {
	result := ApplyAt(testNow, nil, models.FilterCriteria{SearchTerm: "anything"}, models.SortPriceDesc)

	if len(result.Records) != 0 {
		t.Fatalf("expected empty output, got %d records", len(result.Records))
	}
	want := models.AggregateStats{AveragePrice: "0.00"}
	if result.Stats != want {
		t.Errorf("expected zeroed stats, got %+v", result.Stats)
	}
}

func TestApplySubsetAndNoMutation(t *testing.T) {
	records := []models.InventoryRecord{
		rec(3, "Zestril", "AZ", "tablet", "12.50", 10, 90),
		rec(1, "Amoxil", "GSK", "capsule", "4.00", 3, 20),
		rec(2, "Lipitor", "Pfizer", "tablet", "9.99", 7, 200),
	}
	originalOrder := ids(records)

	result := ApplyAt(testNow, records, models.FilterCriteria{DosageForms: []string{"tablet"}}, models.SortPriceAsc)

	// Every output record exists in the input by identity.
	inputIDs := map[int]bool{}
	for _, r := range records {
		inputIDs[r.ID] = true
	}
	for _, r := range result.Records {
		if !inputIDs[r.ID] {
			t.Errorf("record %d fabricated by pipeline", r.ID)
		}
	}

	// The input slice is untouched even though the output was sorted.
	for i, id := range ids(records) {
		if id != originalOrder[i] {
			t.Fatalf("input mutated: %v != %v", ids(records), originalOrder)
		}
	}
}

func TestApplyIdempotence(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "Amoxil", "GSK", "capsule", "4.00", 3, 20),
		rec(2, "Lipitor", "Pfizer", "tablet", "9.99", 7, 200),
		rec(3, "Zestril", "AZ", "tablet", "9.99", 10, 90),
	}
	criteria := models.FilterCriteria{QuantityMin: intPtr(3)}

	first := ApplyAt(testNow, records, criteria, models.SortPriceAsc)
	second := ApplyAt(testNow, records, criteria, models.SortPriceAsc)

	if len(first.Records) != len(second.Records) {
		t.Fatalf("runs differ in size: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i].ID != second.Records[i].ID {
			t.Fatalf("runs differ in order: %v vs %v", ids(first.Records), ids(second.Records))
		}
	}
	if first.Stats != second.Stats {
		t.Errorf("stats differ between runs: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestApplyMonotonicity(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "Amoxil", "GSK", "capsule", "4.00", 3, 20),
		rec(2, "Lipitor", "Pfizer", "tablet", "9.99", 7, 200),
		rec(3, "Zestril", "AZ", "tablet", "12.50", 10, 90),
		rec(4, "Glucophage", "Merck", "tablet", "2.25", 50, 45),
	}

	loose := models.FilterCriteria{DosageForms: []string{"tablet"}}
	tighter := loose
	tighter.PriceMax = strPtr("10.00")
	tightest := tighter
	tightest.QuantityMin = intPtr(10)

	a := ApplyAt(testNow, records, loose, models.SortDefault)
	b := ApplyAt(testNow, records, tighter, models.SortDefault)
	c := ApplyAt(testNow, records, tightest, models.SortDefault)

	if len(b.Records) > len(a.Records) || len(c.Records) > len(b.Records) {
		t.Errorf("adding constraints grew the result: %d -> %d -> %d",
			len(a.Records), len(b.Records), len(c.Records))
	}
}

func TestApplySetFilters(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "Amoxil", "GSK", "capsule", "4.00", 3, 20),
		rec(2, "Lipitor", "Pfizer", "tablet", "9.99", 7, 200),
		rec(3, "Zestril", "AstraZeneca", "tablet", "12.50", 10, 90),
	}

	// Empty sets are no constraint.
	all := ApplyAt(testNow, records, models.FilterCriteria{Manufacturers: nil, DosageForms: []string{}}, models.SortDefault)
	if len(all.Records) != 3 {
		t.Fatalf("empty sets should pass all records, got %d", len(all.Records))
	}

	// Membership is case-insensitive and ORed within the set.
	result := ApplyAt(testNow, records, models.FilterCriteria{Manufacturers: []string{"gsk", "PFIZER"}}, models.SortDefault)
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records for manufacturer set, got %v", ids(result.Records))
	}
}

func TestApplyNumericRangesInclusive(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "A", "M", "tablet", "5.00", 10, 30),
		rec(2, "B", "M", "tablet", "7.50", 20, 30),
		rec(3, "C", "M", "tablet", "10.00", 30, 30),
	}

	result := ApplyAt(testNow, records, models.FilterCriteria{
		PriceMin:    strPtr("5.00"),
		PriceMax:    strPtr("10.00"),
		QuantityMin: intPtr(10),
		QuantityMax: intPtr(30),
	}, models.SortDefault)

	if len(result.Records) != 3 {
		t.Errorf("inclusive bounds should keep all three, got %v", ids(result.Records))
	}

	result = ApplyAt(testNow, records, models.FilterCriteria{PriceMin: strPtr("5.01")}, models.SortDefault)
	if len(result.Records) != 2 {
		t.Errorf("expected 2 records above 5.01, got %v", ids(result.Records))
	}
}

func TestApplyExpiryThresholdCeil(t *testing.T) {
	records := []models.InventoryRecord{
		{ID: 1, ExpiryDate: testNow.Add(36 * time.Hour)}, // ceil(1.5) = 2 days out
	}

	if r := ApplyAt(testNow, records, models.FilterCriteria{ExpiryDaysThreshold: intPtr(1)}, models.SortDefault); len(r.Records) != 0 {
		t.Errorf("record 2 days out should fail threshold 1")
	}
	if r := ApplyAt(testNow, records, models.FilterCriteria{ExpiryDaysThreshold: intPtr(2)}, models.SortDefault); len(r.Records) != 1 {
		t.Errorf("record 2 days out should pass threshold 2")
	}
}

func TestApplyMalformedPricePolicy(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "A", "M", "tablet", "not-a-price", 5, 30),
		rec(2, "B", "M", "tablet", "3.00", 5, 30),
	}

	// Malformed price can never satisfy a price bound, min or max.
	if r := ApplyAt(testNow, records, models.FilterCriteria{PriceMax: strPtr("100")}, models.SortDefault); len(r.Records) != 1 || r.Records[0].ID != 2 {
		t.Errorf("malformed price should be excluded from price-bounded filter, got %v", ids(r.Records))
	}
	if r := ApplyAt(testNow, records, models.FilterCriteria{PriceMin: strPtr("0")}, models.SortDefault); len(r.Records) != 1 {
		t.Errorf("malformed price should be excluded from min bound too, got %v", ids(r.Records))
	}

	// Without a price filter it stays in, counts as zero in aggregates and
	// sorts as zero.
	r := ApplyAt(testNow, records, models.FilterCriteria{}, models.SortPriceAsc)
	if len(r.Records) != 2 || r.Records[0].ID != 1 {
		t.Fatalf("malformed price should sort as zero (first asc), got %v", ids(r.Records))
	}
	if r.Stats.AveragePrice != "1.50" {
		t.Errorf("expected average (0+3)/2 = 1.50, got %s", r.Stats.AveragePrice)
	}
}

func TestSortOrderings(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "Zestril", "AZ", "tablet", "12.50", 10, 90),
		rec(2, "amoxil", "GSK", "capsule", "4.00", 3, 20),
		rec(3, "Lipitor", "Pfizer", "tablet", "9.99", 7, 200),
	}

	testCases := []struct {
		key    models.SortKey
		expect []int
	}{
		{models.SortPriceAsc, []int{2, 3, 1}},
		{models.SortPriceDesc, []int{1, 3, 2}},
		{models.SortQuantityAsc, []int{2, 3, 1}},
		{models.SortQuantityDesc, []int{1, 3, 2}},
		{models.SortExpiryAsc, []int{2, 1, 3}},
		{models.SortExpiryDesc, []int{3, 1, 2}},
		{models.SortNameAsc, []int{2, 3, 1}}, // collation ignores case
		{models.SortNameDesc, []int{1, 3, 2}},
		{models.SortKey("bogus"), []int{2, 1, 3}}, // falls back to expiry asc
	}

	for _, tc := range testCases {
		t.Run(string(tc.key), func(t *testing.T) {
			result := ApplyAt(testNow, records, models.FilterCriteria{}, tc.key)
			got := ids(result.Records)
			for i := range tc.expect {
				if got[i] != tc.expect[i] {
					t.Fatalf("expected order %v, got %v", tc.expect, got)
				}
			}
		})
	}
}

func TestSortStability(t *testing.T) {
	// Three records with identical prices must keep input order.
	records := []models.InventoryRecord{
		rec(10, "A", "M", "tablet", "5.00", 1, 10),
		rec(20, "B", "M", "tablet", "5.00", 2, 20),
		rec(30, "C", "M", "tablet", "5.00", 3, 30),
	}

	result := ApplyAt(testNow, records, models.FilterCriteria{}, models.SortPriceAsc)
	got := ids(result.Records)
	want := []int{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("equal keys reordered: expected %v, got %v", want, got)
		}
	}
}

func TestSortPriceAscPairwise(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "A", "M", "tablet", "9.10", 1, 10),
		rec(2, "B", "M", "tablet", "0.99", 1, 10),
		rec(3, "C", "M", "tablet", "100.00", 1, 10),
		rec(4, "D", "M", "tablet", "9.09", 1, 10),
	}

	result := ApplyAt(testNow, records, models.FilterCriteria{}, models.SortPriceAsc)
	for i := 1; i < len(result.Records); i++ {
		a := priceOrZero(result.Records[i-1].UnitPrice)
		b := priceOrZero(result.Records[i].UnitPrice)
		if a.GreaterThan(b) {
			t.Fatalf("adjacent pair out of order at %d: %s > %s", i, a, b)
		}
	}
}

func TestComputeStatsConsistency(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "A", "M", "tablet", "10.00", 5, 3),    // expiring soon
		rec(2, "B", "M", "tablet", "5.00", 20, 400),  // not soon
		rec(3, "C", "M", "tablet", "2.50", 100, -10), // already expired still counts
	}

	stats := ComputeStatsAt(testNow, records)

	if stats.TotalCount != len(records) {
		t.Errorf("total_count %d != len %d", stats.TotalCount, len(records))
	}
	if stats.TotalQuantity != 125 {
		t.Errorf("expected total_quantity 125, got %d", stats.TotalQuantity)
	}
	if stats.AveragePrice != "5.83" {
		t.Errorf("expected average 17.50/3 = 5.83, got %s", stats.AveragePrice)
	}
	if stats.ExpiringSoonCount != 2 {
		t.Errorf("expected 2 expiring within %d days, got %d", ExpiringSoonDays, stats.ExpiringSoonCount)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStatsAt(testNow, nil)
	want := models.AggregateStats{AveragePrice: "0.00"}
	if stats != want {
		t.Errorf("expected zeroed stats for empty input, got %+v", stats)
	}
}

func TestPaginate(t *testing.T) {
	records := []models.InventoryRecord{
		rec(1, "A", "M", "t", "1", 1, 1),
		rec(2, "B", "M", "t", "1", 1, 1),
		rec(3, "C", "M", "t", "1", 1, 1),
	}

	testCases := []struct {
		name          string
		limit, offset int
		expect        []int
	}{
		{"first page", 2, 0, []int{1, 2}},
		{"second page", 2, 2, []int{3}},
		{"past the end", 2, 10, []int{}},
		{"negative offset clamps", 2, -5, []int{1, 2}},
		{"zero limit", 0, 0, []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page := Paginate(records, tc.limit, tc.offset)
			got := ids(page)
			if len(got) != len(tc.expect) {
				t.Fatalf("expected %v, got %v", tc.expect, got)
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Fatalf("expected %v, got %v", tc.expect, got)
				}
			}
		})
	}

	// Paginating must not alias the source slice's backing array contents.
	page := Paginate(records, 1, 0)
	page[0].ID = 999
	if records[0].ID != 1 {
		t.Errorf("pagination aliased the filtered slice")
	}
}
