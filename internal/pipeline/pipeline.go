package pipeline

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/atlaspharma/atlas-api/internal/models"
)

// ExpiringSoonDays is the default window for the "expiring soon" stat.
const ExpiringSoonDays = 30

// Result is the output of a pipeline run: the filtered+sorted view of the
// input collection plus summary stats over the filtered (not paginated) set.
type Result struct {
	Records []models.InventoryRecord `json:"records"`
	Stats   models.AggregateStats    `json:"stats"`
}

// Apply filters and sorts records against the given criteria. It is pure:
// the input slice is never mutated and the output is always a fresh slice.
func Apply(records []models.InventoryRecord, criteria models.FilterCriteria, key models.SortKey) Result {
	return ApplyAt(time.Now(), records, criteria, key)
}

// ApplyAt is Apply with an explicit clock, used for expiry-relative filters
// and stats. All date math in one run is relative to the same instant.
func ApplyAt(now time.Time, records []models.InventoryRecord, criteria models.FilterCriteria, key models.SortKey) Result {
	filtered := make([]models.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if matchesAt(now, rec, criteria) {
			filtered = append(filtered, rec)
		}
	}

	sortRecords(filtered, key)

	return Result{
		Records: filtered,
		Stats:   ComputeStatsAt(now, filtered),
	}
}

// matchesAt applies every non-empty criterion conjunctively.
func matchesAt(now time.Time, rec models.InventoryRecord, c models.FilterCriteria) bool {
	if term := strings.ToLower(strings.TrimSpace(c.SearchTerm)); term != "" {
		p := rec.Pharmaceutical
		if !strings.Contains(strings.ToLower(p.BrandName), term) &&
			!strings.Contains(strings.ToLower(p.GenericName), term) &&
			!strings.Contains(strings.ToLower(p.Manufacturer), term) &&
			!strings.Contains(strings.ToLower(p.NDCCode), term) {
			return false
		}
	}

	if len(c.Manufacturers) > 0 && !containsFold(c.Manufacturers, rec.Pharmaceutical.Manufacturer) {
		return false
	}
	if len(c.DosageForms) > 0 && !containsFold(c.DosageForms, rec.Pharmaceutical.DosageForm) {
		return false
	}

	if c.PriceMin != nil || c.PriceMax != nil {
		// A record with an unparsable price can never satisfy a price bound.
		price, ok := parsePrice(rec.UnitPrice)
		if !ok {
			return false
		}
		if min, mok := parseBound(c.PriceMin); mok && price.LessThan(min) {
			return false
		}
		if max, mok := parseBound(c.PriceMax); mok && price.GreaterThan(max) {
			return false
		}
	}

	if c.QuantityMin != nil && rec.Quantity < *c.QuantityMin {
		return false
	}
	if c.QuantityMax != nil && rec.Quantity > *c.QuantityMax {
		return false
	}

	if c.ExpiryDaysThreshold != nil && daysUntil(now, rec.ExpiryDate) > *c.ExpiryDaysThreshold {
		return false
	}

	return true
}

// sortRecords orders records in place by the given key. The sort is stable,
// so records with equal keys keep their original relative order. Unknown
// keys fall back to expiry ascending.
func sortRecords(records []models.InventoryRecord, key models.SortKey) {
	var less func(a, b models.InventoryRecord) bool

	switch key {
	case models.SortPriceAsc:
		less = func(a, b models.InventoryRecord) bool {
			return priceOrZero(a.UnitPrice).LessThan(priceOrZero(b.UnitPrice))
		}
	case models.SortPriceDesc:
		less = func(a, b models.InventoryRecord) bool {
			return priceOrZero(a.UnitPrice).GreaterThan(priceOrZero(b.UnitPrice))
		}
	case models.SortQuantityAsc:
		less = func(a, b models.InventoryRecord) bool { return a.Quantity < b.Quantity }
	case models.SortQuantityDesc:
		less = func(a, b models.InventoryRecord) bool { return a.Quantity > b.Quantity }
	case models.SortExpiryDesc:
		less = func(a, b models.InventoryRecord) bool { return a.ExpiryDate.After(b.ExpiryDate) }
	case models.SortNameAsc, models.SortNameDesc:
		// Collators are not safe for concurrent use, so each run gets its own.
		col := collate.New(language.English, collate.Loose)
		if key == models.SortNameAsc {
			less = func(a, b models.InventoryRecord) bool {
				return col.CompareString(a.Pharmaceutical.BrandName, b.Pharmaceutical.BrandName) < 0
			}
		} else {
			less = func(a, b models.InventoryRecord) bool {
				return col.CompareString(a.Pharmaceutical.BrandName, b.Pharmaceutical.BrandName) > 0
			}
		}
	default: // SortExpiryAsc and anything unrecognized
		less = func(a, b models.InventoryRecord) bool { return a.ExpiryDate.Before(b.ExpiryDate) }
	}

	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

// ComputeStats computes aggregate stats over an already-filtered set.
func ComputeStats(records []models.InventoryRecord) models.AggregateStats {
	return ComputeStatsAt(time.Now(), records)
}

// ComputeStatsAt is a single O(n) pass. Malformed prices count as zero.
// Empty input yields zeroed stats, never NaN or a division by zero.
func ComputeStatsAt(now time.Time, records []models.InventoryRecord) models.AggregateStats {
	stats := models.AggregateStats{AveragePrice: "0.00"}

	if len(records) == 0 {
		return stats
	}

	sum := decimal.Zero
	for _, rec := range records {
		stats.TotalCount++
		stats.TotalQuantity += rec.Quantity
		sum = sum.Add(priceOrZero(rec.UnitPrice))
		if daysUntil(now, rec.ExpiryDate) <= ExpiringSoonDays {
			stats.ExpiringSoonCount++
		}
	}

	stats.AveragePrice = sum.Div(decimal.NewFromInt(int64(stats.TotalCount))).StringFixed(2)
	return stats
}

// Paginate returns a pure slice of an already filtered+sorted result.
// It never refilters; out-of-range pages are empty, not an error.
func Paginate(records []models.InventoryRecord, limit, offset int) []models.InventoryRecord {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(records) {
		return []models.InventoryRecord{}
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	page := make([]models.InventoryRecord, end-offset)
	copy(page, records[offset:end])
	return page
}

// daysUntil is the number of whole days from now until the expiry instant,
// rounded up. An expiry 1 hour away is 1 day out; an expired lot is <= 0.
func daysUntil(now, expiry time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseBound(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	return parsePrice(*s)
}

func priceOrZero(s string) decimal.Decimal {
	d, ok := parsePrice(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

// containsFold reports case-insensitive membership of v in set.
func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
