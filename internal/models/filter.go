package models

// FilterCriteria is the full set of marketplace filter constraints.
// Empty/nil fields mean "no constraint". The JSON shape is also what gets
// persisted inside a watchlist, so the two can never drift apart.
type FilterCriteria struct {
	SearchTerm          string   `json:"search_term,omitempty"`
	Manufacturers       []string `json:"manufacturers,omitempty"`
	DosageForms         []string `json:"dosage_forms,omitempty"`
	PriceMin            *string  `json:"price_min,omitempty"`
	PriceMax            *string  `json:"price_max,omitempty"`
	QuantityMin         *int     `json:"quantity_min,omitempty"`
	QuantityMax         *int     `json:"quantity_max,omitempty"`
	ExpiryDaysThreshold *int     `json:"expiry_days_threshold,omitempty"`
}

// IsZero reports whether no constraint is set at all.
func (fc FilterCriteria) IsZero() bool {
	return fc.SearchTerm == "" &&
		len(fc.Manufacturers) == 0 &&
		len(fc.DosageForms) == 0 &&
		fc.PriceMin == nil && fc.PriceMax == nil &&
		fc.QuantityMin == nil && fc.QuantityMax == nil &&
		fc.ExpiryDaysThreshold == nil
}

// SortKey selects the ordering of marketplace listings.
type SortKey string

const (
	SortPriceAsc     SortKey = "price_asc"
	SortPriceDesc    SortKey = "price_desc"
	SortQuantityAsc  SortKey = "quantity_asc"
	SortQuantityDesc SortKey = "quantity_desc"
	SortExpiryAsc    SortKey = "expiry_asc"
	SortExpiryDesc   SortKey = "expiry_desc"
	SortNameAsc      SortKey = "name_asc"
	SortNameDesc     SortKey = "name_desc"

	// SortDefault is used whenever the requested key is absent or unknown.
	SortDefault = SortExpiryAsc
)

// ParseSortKey maps a raw query value to a SortKey, falling back to the
// default for anything it doesn't recognize.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriceAsc, SortPriceDesc,
		SortQuantityAsc, SortQuantityDesc,
		SortExpiryAsc, SortExpiryDesc,
		SortNameAsc, SortNameDesc:
		return SortKey(s)
	default:
		return SortDefault
	}
}

// AggregateStats are the summary numbers shown above the filtered listing
// table. They are always derived from the currently filtered set.
type AggregateStats struct {
	TotalCount        int    `json:"total_count"`
	TotalQuantity     int    `json:"total_quantity"`
	AveragePrice      string `json:"average_price"`
	ExpiringSoonCount int    `json:"expiring_soon_count"`
}

// FilterOptions are the discrete value sets offered to the user for the
// manufacturer and dosage-form filters.
type FilterOptions struct {
	Manufacturers []string `json:"manufacturers"`
	DosageForms   []string `json:"dosage_forms"`
}
