package models

import (
	"time"
)

// Watchlist is a saved combination of filter criteria. When alerts are
// enabled, newly listed records that match the criteria trigger a
// notification email to the owner.
type Watchlist struct {
	ID           int            `json:"id"`
	UserID       int            `json:"user_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Criteria     FilterCriteria `json:"criteria"`
	AlertEnabled bool           `json:"alert_enabled"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreateWatchlistRequest is the request body for saving a search
type CreateWatchlistRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Criteria     FilterCriteria `json:"criteria"`
	AlertEnabled bool           `json:"alert_enabled"`
}

// UpdateWatchlistRequest is the request body for updating a saved search
type UpdateWatchlistRequest struct {
	Name         *string         `json:"name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Criteria     *FilterCriteria `json:"criteria,omitempty"`
	AlertEnabled *bool           `json:"alert_enabled,omitempty"`
}

// AlertWatchlist pairs an alert-enabled watchlist with its owner's address,
// for the notification path.
type AlertWatchlist struct {
	Watchlist
	OwnerEmail string `json:"-"`
}

// WatchlistPreview is the result of running a watchlist's criteria against
// the current marketplace
type WatchlistPreview struct {
	Watchlist *Watchlist        `json:"watchlist"`
	Matches   []InventoryRecord `json:"matches"`
	Stats     AggregateStats    `json:"stats"`
}
