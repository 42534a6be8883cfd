package models

import (
	"time"
)

// RecordStatus represents the marketplace state of an inventory record
type RecordStatus string

const (
	StatusAvailable RecordStatus = "available"
	StatusReserved  RecordStatus = "reserved"
	StatusSold      RecordStatus = "sold"
)

// Valid reports whether the status is one of the known states
func (s RecordStatus) Valid() bool {
	return s == StatusAvailable || s == StatusReserved || s == StatusSold
}

// Pharmaceutical describes the drug a record is listing
type Pharmaceutical struct {
	BrandName    string `json:"brand_name"`
	GenericName  string `json:"generic_name"`
	Manufacturer string `json:"manufacturer"`
	DosageForm   string `json:"dosage_form"`
	NDCCode      string `json:"ndc_code"`
	Category     string `json:"category"`
	Strength     string `json:"strength"`
}

// InventoryRecord represents a pharmaceutical lot listed by a seller.
// UnitPrice is carried as a decimal string end to end; it is parsed only at
// the point of comparison or aggregation.
type InventoryRecord struct {
	ID              int            `json:"id"`
	Pharmaceutical  Pharmaceutical `json:"pharmaceutical"`
	Quantity        int            `json:"quantity"`
	UnitPrice       string         `json:"unit_price"`
	ExpiryDate      time.Time      `json:"expiry_date"`
	Status          RecordStatus   `json:"status"`
	BatchNumber     string         `json:"batch_number"`
	StorageLocation string         `json:"storage_location"`
	SellerID        int            `json:"seller_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CreateRecordRequest is the request body for listing a new inventory record
type CreateRecordRequest struct {
	Pharmaceutical  Pharmaceutical `json:"pharmaceutical"`
	Quantity        int            `json:"quantity"`
	UnitPrice       string         `json:"unit_price"`
	ExpiryDate      time.Time      `json:"expiry_date"`
	BatchNumber     string         `json:"batch_number"`
	StorageLocation string         `json:"storage_location"`
}

// UpdateRecordRequest is the request body for updating an inventory record
type UpdateRecordRequest struct {
	BrandName       *string    `json:"brand_name,omitempty"`
	GenericName     *string    `json:"generic_name,omitempty"`
	Manufacturer    *string    `json:"manufacturer,omitempty"`
	DosageForm      *string    `json:"dosage_form,omitempty"`
	NDCCode         *string    `json:"ndc_code,omitempty"`
	Category        *string    `json:"category,omitempty"`
	Strength        *string    `json:"strength,omitempty"`
	Quantity        *int       `json:"quantity,omitempty"`
	UnitPrice       *string    `json:"unit_price,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	BatchNumber     *string    `json:"batch_number,omitempty"`
	StorageLocation *string    `json:"storage_location,omitempty"`
}

// UpdateRecordStatusRequest moves a record between available/reserved/sold
type UpdateRecordStatusRequest struct {
	Status RecordStatus `json:"status"`
}

// RecordListParams contains parameters for the seller-facing inventory list
type RecordListParams struct {
	Limit    int
	Offset   int
	SellerID int
	Status   RecordStatus // optional
	Search   string       // optional, matches brand/generic/NDC
}

// PlatformStats is the admin dashboard rollup
type PlatformStats struct {
	TotalUsers       int `json:"total_users"`
	TotalRecords     int `json:"total_records"`
	AvailableRecords int `json:"available_records"`
	TotalInquiries   int `json:"total_inquiries"`
	OpenInquiries    int `json:"open_inquiries"`
	TotalWatchlists  int `json:"total_watchlists"`
	RecordsToday     int `json:"records_today"`
}
