package models

import (
	"time"
)

// InquiryStatus tracks the lifecycle of a purchase inquiry
type InquiryStatus string

const (
	InquiryOpen     InquiryStatus = "open"
	InquiryAccepted InquiryStatus = "accepted"
	InquiryDeclined InquiryStatus = "declined"
)

// Inquiry is a buyer's request to purchase a quantity of a listed record
type Inquiry struct {
	ID        int           `json:"id"`
	RecordID  int           `json:"record_id"`
	BuyerID   int           `json:"buyer_id"`
	Quantity  int           `json:"quantity"`
	Message   string        `json:"message,omitempty"`
	Status    InquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InquiryWithRecord includes listing details for display
type InquiryWithRecord struct {
	Inquiry
	BrandName   string `json:"brand_name"`
	GenericName string `json:"generic_name"`
	NDCCode     string `json:"ndc_code"`
	UnitPrice   string `json:"unit_price"`
	SellerID    int    `json:"seller_id"`
	BuyerEmail  string `json:"buyer_email,omitempty"`
}

// CreateInquiryRequest is the request body for submitting an inquiry
type CreateInquiryRequest struct {
	RecordID int    `json:"record_id"`
	Quantity int    `json:"quantity"`
	Message  string `json:"message,omitempty"`
}

// UpdateInquiryStatusRequest accepts or declines an inquiry
type UpdateInquiryStatusRequest struct {
	Status InquiryStatus `json:"status"`
}
