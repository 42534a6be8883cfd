package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/atlaspharma/atlas-api/internal/models"
)

var (
	ErrInquiryNotFound = errors.New("inquiry not found")
)

// CreateInquiry submits a buyer's purchase request against a listing
func (db *DB) CreateInquiry(ctx context.Context, buyerID int, req *models.CreateInquiryRequest) (*models.Inquiry, error) {
	inq := &models.Inquiry{}

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO inquiries (record_id, buyer_id, quantity, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, record_id, buyer_id, quantity, message, status, created_at, updated_at
	`, req.RecordID, buyerID, req.Quantity, req.Message).Scan(
		&inq.ID, &inq.RecordID, &inq.BuyerID, &inq.Quantity,
		&inq.Message, &inq.Status, &inq.CreatedAt, &inq.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return inq, nil
}

// GetInquiryByID retrieves an inquiry with its listing context
func (db *DB) GetInquiryByID(ctx context.Context, id int) (*models.InquiryWithRecord, error) {
	inq := &models.InquiryWithRecord{}

	err := db.Pool.QueryRow(ctx, `
		SELECT i.id, i.record_id, i.buyer_id, i.quantity, i.message, i.status,
		       i.created_at, i.updated_at,
		       r.brand_name, r.generic_name, r.ndc_code, r.unit_price, r.seller_id
		FROM inquiries i
		JOIN inventory_records r ON r.id = i.record_id
		WHERE i.id = $1
	`, id).Scan(
		&inq.ID, &inq.RecordID, &inq.BuyerID, &inq.Quantity, &inq.Message, &inq.Status,
		&inq.CreatedAt, &inq.UpdatedAt,
		&inq.BrandName, &inq.GenericName, &inq.NDCCode, &inq.UnitPrice, &inq.SellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}

	return inq, nil
}

// ListInquiriesByBuyer returns the inquiries a user has submitted
func (db *DB) ListInquiriesByBuyer(ctx context.Context, buyerID int) ([]*models.InquiryWithRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT i.id, i.record_id, i.buyer_id, i.quantity, i.message, i.status,
		       i.created_at, i.updated_at,
		       r.brand_name, r.generic_name, r.ndc_code, r.unit_price, r.seller_id
		FROM inquiries i
		JOIN inventory_records r ON r.id = i.record_id
		WHERE i.buyer_id = $1
		ORDER BY i.created_at DESC
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInquiries(rows)
}

// ListInquiriesBySeller returns inquiries received against a seller's listings
func (db *DB) ListInquiriesBySeller(ctx context.Context, sellerID int) ([]*models.InquiryWithRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT i.id, i.record_id, i.buyer_id, i.quantity, i.message, i.status,
		       i.created_at, i.updated_at,
		       r.brand_name, r.generic_name, r.ndc_code, r.unit_price, r.seller_id,
		       u.email
		FROM inquiries i
		JOIN inventory_records r ON r.id = i.record_id
		JOIN users u ON u.id = i.buyer_id
		WHERE r.seller_id = $1
		ORDER BY i.created_at DESC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []*models.InquiryWithRecord
	for rows.Next() {
		inq := &models.InquiryWithRecord{}
		if err := rows.Scan(
			&inq.ID, &inq.RecordID, &inq.BuyerID, &inq.Quantity, &inq.Message, &inq.Status,
			&inq.CreatedAt, &inq.UpdatedAt,
			&inq.BrandName, &inq.GenericName, &inq.NDCCode, &inq.UnitPrice, &inq.SellerID,
			&inq.BuyerEmail); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}

	return inquiries, nil
}

// UpdateInquiryStatus accepts or declines an inquiry
func (db *DB) UpdateInquiryStatus(ctx context.Context, id int, status models.InquiryStatus) (*models.Inquiry, error) {
	inq := &models.Inquiry{}

	err := db.Pool.QueryRow(ctx, `
		UPDATE inquiries
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, record_id, buyer_id, quantity, message, status, created_at, updated_at
	`, id, status).Scan(
		&inq.ID, &inq.RecordID, &inq.BuyerID, &inq.Quantity,
		&inq.Message, &inq.Status, &inq.CreatedAt, &inq.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}

	return inq, nil
}

func scanInquiries(rows pgx.Rows) ([]*models.InquiryWithRecord, error) {
	var inquiries []*models.InquiryWithRecord
	for rows.Next() {
		inq := &models.InquiryWithRecord{}
		if err := rows.Scan(
			&inq.ID, &inq.RecordID, &inq.BuyerID, &inq.Quantity, &inq.Message, &inq.Status,
			&inq.CreatedAt, &inq.UpdatedAt,
			&inq.BrandName, &inq.GenericName, &inq.NDCCode, &inq.UnitPrice, &inq.SellerID); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}
	return inquiries, nil
}
