package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/atlaspharma/atlas-api/internal/models"
)

var (
	ErrRecordNotFound = errors.New("inventory record not found")
)

const recordColumns = `
	id, brand_name, generic_name, manufacturer, dosage_form, ndc_code,
	category, strength, quantity, unit_price, expiry_date, status,
	batch_number, storage_location, seller_id, created_at, updated_at`

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, rec *models.InventoryRecord) error {
	return row.Scan(
		&rec.ID,
		&rec.Pharmaceutical.BrandName, &rec.Pharmaceutical.GenericName,
		&rec.Pharmaceutical.Manufacturer, &rec.Pharmaceutical.DosageForm,
		&rec.Pharmaceutical.NDCCode, &rec.Pharmaceutical.Category,
		&rec.Pharmaceutical.Strength,
		&rec.Quantity, &rec.UnitPrice, &rec.ExpiryDate, &rec.Status,
		&rec.BatchNumber, &rec.StorageLocation, &rec.SellerID,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
}

// ListRecords returns a paginated, SQL-filtered list for the seller-facing
// inventory views. Marketplace browsing goes through ListMarketplaceRecords
// plus the in-memory pipeline instead.
func (db *DB) ListRecords(ctx context.Context, params *models.RecordListParams) ([]*models.InventoryRecord, int, error) {
	whereClauses := []string{"seller_id = $1"}
	args := []interface{}{params.SellerID}
	argIndex := 2

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, params.Status)
		argIndex++
	}

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(brand_name ILIKE $%d OR generic_name ILIKE $%d OR ndc_code ILIKE $%d)",
			argIndex, argIndex, argIndex,
		))
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(whereClauses, " AND ")

	// Get total count
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM inventory_records %s", whereClause)
	if err := db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_records
		%s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, recordColumns, whereClause, argIndex, argIndex+1)

	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.InventoryRecord
	for rows.Next() {
		rec := &models.InventoryRecord{}
		if err := scanRecord(rows, rec); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// ListMarketplaceRecords returns every available record. The caller runs the
// search pipeline over the result; no filtering happens here beyond status.
func (db *DB) ListMarketplaceRecords(ctx context.Context) ([]models.InventoryRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_records
		WHERE status = 'available'
		ORDER BY id
	`, recordColumns)

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.InventoryRecord{}
	for rows.Next() {
		var rec models.InventoryRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// GetRecordByID retrieves a single inventory record
func (db *DB) GetRecordByID(ctx context.Context, id int) (*models.InventoryRecord, error) {
	rec := &models.InventoryRecord{}

	query := fmt.Sprintf("SELECT %s FROM inventory_records WHERE id = $1", recordColumns)
	err := scanRecord(db.Pool.QueryRow(ctx, query, id), rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return rec, nil
}

// CreateRecord lists a new inventory record for a seller
func (db *DB) CreateRecord(ctx context.Context, sellerID int, req *models.CreateRecordRequest) (*models.InventoryRecord, error) {
	rec := &models.InventoryRecord{}

	query := fmt.Sprintf(`
		INSERT INTO inventory_records (
			brand_name, generic_name, manufacturer, dosage_form, ndc_code,
			category, strength, quantity, unit_price, expiry_date,
			batch_number, storage_location, seller_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING %s
	`, recordColumns)

	err := scanRecord(db.Pool.QueryRow(ctx, query,
		req.Pharmaceutical.BrandName, req.Pharmaceutical.GenericName,
		req.Pharmaceutical.Manufacturer, req.Pharmaceutical.DosageForm,
		req.Pharmaceutical.NDCCode, req.Pharmaceutical.Category,
		req.Pharmaceutical.Strength,
		req.Quantity, req.UnitPrice, req.ExpiryDate,
		req.BatchNumber, req.StorageLocation, sellerID,
	), rec)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// UpdateRecord updates an existing inventory record
func (db *DB) UpdateRecord(ctx context.Context, id int, req *models.UpdateRecordRequest) (*models.InventoryRecord, error) {
	rec := &models.InventoryRecord{}

	query := fmt.Sprintf(`
		UPDATE inventory_records
		SET brand_name = COALESCE($2, brand_name),
		    generic_name = COALESCE($3, generic_name),
		    manufacturer = COALESCE($4, manufacturer),
		    dosage_form = COALESCE($5, dosage_form),
		    ndc_code = COALESCE($6, ndc_code),
		    category = COALESCE($7, category),
		    strength = COALESCE($8, strength),
		    quantity = COALESCE($9, quantity),
		    unit_price = COALESCE($10, unit_price),
		    expiry_date = COALESCE($11, expiry_date),
		    batch_number = COALESCE($12, batch_number),
		    storage_location = COALESCE($13, storage_location),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, recordColumns)

	err := scanRecord(db.Pool.QueryRow(ctx, query, id,
		req.BrandName, req.GenericName, req.Manufacturer, req.DosageForm,
		req.NDCCode, req.Category, req.Strength,
		req.Quantity, req.UnitPrice, req.ExpiryDate,
		req.BatchNumber, req.StorageLocation,
	), rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return rec, nil
}

// UpdateRecordStatus moves a record between available/reserved/sold
func (db *DB) UpdateRecordStatus(ctx context.Context, id int, status models.RecordStatus) (*models.InventoryRecord, error) {
	rec := &models.InventoryRecord{}

	query := fmt.Sprintf(`
		UPDATE inventory_records
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, recordColumns)

	err := scanRecord(db.Pool.QueryRow(ctx, query, id, status), rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return rec, nil
}

// DeleteRecord removes an inventory record
func (db *DB) DeleteRecord(ctx context.Context, id int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM inventory_records WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// GetFilterOptions returns the discrete value sets offered for the
// manufacturer and dosage-form filters, derived from available listings.
func (db *DB) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	options := &models.FilterOptions{
		Manufacturers: []string{},
		DosageForms:   []string{},
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT manufacturer
		FROM inventory_records
		WHERE status = 'available' AND manufacturer <> ''
		ORDER BY manufacturer
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		options.Manufacturers = append(options.Manufacturers, m)
	}
	rows.Close()

	rows, err = db.Pool.Query(ctx, `
		SELECT DISTINCT dosage_form
		FROM inventory_records
		WHERE status = 'available' AND dosage_form <> ''
		ORDER BY dosage_form
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		options.DosageForms = append(options.DosageForms, d)
	}

	return options, nil
}

// GetPlatformStats returns system-wide statistics for the admin dashboard
func (db *DB) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM inventory_records),
			(SELECT COUNT(*) FROM inventory_records WHERE status = 'available'),
			(SELECT COUNT(*) FROM inquiries),
			(SELECT COUNT(*) FROM inquiries WHERE status = 'open'),
			(SELECT COUNT(*) FROM watchlists),
			(SELECT COUNT(*) FROM inventory_records WHERE created_at >= CURRENT_DATE)
	`).Scan(
		&stats.TotalUsers, &stats.TotalRecords, &stats.AvailableRecords,
		&stats.TotalInquiries, &stats.OpenInquiries, &stats.TotalWatchlists,
		&stats.RecordsToday,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
