package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/atlaspharma/atlas-api/internal/models"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
)

// CreateDocument stores the metadata row for an uploaded compliance document
func (db *DB) CreateDocument(ctx context.Context, doc *models.ComplianceDocument) (*models.ComplianceDocument, error) {
	out := &models.ComplianceDocument{}

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO compliance_documents (record_id, file_name, object_key, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, record_id, file_name, object_key, content_type, size, uploaded_by, created_at
	`, doc.RecordID, doc.FileName, doc.ObjectKey, doc.ContentType, doc.Size, doc.UploadedBy).Scan(
		&out.ID, &out.RecordID, &out.FileName, &out.ObjectKey,
		&out.ContentType, &out.Size, &out.UploadedBy, &out.CreatedAt)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetDocumentByID retrieves a document's metadata
func (db *DB) GetDocumentByID(ctx context.Context, id int) (*models.ComplianceDocument, error) {
	doc := &models.ComplianceDocument{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, record_id, file_name, object_key, content_type, size, uploaded_by, created_at
		FROM compliance_documents
		WHERE id = $1
	`, id).Scan(
		&doc.ID, &doc.RecordID, &doc.FileName, &doc.ObjectKey,
		&doc.ContentType, &doc.Size, &doc.UploadedBy, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	return doc, nil
}

// ListDocumentsByRecord returns all documents attached to a record
func (db *DB) ListDocumentsByRecord(ctx context.Context, recordID int) ([]*models.ComplianceDocument, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, record_id, file_name, object_key, content_type, size, uploaded_by, created_at
		FROM compliance_documents
		WHERE record_id = $1
		ORDER BY created_at DESC
	`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.ComplianceDocument
	for rows.Next() {
		doc := &models.ComplianceDocument{}
		if err := rows.Scan(
			&doc.ID, &doc.RecordID, &doc.FileName, &doc.ObjectKey,
			&doc.ContentType, &doc.Size, &doc.UploadedBy, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// DeleteDocument removes a document's metadata row
func (db *DB) DeleteDocument(ctx context.Context, id int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM compliance_documents WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}

	return nil
}
