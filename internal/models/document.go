package models

import (
	"time"
)

// ComplianceDocument is a regulatory document (certificate of analysis,
// pedigree, recall notice) attached to an inventory record. The file itself
// lives in S3; this is the metadata row.
type ComplianceDocument struct {
	ID          int       `json:"id"`
	RecordID    int       `json:"record_id"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"-"` // S3 key, not exposed
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  int       `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentDownload carries a time-limited presigned URL
type DocumentDownload struct {
	ID        int       `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
