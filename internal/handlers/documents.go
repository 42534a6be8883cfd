package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/middleware"
	"github.com/atlaspharma/atlas-api/internal/models"
)

const (
	maxDocumentSize      = 20 << 20 // 20MB
	presignedURLLifetime = 15 * time.Minute
)

// UploadDocument attaches a compliance document to one of the seller's records
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	if h.storage == nil {
		return Error(c, fiber.StatusServiceUnavailable, "document storage is not configured")
	}

	rec, err := h.getOwnedRecord(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxDocumentSize {
		return Error(c, fiber.StatusRequestEntityTooLarge, "file exceeds the 20MB limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "failed to read uploaded file")
	}
	defer file.Close()

	key := fmt.Sprintf("records/%d/%s%s", rec.ID, uuid.New().String(), filepath.Ext(fileHeader.Filename))

	result, err := h.storage.Upload(c.Context(), key, file, fileHeader.Size, contentType)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to store document")
	}

	doc, err := h.db.CreateDocument(c.Context(), &models.ComplianceDocument{
		RecordID:    rec.ID,
		FileName:    fileHeader.Filename,
		ObjectKey:   result.Key,
		ContentType: contentType,
		Size:        result.Size,
		UploadedBy:  middleware.GetUserID(c),
	})
	if err != nil {
		// Don't leave an orphaned object behind
		if delErr := h.storage.Delete(c.Context(), result.Key); delErr != nil {
			return Error(c, fiber.StatusInternalServerError, "failed to save document metadata")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to save document metadata")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    doc,
	})
}

// ListDocuments returns the compliance documents attached to a listing.
// Any authenticated user may review a listing's paperwork.
func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	recordID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid record id")
	}

	if _, err := h.db.GetRecordByID(c.Context(), recordID); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get record")
	}

	docs, err := h.db.ListDocumentsByRecord(c.Context(), recordID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list documents")
	}

	return Success(c, docs)
}

// DownloadDocument returns a time-limited presigned URL for a document
func (h *Handler) DownloadDocument(c *fiber.Ctx) error {
	if h.storage == nil {
		return Error(c, fiber.StatusServiceUnavailable, "document storage is not configured")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.db.GetDocumentByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return Error(c, fiber.StatusNotFound, "document not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get document")
	}

	url, err := h.storage.GetPresignedURL(c.Context(), doc.ObjectKey, presignedURLLifetime)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate download link")
	}

	return Success(c, &models.DocumentDownload{
		ID:        doc.ID,
		FileName:  doc.FileName,
		URL:       url,
		ExpiresAt: time.Now().Add(presignedURLLifetime),
	})
}

// DeleteDocument removes a document from one of the seller's records
func (h *Handler) DeleteDocument(c *fiber.Ctx) error {
	if h.storage == nil {
		return Error(c, fiber.StatusServiceUnavailable, "document storage is not configured")
	}

	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.db.GetDocumentByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return Error(c, fiber.StatusNotFound, "document not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get document")
	}

	rec, err := h.db.GetRecordByID(c.Context(), doc.RecordID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to get record")
	}
	if rec.SellerID != userID && middleware.GetUserRole(c) != models.RoleAdmin {
		return Error(c, fiber.StatusForbidden, "cannot delete others' documents")
	}

	if err := h.storage.Delete(c.Context(), doc.ObjectKey); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to delete stored file")
	}
	if err := h.db.DeleteDocument(c.Context(), id); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to delete document")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "document deleted successfully",
	})
}
