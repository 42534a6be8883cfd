package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/middleware"
	"github.com/atlaspharma/atlas-api/internal/models"
)

// ListMyRecords returns the authenticated seller's inventory
func (h *Handler) ListMyRecords(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	params := &models.RecordListParams{
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset", 0),
		SellerID: userID,
		Status:   models.RecordStatus(c.Query("status")),
		Search:   c.Query("search"),
	}

	// Validate limits
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.Status != "" && !params.Status.Valid() {
		return Error(c, fiber.StatusBadRequest, "invalid status filter")
	}

	records, total, err := h.db.ListRecords(c.Context(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list inventory")
	}

	return SuccessWithMeta(c, records, total, params.Limit, params.Offset)
}

// GetMyRecord returns one of the seller's own records
func (h *Handler) GetMyRecord(c *fiber.Ctx) error {
	rec, err := h.getOwnedRecord(c)
	if err != nil {
		return err
	}
	return Success(c, rec)
}

// CreateRecord lists a new inventory record
func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req models.CreateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Pharmaceutical.BrandName == "" {
		return Error(c, fiber.StatusBadRequest, "brand name is required")
	}
	if req.Quantity < 0 {
		return Error(c, fiber.StatusBadRequest, "quantity cannot be negative")
	}
	if _, err := decimal.NewFromString(req.UnitPrice); err != nil {
		return Error(c, fiber.StatusBadRequest, "unit price must be a decimal string")
	}
	if req.ExpiryDate.IsZero() {
		return Error(c, fiber.StatusBadRequest, "expiry date is required")
	}

	rec, err := h.db.CreateRecord(c.Context(), userID, &req)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to create record")
	}

	// Watchlist alerts run in the background; listing must not wait on them.
	go h.alerts.NotifyNewListing(context.Background(), rec)

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    rec,
	})
}

// UpdateRecord updates one of the seller's own records
func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	rec, err := h.getOwnedRecord(c)
	if err != nil {
		return err
	}

	var req models.UpdateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.UnitPrice != nil {
		if _, err := decimal.NewFromString(*req.UnitPrice); err != nil {
			return Error(c, fiber.StatusBadRequest, "unit price must be a decimal string")
		}
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return Error(c, fiber.StatusBadRequest, "quantity cannot be negative")
	}

	updated, err := h.db.UpdateRecord(c.Context(), rec.ID, &req)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update record")
	}

	return Success(c, updated)
}

// UpdateRecordStatus moves a record between available/reserved/sold
func (h *Handler) UpdateRecordStatus(c *fiber.Ctx) error {
	rec, err := h.getOwnedRecord(c)
	if err != nil {
		return err
	}

	var req models.UpdateRecordStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !req.Status.Valid() {
		return Error(c, fiber.StatusBadRequest, "invalid status")
	}

	updated, err := h.db.UpdateRecordStatus(c.Context(), rec.ID, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update record status")
	}

	return Success(c, updated)
}

// DeleteRecord removes one of the seller's own records
func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	rec, err := h.getOwnedRecord(c)
	if err != nil {
		return err
	}

	if err := h.db.DeleteRecord(c.Context(), rec.ID); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete record")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "record deleted successfully",
	})
}

// getOwnedRecord loads the :id record and verifies the caller owns it.
// Admins may act on any record. Failures come back as *fiber.Error so the
// caller can return them straight to the app error handler.
func (h *Handler) getOwnedRecord(c *fiber.Ctx) (*models.InventoryRecord, error) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	rec, err := h.db.GetRecordByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "record not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to get record")
	}

	if rec.SellerID != userID && middleware.GetUserRole(c) != models.RoleAdmin {
		return nil, fiber.NewError(fiber.StatusForbidden, "cannot modify others' records")
	}

	return rec, nil
}
