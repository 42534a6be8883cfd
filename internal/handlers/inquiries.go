package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/middleware"
	"github.com/atlaspharma/atlas-api/internal/models"
)

// CreateInquiry submits a purchase inquiry against a marketplace listing
func (h *Handler) CreateInquiry(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req models.CreateInquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 1 {
		return Error(c, fiber.StatusBadRequest, "quantity must be at least 1")
	}

	rec, err := h.db.GetRecordByID(c.Context(), req.RecordID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "listing not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get listing")
	}

	if rec.Status != models.StatusAvailable {
		return Error(c, fiber.StatusConflict, "listing is not available")
	}
	if rec.SellerID == userID {
		return Error(c, fiber.StatusBadRequest, "cannot inquire about your own listing")
	}
	if req.Quantity > rec.Quantity {
		return Error(c, fiber.StatusBadRequest, "requested quantity exceeds available stock")
	}

	inquiry, err := h.db.CreateInquiry(c.Context(), userID, &req)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to create inquiry")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    inquiry,
	})
}

// ListMyInquiries returns the inquiries the authenticated user has submitted
func (h *Handler) ListMyInquiries(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	inquiries, err := h.db.ListInquiriesByBuyer(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list inquiries")
	}

	return Success(c, inquiries)
}

// ListReceivedInquiries returns inquiries against the authenticated seller's listings
func (h *Handler) ListReceivedInquiries(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	inquiries, err := h.db.ListInquiriesBySeller(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list inquiries")
	}

	return Success(c, inquiries)
}

// UpdateInquiryStatus lets the listing's seller accept or decline an inquiry
func (h *Handler) UpdateInquiryStatus(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid inquiry id")
	}

	var req models.UpdateInquiryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Status != models.InquiryAccepted && req.Status != models.InquiryDeclined {
		return Error(c, fiber.StatusBadRequest, "status must be accepted or declined")
	}

	inquiry, err := h.db.GetInquiryByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			return Error(c, fiber.StatusNotFound, "inquiry not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get inquiry")
	}

	if inquiry.SellerID != userID {
		return Error(c, fiber.StatusForbidden, "only the seller can respond to an inquiry")
	}
	if inquiry.Status != models.InquiryOpen {
		return Error(c, fiber.StatusConflict, "inquiry has already been resolved")
	}

	updated, err := h.db.UpdateInquiryStatus(c.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			return Error(c, fiber.StatusNotFound, "inquiry not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update inquiry")
	}

	return Success(c, updated)
}
