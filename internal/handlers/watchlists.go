package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/middleware"
	"github.com/atlaspharma/atlas-api/internal/models"
	"github.com/atlaspharma/atlas-api/internal/pipeline"
)

// ListWatchlists returns the authenticated user's saved searches
func (h *Handler) ListWatchlists(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	watchlists, err := h.db.ListWatchlists(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list watchlists")
	}

	return Success(c, watchlists)
}

// GetWatchlist returns one of the user's saved searches
func (h *Handler) GetWatchlist(c *fiber.Ctx) error {
	wl, err := h.getOwnedWatchlist(c)
	if err != nil {
		return err
	}
	return Success(c, wl)
}

// CreateWatchlist saves a search
func (h *Handler) CreateWatchlist(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req models.CreateWatchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "name is required")
	}

	wl, err := h.db.CreateWatchlist(c.Context(), userID, &req)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to create watchlist")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    wl,
	})
}

// UpdateWatchlist updates one of the user's saved searches
func (h *Handler) UpdateWatchlist(c *fiber.Ctx) error {
	wl, err := h.getOwnedWatchlist(c)
	if err != nil {
		return err
	}

	var req models.UpdateWatchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name != nil && *req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "name cannot be empty")
	}

	updated, err := h.db.UpdateWatchlist(c.Context(), wl.ID, &req)
	if err != nil {
		if errors.Is(err, database.ErrWatchlistNotFound) {
			return Error(c, fiber.StatusNotFound, "watchlist not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update watchlist")
	}

	return Success(c, updated)
}

// DeleteWatchlist removes one of the user's saved searches
func (h *Handler) DeleteWatchlist(c *fiber.Ctx) error {
	wl, err := h.getOwnedWatchlist(c)
	if err != nil {
		return err
	}

	if err := h.db.DeleteWatchlist(c.Context(), wl.ID); err != nil {
		if errors.Is(err, database.ErrWatchlistNotFound) {
			return Error(c, fiber.StatusNotFound, "watchlist not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete watchlist")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "watchlist deleted successfully",
	})
}

// PreviewWatchlist runs a saved search against the current marketplace and
// returns the matching listings with their aggregate stats.
func (h *Handler) PreviewWatchlist(c *fiber.Ctx) error {
	wl, err := h.getOwnedWatchlist(c)
	if err != nil {
		return err
	}

	sortKey := models.ParseSortKey(c.Query("sort"))

	records, err := h.db.ListMarketplaceRecords(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load marketplace listings")
	}

	result := pipeline.Apply(records, wl.Criteria, sortKey)

	return Success(c, &models.WatchlistPreview{
		Watchlist: wl,
		Matches:   result.Records,
		Stats:     result.Stats,
	})
}

func (h *Handler) getOwnedWatchlist(c *fiber.Ctx) (*models.Watchlist, error) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid watchlist id")
	}

	wl, err := h.db.GetWatchlistByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrWatchlistNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "watchlist not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to get watchlist")
	}

	if wl.UserID != userID {
		// Watchlists are private; hide existence from other users
		return nil, fiber.NewError(fiber.StatusNotFound, "watchlist not found")
	}

	return wl, nil
}
