package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/middleware"
	"github.com/atlaspharma/atlas-api/internal/models"
)

// ListUsers returns a paginated user listing (admin only)
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	params := &models.UserListParams{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
		Search: c.Query("search"),
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	users, total, err := h.db.ListUsers(c.Context(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return SuccessWithMeta(c, users, total, params.Limit, params.Offset)
}

// GetUser returns a single user (admin only)
func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.db.GetUserByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get user")
	}

	return Success(c, user)
}

// AdminUpdateUser updates any user's email, company, or role (admin only)
func (h *Handler) AdminUpdateUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req models.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email != nil && !emailRegex.MatchString(*req.Email) {
		return Error(c, fiber.StatusBadRequest, "invalid email format")
	}
	if req.Role != nil && *req.Role != models.RoleUser && *req.Role != models.RoleAdmin {
		return Error(c, fiber.StatusBadRequest, "invalid role")
	}

	user, err := h.db.AdminUpdateUser(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		if errors.Is(err, database.ErrEmailExists) {
			return Error(c, fiber.StatusConflict, "email already registered")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update user")
	}

	return Success(c, user)
}

// DeleteUser removes a user account (admin only)
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if id == middleware.GetUserID(c) {
		return Error(c, fiber.StatusBadRequest, "cannot delete your own account")
	}

	if err := h.db.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete user")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "user deleted successfully",
	})
}

// GetPlatformStats returns marketplace-wide counters (admin only)
func (h *Handler) GetPlatformStats(c *fiber.Ctx) error {
	stats, err := h.db.GetPlatformStats(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load platform stats")
	}

	return Success(c, stats)
}
