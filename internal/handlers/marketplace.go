package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/models"
	"github.com/atlaspharma/atlas-api/internal/pipeline"
)

// ListListings is the marketplace browse/search endpoint. It loads every
// available record, runs the search pipeline over it, and pages the result.
// Stats always describe the whole filtered set, not the returned page.
func (h *Handler) ListListings(c *fiber.Ctx) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}
	sortKey := models.ParseSortKey(c.Query("sort"))

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, err := h.db.ListMarketplaceRecords(c.Context())
	if err != nil {
		// No partial data: a failed fetch means no pipeline run at all.
		return Error(c, fiber.StatusInternalServerError, "failed to load marketplace listings")
	}

	result := pipeline.Apply(records, criteria, sortKey)
	page := pipeline.Paginate(result.Records, limit, offset)

	return c.JSON(APIResponse{
		Success: true,
		Data: fiber.Map{
			"records": page,
			"stats":   result.Stats,
		},
		Meta: &Meta{
			Total:  result.Stats.TotalCount,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// GetListing returns a single marketplace listing
func (h *Handler) GetListing(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid listing id")
	}

	rec, err := h.db.GetRecordByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "listing not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get listing")
	}

	if rec.Status != models.StatusAvailable {
		return Error(c, fiber.StatusNotFound, "listing not found")
	}

	return Success(c, rec)
}

// GetFilterOptions returns the discrete filter value sets for the search UI
func (h *Handler) GetFilterOptions(c *fiber.Ctx) error {
	options, err := h.db.GetFilterOptions(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load filter options")
	}

	return Success(c, options)
}

// parseCriteria builds FilterCriteria from query parameters. Criteria values
// are user input, so malformed numbers here are a 400. Malformed record data
// is different; the pipeline tolerates that.
func parseCriteria(c *fiber.Ctx) (models.FilterCriteria, error) {
	criteria := models.FilterCriteria{
		SearchTerm:    c.Query("search"),
		Manufacturers: splitList(c.Query("manufacturers")),
		DosageForms:   splitList(c.Query("dosage_forms")),
	}

	if v := c.Query("price_min"); v != "" {
		if _, err := decimal.NewFromString(v); err != nil {
			return criteria, errors.New("price_min must be a decimal")
		}
		criteria.PriceMin = &v
	}
	if v := c.Query("price_max"); v != "" {
		if _, err := decimal.NewFromString(v); err != nil {
			return criteria, errors.New("price_max must be a decimal")
		}
		criteria.PriceMax = &v
	}
	if v := c.Query("quantity_min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("quantity_min must be an integer")
		}
		criteria.QuantityMin = &n
	}
	if v := c.Query("quantity_max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("quantity_max must be an integer")
		}
		criteria.QuantityMax = &n
	}
	if v := c.Query("expiry_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return criteria, errors.New("expiry_days must be an integer")
		}
		criteria.ExpiryDaysThreshold = &n
	}

	return criteria, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
