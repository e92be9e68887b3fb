// Cafe HTTP handlers.
//
// This file exposes REST endpoints for cafe resources:
//   - GET    /cafes           (list, paginated, rich filtering)
//   - GET    /cafes/popular   (top rated cafes with at least one review)
//   - GET    /cafes/{slug}    (public lookup)
//   - POST   /admin/cafes     (admin create)
//   - PATCH  /admin/cafes/{id} (admin update; reconciles location counters)
//   - DELETE /admin/cafes/{id} (admin hard delete; reviews/favorites cascade)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/services"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/utils"
)

// CafeRequest is the JSON payload for creating or updating a cafe.
type CafeRequest struct {
	Name        string `json:"name" example:"St. Oberholz"`
	Description string `json:"description"`
	Overview    string `json:"overview"`

	LocationID string `json:"location_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Address    string `json:"address"`
	AddressTwo string `json:"address_2"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city" example:"Berlin"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`

	ImageURL     string   `json:"image_url"`
	ThumbnailURL string   `json:"thumbnail_url"`
	LogoURL      string   `json:"logo_url"`
	Gallery      []string `json:"gallery,omitempty"`

	Category   string `json:"category" example:"cafe"`
	PriceLevel int    `json:"price_level" example:"2"`

	Features     []string          `json:"features,omitempty"`
	Amenities    map[string]bool   `json:"amenities,omitempty"`
	OpeningHours map[string]string `json:"opening_hours,omitempty"`
	Timezone     string            `json:"timezone"`

	IsFeatured *bool `json:"is_featured,omitempty"`
	IsVerified *bool `json:"is_verified,omitempty"`
	IsActive   *bool `json:"is_active,omitempty"`

	OwnerID   *string `json:"owner_id,omitempty"`
	OwnerRole string  `json:"owner_role"`
}

func (r *CafeRequest) toInput() services.CafeInput {
	return services.CafeInput{
		Name:         r.Name,
		Description:  r.Description,
		Overview:     r.Overview,
		LocationID:   r.LocationID,
		Address:      r.Address,
		AddressTwo:   r.AddressTwo,
		PostalCode:   r.PostalCode,
		City:         r.City,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Phone:        r.Phone,
		Email:        r.Email,
		Website:      r.Website,
		ImageURL:     r.ImageURL,
		ThumbnailURL: r.ThumbnailURL,
		LogoURL:      r.LogoURL,
		Gallery:      r.Gallery,
		Category:     r.Category,
		PriceLevel:   r.PriceLevel,
		Features:     r.Features,
		Amenities:    r.Amenities,
		OpeningHours: r.OpeningHours,
		Timezone:     r.Timezone,
		IsFeatured:   r.IsFeatured,
		IsVerified:   r.IsVerified,
		IsActive:     r.IsActive,
		OwnerID:      r.OwnerID,
		OwnerRole:    r.OwnerRole,
	}
}

// ListCafesResponse wraps a page of cafes and pagination information.
type ListCafesResponse struct {
	Cafes      []domain.Cafe `json:"cafes"`
	Pagination Pagination    `json:"pagination"`
}

// cafeFilterFromQuery builds the repo filter from the list query params.
func cafeFilterFromQuery(c *gin.Context) repo.CafeFilter {
	f := repo.CafeFilter{
		LocationID: strings.TrimSpace(c.Query("location_id")),
		City:       strings.TrimSpace(c.Query("city")),
		Category:   strings.TrimSpace(c.Query("category")),
		PriceLevel: utils.AtoiDefault(c.Query("price_level"), 0),
		MinRating:  utils.FloatDefault(c.Query("min_rating"), 0),
		Query:      strings.TrimSpace(c.Query("q")),
		Ordering:   strings.TrimSpace(c.Query("ordering")),
	}
	if raw := c.Query("features"); raw != "" {
		for _, feat := range strings.Split(raw, ",") {
			if feat = strings.TrimSpace(feat); feat != "" {
				f.Features = append(f.Features, feat)
			}
		}
	}
	return f
}

// ListCafes godoc
// @ID          listCafes
// @Summary     List cafes (paginated)
// @Description Active cafes, filterable by location, city, category, price level, features (comma-separated, all must match), and minimum rating.
// @Tags        Cafes
// @Produce     json
// @Param       location_id query string false "Filter by location ID"
// @Param       city        query string false "Filter by city"
// @Param       category    query string false "cafe|coworking|restaurant|hotel_cafe|library|other"
// @Param       price_level query int    false "1 (budget) .. 4 (premium)"
// @Param       features    query string false "Comma-separated feature list" example(fast_wifi,power_outlets)
// @Param       min_rating  query number false "Minimum overall rating"
// @Param       q           query string false "Substring match on name"
// @Param       ordering    query string false "rating (default) | count | newest"
// @Param       page        query int    false "Page number"    minimum(1) default(1)
// @Param       page_size   query int    false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200 {object} handlers.ListCafesResponse
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes [get]
func (h *Handlers) ListCafes(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.cafes.List(c.Request.Context(), cafeFilterFromQuery(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListCafesResponse{
		Cafes:      items,
		Pagination: makePagination(page, pageSize, total),
	})
}

// PopularCafes godoc
// @ID          popularCafes
// @Summary     Top rated cafes
// @Description Highest-rated active cafes that have at least one review.
// @Tags        Cafes
// @Produce     json
// @Param       limit query int false "Max results" minimum(1) maximum(50) default(10)
// @Success     200 {array} domain.Cafe
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/popular [get]
func (h *Handlers) PopularCafes(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 10)
	items, err := h.cafes.Popular(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetCafe godoc
// @ID          getCafe
// @Summary     Get a cafe by slug
// @Tags        Cafes
// @Produce     json
// @Param       slug path string true "Cafe slug" example(st-oberholz)
// @Success     200 {object} domain.Cafe
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug} [get]
func (h *Handlers) GetCafe(c *gin.Context) {
	cafe, err := h.cafes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrCafeNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cafe)
}

// cafeWriteError maps service errors of cafe writes onto HTTP responses.
func cafeWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCafeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe not found")
	case errors.Is(err, services.ErrLocationNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "location does not exist")
	case errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidPriceLevel),
		errors.Is(err, services.ErrInvalidFeature):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// CreateCafe godoc
// @ID          createCafe
// @Summary     Create a cafe (admin)
// @Tags        Cafes
// @Accept      json
// @Produce     json
// @Param       body body handlers.CafeRequest true "Cafe payload"
// @Success     201 {object} domain.Cafe
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload or unknown location"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     403 {object} handlers.ErrorResponse "Admin role required"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cafes [post]
func (h *Handlers) CreateCafe(c *gin.Context) {
	var req CafeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" || req.LocationID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and location_id required")
		return
	}

	cafe, err := h.cafes.Create(c.Request.Context(), req.toInput())
	if err != nil {
		cafeWriteError(c, err)
		return
	}
	ok(c, http.StatusCreated, cafe)
}

// UpdateCafe godoc
// @ID          updateCafe
// @Summary     Update a cafe (admin)
// @Description Applies the provided fields. Changing location or active state reconciles the location cafe counters atomically.
// @Tags        Cafes
// @Accept      json
// @Produce     json
// @Param       id   path string true "Cafe ID (UUID)" format(uuid)
// @Param       body body handlers.CafeRequest true "Fields to update"
// @Success     200 {object} domain.Cafe
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload or unknown location"
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cafes/{id} [patch]
func (h *Handlers) UpdateCafe(c *gin.Context) {
	var req CafeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cafe, err := h.cafes.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		cafeWriteError(c, err)
		return
	}
	ok(c, http.StatusOK, cafe)
}

// DeleteCafe godoc
// @ID          deleteCafe
// @Summary     Delete a cafe (admin)
// @Description Hard delete. Reviews and favorites cascade; an active cafe is uncounted from its location.
// @Tags        Cafes
// @Param       id path string true "Cafe ID (UUID)" format(uuid)
// @Success     204 {string} string "No Content"
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cafes/{id} [delete]
func (h *Handlers) DeleteCafe(c *gin.Context) {
	err := h.cafes.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrCafeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
