// Location HTTP handlers.
//
// This file exposes REST endpoints for location resources:
//   - GET    /locations            (list, paginated, filterable)
//   - GET    /locations/trending   (top locations by active cafe count)
//   - GET    /locations/{slug}     (public lookup)
//   - POST   /admin/locations      (admin create)
//   - PATCH  /admin/locations/{id} (admin update)
//   - DELETE /admin/locations/{id} (admin delete; protected while cafes exist)
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

// LocationRequest is the JSON payload for creating or updating a location.
type LocationRequest struct {
	Name        string `json:"name" example:"Berlin"`
	Country     string `json:"country" example:"Germany"`
	CountryCode string `json:"country_code" example:"DE"`
	Region      string `json:"region" example:"Brandenburg"`
	Timezone    string `json:"timezone" example:"Europe/Berlin"`

	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	HeroImageURL string `json:"hero_image_url"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	IsFeatured *bool `json:"is_featured,omitempty"`
	IsActive   *bool `json:"is_active,omitempty"`
}

func (r *LocationRequest) toInput() services.LocationInput {
	return services.LocationInput{
		Name:         r.Name,
		Country:      r.Country,
		CountryCode:  r.CountryCode,
		Region:       r.Region,
		Timezone:     r.Timezone,
		ImageURL:     r.ImageURL,
		ThumbnailURL: r.ThumbnailURL,
		HeroImageURL: r.HeroImageURL,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		IsFeatured:   r.IsFeatured,
		IsActive:     r.IsActive,
	}
}

// ListLocationsResponse wraps a page of locations and pagination information.
type ListLocationsResponse struct {
	Locations  []domain.Location `json:"locations"`
	Pagination Pagination        `json:"pagination"`
}

// ListLocations godoc
// @ID          listLocations
// @Summary     List locations (paginated)
// @Tags        Locations
// @Produce     json
// @Param       country   query string false "Filter by country"
// @Param       featured  query bool   false "Only featured locations"
// @Param       q         query string false "Substring match on name"
// @Param       page      query int    false "Page number"    minimum(1) default(1)
// @Param       page_size query int    false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200 {object} handlers.ListLocationsResponse
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /locations [get]
func (h *Handlers) ListLocations(c *gin.Context) {
	page, pageSize := clampPagination(c)

	filter := repo.LocationFilter{
		Country: strings.TrimSpace(c.Query("country")),
		Query:   strings.TrimSpace(c.Query("q")),
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}

	items, total, err := h.locations.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListLocationsResponse{
		Locations:  items,
		Pagination: makePagination(page, pageSize, total),
	})
}

// TrendingLocations godoc
// @ID          trendingLocations
// @Summary     Locations with the most active cafes
// @Tags        Locations
// @Produce     json
// @Param       limit query int false "Max results" minimum(1) maximum(50) default(10)
// @Success     200 {array} domain.Location
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /locations/trending [get]
func (h *Handlers) TrendingLocations(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 10)
	items, err := h.locations.Trending(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetLocation godoc
// @ID          getLocation
// @Summary     Get a location by slug
// @Tags        Locations
// @Produce     json
// @Param       slug path string true "Location slug" example(berlin)
// @Success     200 {object} domain.Location
// @Failure     404 {object} handlers.ErrorResponse "Location not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /locations/{slug} [get]
func (h *Handlers) GetLocation(c *gin.Context) {
	loc, err := h.locations.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "location not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, loc)
}

// CreateLocation godoc
// @ID          createLocation
// @Summary     Create a location (admin)
// @Tags        Locations
// @Accept      json
// @Produce     json
// @Param       body body handlers.LocationRequest true "Location payload"
// @Success     201 {object} domain.Location
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     403 {object} handlers.ErrorResponse "Admin role required"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/locations [post]
func (h *Handlers) CreateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}

	loc, err := h.locations.Create(c.Request.Context(), req.toInput())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, loc)
}

// UpdateLocation godoc
// @ID          updateLocation
// @Summary     Update a location (admin)
// @Tags        Locations
// @Accept      json
// @Produce     json
// @Param       id   path string true "Location ID (UUID)" format(uuid)
// @Param       body body handlers.LocationRequest true "Fields to update"
// @Success     200 {object} domain.Location
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload"
// @Failure     404 {object} handlers.ErrorResponse "Location not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/locations/{id} [patch]
func (h *Handlers) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	loc, err := h.locations.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		if errors.Is(err, services.ErrLocationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "location not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, loc)
}

// DeleteLocation godoc
// @ID          deleteLocation
// @Summary     Delete an empty location (admin)
// @Tags        Locations
// @Param       id path string true "Location ID (UUID)" format(uuid)
// @Success     204 {string} string "No Content"
// @Failure     404 {object} handlers.ErrorResponse "Location not found"
// @Failure     409 {object} handlers.ErrorResponse "Location still has cafes"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/locations/{id} [delete]
func (h *Handlers) DeleteLocation(c *gin.Context) {
	err := h.locations.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrLocationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "location not found")
	case errors.Is(err, services.ErrLocationHasCafes):
		fail(c, http.StatusConflict, ErrCodeLocationInUse, "location still has cafes")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
