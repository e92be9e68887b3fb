// Review HTTP handlers.
//
// This file exposes REST endpoints for review resources:
//   - GET    /cafes/{slug}/reviews               (list, paginated)
//   - POST   /cafes/{slug}/reviews               (create; one per user per cafe)
//   - PATCH  /cafes/{slug}/reviews/{reviewID}    (author edit)
//   - DELETE /cafes/{slug}/reviews/{reviewID}    (author or admin soft delete)
//   - GET    /me/reviews                         (current user's reviews)
//   - PATCH  /admin/reviews                      (bulk moderation)
//
// Every write recomputes the cafe's denormalized rating summary inside the
// same transaction (see services.ReviewService).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/services"
)

// ReviewRequest is the JSON payload for creating or updating a review.
// Dimension ratings are independently optional; nil means "not rated".
type ReviewRequest struct {
	RatingOverall int  `json:"rating_overall" binding:"omitempty,min=1,max=5" example:"5"`
	RatingWifi    *int `json:"rating_wifi,omitempty" binding:"omitempty,min=1,max=5"`
	RatingPower   *int `json:"rating_power,omitempty" binding:"omitempty,min=1,max=5"`
	RatingNoise   *int `json:"rating_noise,omitempty" binding:"omitempty,min=1,max=5"`
	RatingCoffee  *int `json:"rating_coffee,omitempty" binding:"omitempty,min=1,max=5"`

	Text     string   `json:"text" example:"Great wifi, plenty of outlets."`
	Language string   `json:"language" example:"en"`
	Photos   []string `json:"photos,omitempty"`
}

func (r *ReviewRequest) toInput() services.ReviewInput {
	return services.ReviewInput{
		RatingOverall: r.RatingOverall,
		RatingWifi:    r.RatingWifi,
		RatingPower:   r.RatingPower,
		RatingNoise:   r.RatingNoise,
		RatingCoffee:  r.RatingCoffee,
		Text:          r.Text,
		Language:      r.Language,
		Photos:        r.Photos,
	}
}

// ModerateReviewsRequest is the JSON payload for admin bulk moderation.
type ModerateReviewsRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Active *bool    `json:"active" binding:"required"`
}

// ListReviewsResponse wraps a page of reviews and pagination information.
type ListReviewsResponse struct {
	Reviews    []domain.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

// resolveCafe turns the path's slug-or-ID into the active cafe, writing the
// 404 itself when there is none.
func (h *Handlers) resolveCafe(c *gin.Context) (*domain.Cafe, bool) {
	cafe, err := h.cafes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrCafeNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe not found")
		} else {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return nil, false
	}
	return cafe, true
}

// ListCafeReviews godoc
// @ID          listCafeReviews
// @Summary     List a cafe's reviews (paginated)
// @Tags        Reviews
// @Produce     json
// @Param       slug      path  string true  "Cafe slug or ID" example(st-oberholz)
// @Param       page      query int    false "Page number"    minimum(1) default(1)
// @Param       page_size query int    false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200 {object} handlers.ListReviewsResponse
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/reviews [get]
func (h *Handlers) ListCafeReviews(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.reviews.ListForCafe(c.Request.Context(), cafe.ID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListReviewsResponse{
		Reviews:    items,
		Pagination: makePagination(page, pageSize, total),
	})
}

// CreateReview godoc
// @ID          createReview
// @Summary     Review a cafe
// @Description One review per user per cafe; a deleted review still occupies the slot.
// @Tags        Reviews
// @Accept      json
// @Produce     json
// @Param       slug path string true "Cafe slug or ID" example(st-oberholz)
// @Param       body body handlers.ReviewRequest true "Review payload"
// @Success     201 {object} domain.Review
// @Failure     400 {object} handlers.ErrorResponse "Invalid rating or missing text"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     409 {object} handlers.ErrorResponse "Review already exists"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/reviews [post]
func (h *Handlers) CreateReview(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ratings must be 1-5 and text is required")
		return
	}

	rev, err := h.reviews.Create(c.Request.Context(), userID(c), cafe.ID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateReview):
			fail(c, http.StatusConflict, ErrCodeDuplicateReview, "you already reviewed this cafe")
		case errors.Is(err, services.ErrInvalidRating):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ratings must be between 1 and 5")
		case errors.Is(err, services.ErrCafeNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, rev)
}

// UpdateReview godoc
// @ID          updateReview
// @Summary     Edit your review
// @Tags        Reviews
// @Accept      json
// @Produce     json
// @Param       slug     path string true "Cafe slug or ID" example(st-oberholz)
// @Param       reviewID path string true "Review ID (UUID)" format(uuid)
// @Param       body     body handlers.ReviewRequest true "Fields to update"
// @Success     200 {object} domain.Review
// @Failure     400 {object} handlers.ErrorResponse "Invalid rating"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     403 {object} handlers.ErrorResponse "Not your review"
// @Failure     404 {object} handlers.ErrorResponse "Cafe or review not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/reviews/{reviewID} [patch]
func (h *Handlers) UpdateReview(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ratings must be 1-5")
		return
	}

	rev, err := h.reviews.Update(c.Request.Context(), userID(c), cafe.ID, c.Param("reviewID"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "you can only edit your own review")
		case errors.Is(err, services.ErrInvalidRating):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ratings must be between 1 and 5")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, rev)
}

// DeleteReview godoc
// @ID          deleteReview
// @Summary     Delete a review
// @Description Soft delete by the author or an admin. The cafe's rating summary is recomputed.
// @Tags        Reviews
// @Param       slug     path string true "Cafe slug or ID" example(st-oberholz)
// @Param       reviewID path string true "Review ID (UUID)" format(uuid)
// @Success     204 {string} string "No Content"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     403 {object} handlers.ErrorResponse "Neither author nor admin"
// @Failure     404 {object} handlers.ErrorResponse "Cafe or review not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/reviews/{reviewID} [delete]
func (h *Handlers) DeleteReview(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}

	err := h.reviews.Delete(c.Request.Context(), actor(c), cafe.ID, c.Param("reviewID"))
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrReviewNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "you can only delete your own review")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// MyReviews godoc
// @ID          myReviews
// @Summary     List your reviews (paginated)
// @Tags        Reviews
// @Produce     json
// @Param       page      query int false "Page number"    minimum(1) default(1)
// @Param       page_size query int false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200 {object} handlers.ListReviewsResponse
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /me/reviews [get]
func (h *Handlers) MyReviews(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.reviews.ListForUser(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListReviewsResponse{
		Reviews:    items,
		Pagination: makePagination(page, pageSize, total),
	})
}

// ModerateReviews godoc
// @ID          moderateReviews
// @Summary     Bulk (de)activate reviews (admin)
// @Description Flips the soft-delete flag on a batch of reviews and recomputes every affected cafe's rating summary.
// @Tags        Reviews
// @Accept      json
// @Param       body body handlers.ModerateReviewsRequest true "Review IDs and target state"
// @Success     204 {string} string "No Content"
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     403 {object} handlers.ErrorResponse "Admin role required"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/reviews [patch]
func (h *Handlers) ModerateReviews(c *gin.Context) {
	var req ModerateReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids and active flag required")
		return
	}

	if err := h.reviews.SetActive(c.Request.Context(), req.IDs, *req.Active); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
