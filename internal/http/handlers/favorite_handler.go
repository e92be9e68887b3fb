// Favorite HTTP handlers.
//
//   - POST   /cafes/{slug}/favorite   (save)
//   - DELETE /cafes/{slug}/favorite   (remove)
//   - GET    /cafes/{slug}/favorite   (status)
//   - GET    /me/favorites            (list, paginated)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/services"
)

// FavoriteStatusResponse reports whether the current user favorited a cafe.
type FavoriteStatusResponse struct {
	Favorited bool `json:"favorited" example:"true"`
}

// ListFavoritesResponse wraps a page of favorites and pagination information.
type ListFavoritesResponse struct {
	Favorites  []domain.Favorite `json:"favorites"`
	Pagination Pagination        `json:"pagination"`
}

// SaveFavorite godoc
// @ID          saveFavorite
// @Summary     Favorite a cafe
// @Tags        Favorites
// @Produce     json
// @Param       slug path string true "Cafe slug or ID" example(st-oberholz)
// @Success     201 {object} domain.Favorite
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     409 {object} handlers.ErrorResponse "Already favorited"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/favorite [post]
func (h *Handlers) SaveFavorite(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}

	fav, err := h.favorites.Save(c.Request.Context(), userID(c), cafe.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateFavorite):
			fail(c, http.StatusConflict, ErrCodeDuplicateFavorite, "cafe is already in your favorites")
		case errors.Is(err, services.ErrCafeNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, fav)
}

// RemoveFavorite godoc
// @ID          removeFavorite
// @Summary     Remove a cafe from your favorites
// @Tags        Favorites
// @Param       slug path string true "Cafe slug or ID" example(st-oberholz)
// @Success     204 {string} string "No Content"
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     404 {object} handlers.ErrorResponse "Cafe or favorite not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/favorite [delete]
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}

	err := h.favorites.Remove(c.Request.Context(), userID(c), cafe.ID)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrFavoriteNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "cafe is not in your favorites")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// FavoriteStatus godoc
// @ID          favoriteStatus
// @Summary     Check whether you favorited a cafe
// @Tags        Favorites
// @Produce     json
// @Param       slug path string true "Cafe slug or ID" example(st-oberholz)
// @Success     200 {object} handlers.FavoriteStatusResponse
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     404 {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /cafes/{slug}/favorite [get]
func (h *Handlers) FavoriteStatus(c *gin.Context) {
	cafe, found := h.resolveCafe(c)
	if !found {
		return
	}

	favorited, err := h.favorites.Status(c.Request.Context(), userID(c), cafe.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, FavoriteStatusResponse{Favorited: favorited})
}

// MyFavorites godoc
// @ID          myFavorites
// @Summary     List your favorite cafes (paginated)
// @Tags        Favorites
// @Produce     json
// @Param       page      query int false "Page number"    minimum(1) default(1)
// @Param       page_size query int false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200 {object} handlers.ListFavoritesResponse
// @Failure     401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /me/favorites [get]
func (h *Handlers) MyFavorites(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.favorites.List(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListFavoritesResponse{
		Favorites:  items,
		Pagination: makePagination(page, pageSize, total),
	})
}
