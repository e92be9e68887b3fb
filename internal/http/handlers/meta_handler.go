// Platform metadata and stats handlers.
//
//   - GET /stats     (aggregate counts for the landing page)
//   - GET /metadata  (categories, badge colors, feature whitelist)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
)

// CategoryInfo pairs a category value with its badge color.
type CategoryInfo struct {
	Value string `json:"value" example:"coworking"`
	Color string `json:"color" example:"#3B82F6"`
}

// MetadataResponse enumerates the vocabularies clients need to render filters
// and forms without hardcoding them.
type MetadataResponse struct {
	Categories  []CategoryInfo `json:"categories"`
	Features    []string       `json:"features"`
	TopFeatures []string       `json:"top_features"`
	PriceLevels []int          `json:"price_levels"`
}

// PlatformStats godoc
// @ID          platformStats
// @Summary     Platform-wide aggregate counts
// @Tags        Meta
// @Produce     json
// @Success     200 {object} repo.PlatformStats
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) PlatformStats(c *gin.Context) {
	stats, err := repo.GetPlatformStats(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

// Metadata godoc
// @ID          metadata
// @Summary     Filter and form vocabularies
// @Description Cafe categories with their badge colors, the feature whitelist, and valid price levels.
// @Tags        Meta
// @Produce     json
// @Success     200 {object} handlers.MetadataResponse
// @Router      /metadata [get]
func (h *Handlers) Metadata(c *gin.Context) {
	categories := []string{
		domain.CategoryCafe,
		domain.CategoryCoworking,
		domain.CategoryRestaurant,
		domain.CategoryHotelCafe,
		domain.CategoryLibrary,
		domain.CategoryOther,
	}
	infos := make([]CategoryInfo, 0, len(categories))
	for _, cat := range categories {
		infos = append(infos, CategoryInfo{Value: cat, Color: domain.CategoryColor(cat)})
	}
	ok(c, http.StatusOK, MetadataResponse{
		Categories:  infos,
		Features:    domain.AllowedFeatures,
		TopFeatures: domain.TopFeatures,
		PriceLevels: []int{domain.PriceBudget, domain.PriceModerate, domain.PriceExpensive, domain.PricePremium},
	})
}
