// Handler wiring and shared HTTP helpers.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate domain/service errors into HTTP responses. Authentication
// context (user ID and role) is placed in the gin context by the auth
// middleware; the helpers here read it back out.
package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/config"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/http/middleware"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/services"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/utils"
)

// Handlers groups the HTTP endpoints for auth, locations, cafes, reviews,
// favorites, and platform metadata.
type Handlers struct {
	auth      *services.AuthService
	locations *services.LocationService
	cafes     *services.CafeService
	reviews   *services.ReviewService
	favorites *services.FavoriteService

	db     *gorm.DB // platform stats only; everything else goes through services
	jwtCfg config.JWTConfig
}

// New constructs a Handlers instance bound to the given services. The JWT
// config drives the auth cookie attributes.
func New(
	auth *services.AuthService,
	locations *services.LocationService,
	cafes *services.CafeService,
	reviews *services.ReviewService,
	favorites *services.FavoriteService,
	db *gorm.DB,
	jwtCfg config.JWTConfig,
) *Handlers {
	return &Handlers{
		auth:      auth,
		locations: locations,
		cafes:     cafes,
		reviews:   reviews,
		favorites: favorites,
		db:        db,
		jwtCfg:    jwtCfg,
	}
}

// userID returns the authenticated user's ID, or "" on public routes.
func userID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserID)
}

// actor reconstructs the acting user from the auth context. Only the fields
// authorization decisions need (ID, role) are populated.
func actor(c *gin.Context) *domain.User {
	return &domain.User{
		ID:   c.GetString(middleware.CtxUserID),
		Role: c.GetString(middleware.CtxUserRole),
	}
}

// clientMeta extracts the request attribution recorded in the auth audit log.
func clientMeta(c *gin.Context) services.ClientMeta {
	return services.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func makePagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
