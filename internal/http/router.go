// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, compression, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/auth"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/config"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/http/handlers"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/http/middleware"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), authentication and
// rate limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Authenticate (claims into context; no gating yet)
//  8. Rate limiter (per user/IP — after auth so logged-in users get their own bucket)
//  9. CORS, security headers, gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token verification: cookie first, Bearer fallback. Never aborts;
	// RequireAuth on protected groups does the gating.
	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	r.Use(middleware.Authenticate(tokens, cfg.JWT.AccessCookieName))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture. Cookie auth requires credentialed CORS, which in turn
	// requires an explicit origin allowlist; without one we fall back to a
	// credential-less wildcard (Bearer clients still work).
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true, // cookies cross the origin boundary
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Compress JSON responses; Prometheus scrapes stay uncompressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default; enable via config in non-prod environments)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/config
	authSvc := &services.AuthService{
		DB:               db,
		Tokens:           tokens,
		EmailVerifTTL:    cfg.EmailVerifTTL,
		PasswordResetTTL: cfg.PasswordResetTTL,
	}
	locSvc := &services.LocationService{DB: db}
	cafeSvc := &services.CafeService{DB: db}
	reviewSvc := &services.ReviewService{DB: db}
	favSvc := &services.FavoriteService{DB: db}

	h := handlers.New(authSvc, locSvc, cafeSvc, reviewSvc, favSvc, db, cfg.JWT)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Platform metadata
		api.GET("/stats", h.PlatformStats)
		api.GET("/metadata", h.Metadata)

		// Locations (read)
		api.GET("/locations", h.ListLocations)
		api.GET("/locations/trending", h.TrendingLocations)
		api.GET("/locations/:slug", h.GetLocation)

		// Cafes (read)
		api.GET("/cafes", h.ListCafes)
		api.GET("/cafes/popular", h.PopularCafes)
		api.GET("/cafes/:slug", h.GetCafe)
		api.GET("/cafes/:slug/reviews", h.ListCafeReviews)

		// Auth (session lifecycle)
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/refresh", h.Refresh)
		api.POST("/auth/logout", h.Logout)
		api.POST("/auth/verify-email", h.VerifyEmail)
		api.POST("/auth/forgot-password", h.ForgotPassword)
		api.POST("/auth/reset-password", h.ResetPassword)
	}

	// Authenticated routes
	user := api.Group("", middleware.RequireAuth())
	{
		user.GET("/auth/me", h.Me)
		user.PATCH("/auth/me", h.UpdateMe)
		user.POST("/auth/change-password", h.ChangePassword)
		user.POST("/auth/resend-verification", h.ResendVerification)

		user.GET("/me/reviews", h.MyReviews)
		user.GET("/me/favorites", h.MyFavorites)

		user.POST("/cafes/:slug/reviews", h.CreateReview)
		user.PATCH("/cafes/:slug/reviews/:reviewID", h.UpdateReview)
		user.DELETE("/cafes/:slug/reviews/:reviewID", h.DeleteReview)

		user.GET("/cafes/:slug/favorite", h.FavoriteStatus)
		user.POST("/cafes/:slug/favorite", h.SaveFavorite)
		user.DELETE("/cafes/:slug/favorite", h.RemoveFavorite)
	}

	// Admin routes; catalog CRUD goes through IDs, never slugs
	admin := api.Group("/admin", middleware.RequireAuth(), middleware.RequireRole(domain.RoleAdmin))
	{
		admin.POST("/locations", h.CreateLocation)
		admin.PATCH("/locations/:id", h.UpdateLocation)
		admin.DELETE("/locations/:id", h.DeleteLocation)

		admin.POST("/cafes", h.CreateCafe)
		admin.PATCH("/cafes/:id", h.UpdateCafe)
		admin.DELETE("/cafes/:id", h.DeleteCafe)

		admin.PATCH("/reviews", h.ModerateReviews)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
