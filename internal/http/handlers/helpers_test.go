package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/auth"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/config"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/http/middleware"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:h_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "handler-test-secret",
		AccessTTL:         15 * time.Minute,
		RefreshTTL:        24 * time.Hour,
		AccessCookieName:  "access_token",
		RefreshCookieName: "refresh_token",
		CookieSameSite:    "lax",
	}
}

// fixture bundles everything a handler test needs: the DB, the built router,
// and the services for direct seeding.
type fixture struct {
	db        *gorm.DB
	router    *gin.Engine
	handlers  *Handlers
	auth      *services.AuthService
	locations *services.LocationService
	cafes     *services.CafeService
	reviews   *services.ReviewService
	favorites *services.FavoriteService
}

// asUser is a test middleware standing in for the real auth middleware: it
// injects the identity the token verification would have produced.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(middleware.CtxUserID, id)
			c.Set(middleware.CtxUserRole, role)
		}
		c.Next()
	}
}

// newFixture builds the handler set and mounts the full route table on a bare
// gin engine with an identity-injecting middleware instead of JWT parsing.
// userID/role configure that injected identity ("" means anonymous).
func newFixture(t *testing.T, userID, role string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	jwtCfg := testJWTConfig()
	tokens := auth.NewManager(jwtCfg.Secret, jwtCfg.AccessTTL, jwtCfg.RefreshTTL)

	f := &fixture{
		db: db,
		auth: &services.AuthService{
			DB:               db,
			Tokens:           tokens,
			EmailVerifTTL:    7 * 24 * time.Hour,
			PasswordResetTTL: 24 * time.Hour,
			BcryptCost:       bcrypt.MinCost,
		},
		locations: &services.LocationService{DB: db},
		cafes:     &services.CafeService{DB: db},
		reviews:   &services.ReviewService{DB: db},
		favorites: &services.FavoriteService{DB: db},
	}
	f.handlers = New(f.auth, f.locations, f.cafes, f.reviews, f.favorites, db, jwtCfg)
	f.router = mountRoutes(f.handlers, userID, role)
	return f
}

// newFixtureWithIdentity shares base's DB and services but mounts the route
// table with a different injected identity.
func newFixtureWithIdentity(t *testing.T, base *fixture, userID, role string) *fixture {
	t.Helper()
	f := *base
	f.router = mountRoutes(base.handlers, userID, role)
	return &f
}

func mountRoutes(h *Handlers, userID, role string) *gin.Engine {
	r := gin.New()
	r.Use(asUser(userID, role))
	r.GET("/stats", h.PlatformStats)
	r.GET("/metadata", h.Metadata)

	r.GET("/locations", h.ListLocations)
	r.GET("/locations/trending", h.TrendingLocations)
	r.GET("/locations/:slug", h.GetLocation)

	r.GET("/cafes", h.ListCafes)
	r.GET("/cafes/popular", h.PopularCafes)
	r.GET("/cafes/:slug", h.GetCafe)
	r.GET("/cafes/:slug/reviews", h.ListCafeReviews)
	r.POST("/cafes/:slug/reviews", h.CreateReview)
	r.PATCH("/cafes/:slug/reviews/:reviewID", h.UpdateReview)
	r.DELETE("/cafes/:slug/reviews/:reviewID", h.DeleteReview)
	r.GET("/cafes/:slug/favorite", h.FavoriteStatus)
	r.POST("/cafes/:slug/favorite", h.SaveFavorite)
	r.DELETE("/cafes/:slug/favorite", h.RemoveFavorite)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/verify-email", h.VerifyEmail)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/reset-password", h.ResetPassword)
	r.GET("/auth/me", h.Me)
	r.PATCH("/auth/me", h.UpdateMe)
	r.POST("/auth/change-password", h.ChangePassword)
	r.POST("/auth/resend-verification", h.ResendVerification)

	r.GET("/me/reviews", h.MyReviews)
	r.GET("/me/favorites", h.MyFavorites)

	r.POST("/admin/locations", h.CreateLocation)
	r.PATCH("/admin/locations/:id", h.UpdateLocation)
	r.DELETE("/admin/locations/:id", h.DeleteLocation)
	r.POST("/admin/cafes", h.CreateCafe)
	r.PATCH("/admin/cafes/:id", h.UpdateCafe)
	r.DELETE("/admin/cafes/:id", h.DeleteCafe)
	r.PATCH("/admin/reviews", h.ModerateReviews)

	return r
}

// do performs a JSON request against the fixture router.
func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// seedLocation creates a location through the service layer.
func (f *fixture) seedLocation(t *testing.T, name string) *domain.Location {
	t.Helper()
	loc, err := f.locations.Create(context.Background(), services.LocationInput{
		Name: name, Country: "Germany", CountryCode: "de",
	})
	if err != nil {
		t.Fatalf("seed location: %v", err)
	}
	return loc
}

// seedCafe creates an active cafe in loc through the service layer so
// location counters stay correct.
func (f *fixture) seedCafe(t *testing.T, loc *domain.Location, name string) *domain.Cafe {
	t.Helper()
	cafe, err := f.cafes.Create(context.Background(), services.CafeInput{
		Name: name, LocationID: loc.ID, City: "Berlin",
	})
	if err != nil {
		t.Fatalf("seed cafe: %v", err)
	}
	return cafe
}

// seedUser creates a user directly; password is "password-1" unless the test
// logs in through the API, which should register instead.
func (f *fixture) seedUser(t *testing.T, email, role string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password-1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := repo.CreateUser(context.Background(), f.db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error envelope %q: %v", w.Body.String(), err)
	}
	return er.Code
}
