package repo

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// newTestDB opens an isolated in-memory database and migrates the full
// schema. Each call gets its own database name so tests cannot interfere.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// foreign_keys is a per-connection pragma; keep one connection so every
	// statement sees it.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.NewString(), Email: email, PasswordHash: "x", Role: domain.RoleUser, IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedLocation(t *testing.T, db *gorm.DB, name, slug string) *domain.Location {
	t.Helper()
	l := &domain.Location{ID: uuid.NewString(), Name: name, Slug: slug, Country: "Germany", IsActive: true}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed location: %v", err)
	}
	return l
}

func seedCafe(t *testing.T, db *gorm.DB, loc *domain.Location, name, slug string) *domain.Cafe {
	t.Helper()
	c := &domain.Cafe{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       slug,
		LocationID: loc.ID,
		City:       "Berlin",
		Category:   domain.CategoryCafe,
		PriceLevel: domain.PriceModerate,
		IsActive:   true,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed cafe: %v", err)
	}
	return c
}

func seedReview(t *testing.T, db *gorm.DB, cafe *domain.Cafe, user *domain.User, overall int, wifi *int) *domain.Review {
	t.Helper()
	r := &domain.Review{
		ID:            uuid.NewString(),
		CafeID:        cafe.ID,
		UserID:        user.ID,
		RatingOverall: overall,
		RatingWifi:    wifi,
		Text:          "solid place to work from",
		Language:      "en",
		IsActive:      true,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return r
}

func intPtr(n int) *int { return &n }

func reloadCafe(t *testing.T, db *gorm.DB, id string) *domain.Cafe {
	t.Helper()
	var c domain.Cafe
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		t.Fatalf("reload cafe: %v", err)
	}
	return &c
}

func reloadLocation(t *testing.T, db *gorm.DB, id string) *domain.Location {
	t.Helper()
	var l domain.Location
	if err := db.Where("id = ?", id).First(&l).Error; err != nil {
		t.Fatalf("reload location: %v", err)
	}
	return &l
}
