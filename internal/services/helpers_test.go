package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

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

func mustLocation(t *testing.T, db *gorm.DB, name, slug string) *domain.Location {
	t.Helper()
	l := &domain.Location{ID: uuid.NewString(), Name: name, Slug: slug, Country: "Germany", IsActive: true}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed location: %v", err)
	}
	return l
}

func mustUser(t *testing.T, db *gorm.DB, email, role string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.NewString(), Email: email, PasswordHash: "x", Role: role, IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func mustCafe(t *testing.T, db *gorm.DB, svc *CafeService, loc *domain.Location, name string) *domain.Cafe {
	t.Helper()
	cafe, err := svc.Create(context.Background(), CafeInput{Name: name, LocationID: loc.ID})
	if err != nil {
		t.Fatalf("create cafe: %v", err)
	}
	_ = db
	return cafe
}

func cafeCount(t *testing.T, db *gorm.DB, locationID string) int64 {
	t.Helper()
	var l domain.Location
	if err := db.Where("id = ?", locationID).First(&l).Error; err != nil {
		t.Fatalf("reload location: %v", err)
	}
	return l.CafeCount
}

func cafeRatings(t *testing.T, db *gorm.DB, cafeID string) *domain.Cafe {
	t.Helper()
	var c domain.Cafe
	if err := db.Where("id = ?", cafeID).First(&c).Error; err != nil {
		t.Fatalf("reload cafe: %v", err)
	}
	return &c
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }
