// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Location
// model, including the denormalized active-cafe counter.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules to the services package.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// CreateLocation inserts a location row. Slug uniqueness is enforced by the
// database; a duplicate surfaces as a raw DB error for the service layer to
// translate.
func CreateLocation(ctx context.Context, db *gorm.DB, loc *domain.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	loc.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(loc).Error
}

// GetLocation fetches a location by ID.
func GetLocation(ctx context.Context, db *gorm.DB, id string) (*domain.Location, error) {
	var loc domain.Location
	if err := db.WithContext(ctx).Where("id = ?", id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetLocationBySlug fetches an active location by its slug.
func GetLocationBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Location, error) {
	var loc domain.Location
	if err := db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// LocationFilter narrows ListLocationsPage. Zero values mean "no filter".
type LocationFilter struct {
	Country  string
	Featured *bool
	Query    string // substring match on name
}

func applyLocationFilter(q *gorm.DB, f LocationFilter) *gorm.DB {
	q = q.Where("is_active = ?", true)
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Query != "" {
		q = q.Where("name LIKE ?", "%"+f.Query+"%")
	}
	return q
}

// CountLocations returns the number of active locations matching the filter.
func CountLocations(ctx context.Context, db *gorm.DB, f LocationFilter) (int64, error) {
	var total int64
	err := applyLocationFilter(db.WithContext(ctx).Model(&domain.Location{}), f).Count(&total).Error
	return total, err
}

// ListLocationsPage returns a page of active locations matching the filter,
// ordered by name for stable pagination.
func ListLocationsPage(ctx context.Context, db *gorm.DB, f LocationFilter, offset, limit int) ([]domain.Location, error) {
	var out []domain.Location
	err := applyLocationFilter(db.WithContext(ctx), f).
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// TrendingLocations returns the active locations with the most active cafes.
func TrendingLocations(ctx context.Context, db *gorm.DB, limit int) ([]domain.Location, error) {
	var out []domain.Location
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("cafe_count DESC, name ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateLocation persists changed fields of a location row.
func UpdateLocation(ctx context.Context, db *gorm.DB, loc *domain.Location) error {
	return db.WithContext(ctx).Save(loc).Error
}

// DeleteLocation removes a location row. The RESTRICT constraint on cafes
// makes this fail while any cafe still references the location.
func DeleteLocation(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.Location{}, "id = ?", id).Error
}

// AdjustCafeCount applies a relative delta to a location's denormalized
// active-cafe count: cafe_count = cafe_count + delta, as a single UPDATE.
// Relative updates keep the counter correct under concurrent cafe writes
// against the same location; a read-modify-write here would lose updates.
//
// A zero delta or empty locationID is a no-op, and a missing location row
// matches zero rows without error (race with deletion).
func AdjustCafeCount(ctx context.Context, db *gorm.DB, locationID string, delta int) error {
	if locationID == "" || delta == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("id = ?", locationID).
		UpdateColumn("cafe_count", gorm.Expr("cafe_count + ?", delta)).Error
}
