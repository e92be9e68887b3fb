// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Cafe model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// CreateCafe inserts a cafe row. Slug uniqueness is enforced by the database.
func CreateCafe(ctx context.Context, db *gorm.DB, cafe *domain.Cafe) error {
	if cafe.ID == "" {
		cafe.ID = uuid.NewString()
	}
	cafe.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(cafe).Error
}

// GetCafe fetches a cafe by ID regardless of active state (moderation paths
// need to see inactive rows).
func GetCafe(ctx context.Context, db *gorm.DB, id string) (*domain.Cafe, error) {
	var cafe domain.Cafe
	if err := db.WithContext(ctx).Where("id = ?", id).First(&cafe).Error; err != nil {
		return nil, err
	}
	return &cafe, nil
}

// GetCafeBySlug fetches an active cafe by its slug. This is the public
// read path: inactive cafes are invisible.
func GetCafeBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Cafe, error) {
	var cafe domain.Cafe
	if err := db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&cafe).Error; err != nil {
		return nil, err
	}
	return &cafe, nil
}

// CafeFilter narrows ListCafesPage. Zero values mean "no filter".
type CafeFilter struct {
	LocationID string
	City       string
	Category   string
	PriceLevel int
	Features   []string // every listed feature must be present
	MinRating  float64
	Query      string // substring match on name
	Ordering   string // "rating" (default), "count", "newest"
}

func applyCafeFilter(q *gorm.DB, f CafeFilter) *gorm.DB {
	q = q.Where("is_active = ?", true)
	if f.LocationID != "" {
		q = q.Where("location_id = ?", f.LocationID)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.PriceLevel > 0 {
		q = q.Where("price_level = ?", f.PriceLevel)
	}
	if f.MinRating > 0 {
		q = q.Where("rating_avg >= ?", f.MinRating)
	}
	// Features live in a JSON array column; a LIKE per feature keeps this
	// portable across sqlite and postgres without a JSON1 dependency.
	for _, feat := range f.Features {
		q = q.Where("features LIKE ?", `%"`+feat+`"%`)
	}
	if f.Query != "" {
		q = q.Where("name LIKE ?", "%"+f.Query+"%")
	}
	return q
}

func cafeOrdering(ordering string) string {
	switch ordering {
	case "count":
		return "rating_count DESC, rating_avg DESC, id ASC"
	case "newest":
		return "created_at DESC, id ASC"
	default:
		return "rating_avg DESC, created_at DESC, id ASC"
	}
}

// CountCafes returns the number of active cafes matching the filter.
func CountCafes(ctx context.Context, db *gorm.DB, f CafeFilter) (int64, error) {
	var total int64
	err := applyCafeFilter(db.WithContext(ctx).Model(&domain.Cafe{}), f).Count(&total).Error
	return total, err
}

// ListCafesPage returns a page of active cafes matching the filter.
func ListCafesPage(ctx context.Context, db *gorm.DB, f CafeFilter, offset, limit int) ([]domain.Cafe, error) {
	var out []domain.Cafe
	err := applyCafeFilter(db.WithContext(ctx), f).
		Order(cafeOrdering(f.Ordering)).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PopularCafes returns the top active cafes by rating, requiring at least
// one review so unrated listings never outrank rated ones.
func PopularCafes(ctx context.Context, db *gorm.DB, limit int) ([]domain.Cafe, error) {
	var out []domain.Cafe
	err := db.WithContext(ctx).
		Where("is_active = ? AND rating_count > 0", true).
		Order("rating_avg DESC, rating_count DESC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateCafe persists changed fields of a cafe row.
func UpdateCafe(ctx context.Context, db *gorm.DB, cafe *domain.Cafe) error {
	return db.WithContext(ctx).Save(cafe).Error
}

// DeleteCafe removes a cafe row; reviews and favorites cascade at the
// database level.
func DeleteCafe(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.Cafe{}, "id = ?", id).Error
}
