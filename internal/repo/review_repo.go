// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review model.
//
// Error semantics:
//   - A duplicate review (same cafe_id, user_id) relies on the database
//     unique index and is returned as a raw DB error. The service layer
//     translates it into ErrDuplicateReview.
//   - On other DB errors (connectivity, constraints, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// CreateReview inserts a review row. The (cafe_id, user_id) pair must be
// unique, enforced by the database schema.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.IsActive = true
	r.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(r).Error
}

// GetReview fetches an active review by ID within a cafe.
func GetReview(ctx context.Context, db *gorm.DB, cafeID, id string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Where("id = ? AND cafe_id = ? AND is_active = ?", id, cafeID, true).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetUserReview fetches the review a user left on a cafe, active or not.
// The soft-deleted row still blocks a second review for the same pair.
func GetUserReview(ctx context.Context, db *gorm.DB, cafeID, userID string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Where("cafe_id = ? AND user_id = ?", cafeID, userID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountCafeReviews returns the number of active reviews for a cafe.
func CountCafeReviews(ctx context.Context, db *gorm.DB, cafeID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Review{}).
		Where("cafe_id = ? AND is_active = ?", cafeID, true).
		Count(&total).Error
	return total, err
}

// ListCafeReviewsPage returns a page of active reviews for a cafe, newest
// first.
func ListCafeReviewsPage(ctx context.Context, db *gorm.DB, cafeID string, offset, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("cafe_id = ? AND is_active = ?", cafeID, true).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountUserReviews returns the number of active reviews written by a user.
func CountUserReviews(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Review{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&total).Error
	return total, err
}

// ListUserReviewsPage returns a page of the user's active reviews with the
// cafe preloaded, newest first.
func ListUserReviewsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Preload("Cafe").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateReview persists changed fields of a review row.
func UpdateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	return db.WithContext(ctx).Save(r).Error
}

// SetReviewActive flips the soft-delete flag of a single review. The caller
// recomputes the cafe's rating summary in the same transaction.
func SetReviewActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	return db.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
}

// SetReviewsActive flips the soft-delete flag for a batch of reviews and
// returns the distinct cafe IDs touched, so the caller can recompute each
// affected cafe's summary in the same transaction. Used by admin bulk
// moderation.
func SetReviewsActive(ctx context.Context, db *gorm.DB, ids []string, active bool) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cafeIDs []string
	err := db.WithContext(ctx).Model(&domain.Review{}).
		Distinct("cafe_id").
		Where("id IN ?", ids).
		Pluck("cafe_id", &cafeIDs).Error
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Model(&domain.Review{}).
		Where("id IN ?", ids).
		UpdateColumn("is_active", active).Error
	if err != nil {
		return nil, err
	}
	return cafeIDs, nil
}
