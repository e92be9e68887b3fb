// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Favorite
// model. A (user_id, cafe_id) pair is unique; duplicates surface as raw DB
// errors for the service layer to translate.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// CreateFavorite inserts a favorite row for the given user and cafe.
func CreateFavorite(ctx context.Context, db *gorm.DB, userID, cafeID string) (*domain.Favorite, error) {
	fav := &domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		CafeID:    cafeID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(fav).Error; err != nil {
		return nil, err
	}
	return fav, nil
}

// DeleteFavorite removes the favorite for (userID, cafeID) and reports
// whether a row was deleted.
func DeleteFavorite(ctx context.Context, db *gorm.DB, userID, cafeID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND cafe_id = ?", userID, cafeID).
		Delete(&domain.Favorite{})
	return res.RowsAffected > 0, res.Error
}

// CountFavorites returns the number of favorites a user has.
func CountFavorites(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListFavoritesPage returns a page of the user's favorites with the cafe
// preloaded, newest first.
func ListFavoritesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Favorite, error) {
	var out []domain.Favorite
	err := db.WithContext(ctx).
		Preload("Cafe").
		Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// IsFavorite reports whether the user has favorited the cafe.
func IsFavorite(ctx context.Context, db *gorm.DB, userID, cafeID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND cafe_id = ?", userID, cafeID).
		Count(&total).Error
	return total > 0, err
}
