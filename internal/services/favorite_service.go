// Package services – FavoriteService
//
// This file implements the FavoriteService, which manages the cafes a user
// has saved. Favorites carry no aggregation, so the operations are simple
// guarded writes: the cafe must exist and be active to be saved, and each
// user saves a cafe at most once.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
)

// FavoriteService implements the use-cases around saved cafes.
type FavoriteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Save adds cafeID to userID's favorites. Saving an already-saved cafe
// yields ErrDuplicateFavorite; a missing or hidden cafe yields
// ErrCafeNotFound.
func (s *FavoriteService) Save(ctx context.Context, userID, cafeID string) (*domain.Favorite, error) {
	cafe, err := repo.GetCafe(ctx, s.DB, cafeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}
	if !cafe.IsActive {
		return nil, ErrCafeNotFound
	}

	fav, err := repo.CreateFavorite(ctx, s.DB, userID, cafeID)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateFavorite
		}
		return nil, err
	}
	fav.Cafe = *cafe
	return fav, nil
}

// Remove deletes cafeID from userID's favorites. Removing a cafe that is not
// saved yields ErrFavoriteNotFound.
func (s *FavoriteService) Remove(ctx context.Context, userID, cafeID string) error {
	removed, err := repo.DeleteFavorite(ctx, s.DB, userID, cafeID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrFavoriteNotFound
	}
	return nil
}

// List returns a page of the user's favorites, newest first, with each
// favorite's cafe preloaded, plus the total count.
func (s *FavoriteService) List(ctx context.Context, userID string, page, perPage int) ([]domain.Favorite, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := repo.CountFavorites(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Favorite{}, 0, nil
	}
	items, err := repo.ListFavoritesPage(ctx, s.DB, userID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Status reports whether userID has saved cafeID.
func (s *FavoriteService) Status(ctx context.Context, userID, cafeID string) (bool, error) {
	return repo.IsFavorite(ctx, s.DB, userID, cafeID)
}
