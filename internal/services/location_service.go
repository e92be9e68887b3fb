// Package services – LocationService
//
// This file implements the LocationService, which manages the lifecycle of
// locations (cities and regions that cafes belong to). It validates input,
// derives URL slugs, and guards the denormalized cafe counter: a location can
// only be deleted when no cafes reference it, and the counter itself is never
// written here (cafe writes adjust it, see CafeService).
//
// Service-level errors (e.g. ErrLocationNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/utils"
)

// LocationService provides location-level operations: creation and updates
// (admin only at the HTTP layer), public listing and lookup, and the trending
// ranking over the denormalized cafe counter.
type LocationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// LocationInput carries the writable fields of a location. Pointer fields
// distinguish "not provided" from a zero value on update.
type LocationInput struct {
	Name        string
	Country     string
	CountryCode string
	Region      string
	Timezone    string

	ImageURL     string
	ThumbnailURL string
	HeroImageURL string

	Latitude  *float64
	Longitude *float64

	IsFeatured *bool
	IsActive   *bool
}

// Create inserts a new location. The slug is derived from the name; on a
// collision a short ID suffix disambiguates instead of failing the request.
func (s *LocationService) Create(ctx context.Context, in LocationInput) (*domain.Location, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	loc := &domain.Location{
		ID:           uuid.NewString(),
		Name:         name,
		Slug:         utils.Slugify(name),
		Country:      strings.TrimSpace(in.Country),
		CountryCode:  strings.ToUpper(strings.TrimSpace(in.CountryCode)),
		Region:       strings.TrimSpace(in.Region),
		Timezone:     in.Timezone,
		ImageURL:     in.ImageURL,
		ThumbnailURL: in.ThumbnailURL,
		HeroImageURL: in.HeroImageURL,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		IsActive:     true,
	}
	if loc.Timezone == "" {
		loc.Timezone = "UTC"
	}
	if in.IsFeatured != nil {
		loc.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		loc.IsActive = *in.IsActive
	}

	err := repo.CreateLocation(ctx, s.DB, loc)
	if err != nil && isDuplicate(err) {
		loc.Slug = utils.SlugWithSuffix(name, loc.ID)
		err = repo.CreateLocation(ctx, s.DB, loc)
	}
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// Get returns an active location by slug, falling back to an ID lookup so
// routes can address a location either way.
func (s *LocationService) Get(ctx context.Context, slugOrID string) (*domain.Location, error) {
	loc, err := repo.GetLocationBySlug(ctx, s.DB, slugOrID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		loc, err = repo.GetLocation(ctx, s.DB, slugOrID)
		if err == nil && !loc.IsActive {
			return nil, ErrLocationNotFound
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return loc, nil
}

// GetByID returns a location regardless of active state. Admin lookups use
// this so a hidden location can still be edited.
func (s *LocationService) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	loc, err := repo.GetLocation(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return loc, nil
}

// List returns a page of active locations plus the total match count.
func (s *LocationService) List(ctx context.Context, f repo.LocationFilter, page, perPage int) ([]domain.Location, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := repo.CountLocations(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Location{}, 0, nil
	}
	items, err := repo.ListLocationsPage(ctx, s.DB, f, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Trending returns the active locations with the most active cafes.
func (s *LocationService) Trending(ctx context.Context, limit int) ([]domain.Location, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return repo.TrendingLocations(ctx, s.DB, limit)
}

// Update applies the provided fields to an existing location. The slug is
// intentionally stable: renaming a location does not break published URLs.
func (s *LocationService) Update(ctx context.Context, id string, in LocationInput) (*domain.Location, error) {
	loc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		loc.Name = name
	}
	if in.Country != "" {
		loc.Country = strings.TrimSpace(in.Country)
	}
	if in.CountryCode != "" {
		loc.CountryCode = strings.ToUpper(strings.TrimSpace(in.CountryCode))
	}
	if in.Region != "" {
		loc.Region = strings.TrimSpace(in.Region)
	}
	if in.Timezone != "" {
		loc.Timezone = in.Timezone
	}
	if in.ImageURL != "" {
		loc.ImageURL = in.ImageURL
	}
	if in.ThumbnailURL != "" {
		loc.ThumbnailURL = in.ThumbnailURL
	}
	if in.HeroImageURL != "" {
		loc.HeroImageURL = in.HeroImageURL
	}
	if in.Latitude != nil {
		loc.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		loc.Longitude = in.Longitude
	}
	if in.IsFeatured != nil {
		loc.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		loc.IsActive = *in.IsActive
	}

	if err := repo.UpdateLocation(ctx, s.DB, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// Delete removes a location. Locations with cafes (active or not) are
// protected both here and by the database foreign key.
func (s *LocationService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loc, err := repo.GetLocation(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		var cafes int64
		if err := tx.Model(&domain.Cafe{}).Where("location_id = ?", loc.ID).Count(&cafes).Error; err != nil {
			return err
		}
		if cafes > 0 {
			return ErrLocationHasCafes
		}

		if err := repo.DeleteLocation(ctx, tx, loc.ID); err != nil {
			if isFKViolation(err) {
				return ErrLocationHasCafes
			}
			return err
		}
		return nil
	})
}
