// Package services – CafeService
//
// This file implements the CafeService, which manages cafe listings and keeps
// the per-location cafe counter correct. Every write that changes a cafe's
// location or active state adjusts locations.cafe_count with a relative
// update inside the same transaction, using the (location, active) pair read
// under that transaction as the baseline. The counter is never recomputed
// from a scan and never read-modify-written.
//
// Service-level errors (e.g. ErrCafeNotFound, ErrLocationNotFound) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/utils"
)

// CafeService provides cafe-level operations: creation and updates (admin or
// owner at the HTTP layer), public listing with filters, and deletion with
// database-level cascade to reviews and favorites.
type CafeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// CafeInput carries the writable fields of a cafe. Pointer fields distinguish
// "not provided" from a zero value on update; slice and map fields replace
// the stored value wholesale when non-nil.
type CafeInput struct {
	Name        string
	Description string
	Overview    string

	LocationID string
	Address    string
	AddressTwo string
	PostalCode string
	City       string

	Latitude  *float64
	Longitude *float64

	Phone   string
	Email   string
	Website string

	ImageURL     string
	ThumbnailURL string
	LogoURL      string
	Gallery      []string

	Category   string
	PriceLevel int

	Features     []string
	Amenities    map[string]bool
	OpeningHours map[string]string
	Timezone     string

	IsFeatured *bool
	IsVerified *bool
	IsActive   *bool

	OwnerID   *string
	OwnerRole string
}

func (in *CafeInput) validate() error {
	if in.Category != "" {
		if _, ok := domain.CategoryColors[in.Category]; !ok {
			return ErrInvalidCategory
		}
	}
	if in.PriceLevel != 0 && (in.PriceLevel < domain.PriceBudget || in.PriceLevel > domain.PricePremium) {
		return ErrInvalidPriceLevel
	}
	if in.Features != nil {
		if err := domain.ValidateFeatures(in.Features); err != nil {
			return ErrInvalidFeature
		}
	}
	return nil
}

// jsonOrEmpty marshals v to its JSON text, or returns "" for nil input so the
// column stays empty rather than holding the string "null".
func jsonOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Create inserts a new cafe and, when it is active, counts it against its
// location in the same transaction.
func (s *CafeService) Create(ctx context.Context, in CafeInput) (*domain.Cafe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	cafe := &domain.Cafe{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  in.Description,
		Overview:     in.Overview,
		LocationID:   in.LocationID,
		Address:      in.Address,
		AddressTwo:   in.AddressTwo,
		PostalCode:   in.PostalCode,
		City:         strings.TrimSpace(in.City),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Phone:        in.Phone,
		Email:        in.Email,
		Website:      in.Website,
		ImageURL:     in.ImageURL,
		ThumbnailURL: in.ThumbnailURL,
		LogoURL:      in.LogoURL,
		Category:     in.Category,
		PriceLevel:   in.PriceLevel,
		Timezone:     in.Timezone,
		IsActive:     true,
		OwnerID:      in.OwnerID,
		OwnerRole:    in.OwnerRole,
	}
	cafe.Slug = utils.Slugify(name)
	if cafe.Category == "" {
		cafe.Category = domain.CategoryCafe
	}
	if cafe.PriceLevel == 0 {
		cafe.PriceLevel = domain.PriceModerate
	}
	cafe.CategoryColor = domain.CategoryColor(cafe.Category)
	if in.Gallery != nil {
		cafe.Gallery = jsonOrEmpty(in.Gallery)
	}
	if in.Features != nil {
		cafe.Features = jsonOrEmpty(in.Features)
	}
	if in.Amenities != nil {
		cafe.Amenities = jsonOrEmpty(in.Amenities)
	}
	if in.OpeningHours != nil {
		cafe.OpeningHours = jsonOrEmpty(in.OpeningHours)
	}
	if in.IsFeatured != nil {
		cafe.IsFeatured = *in.IsFeatured
	}
	if in.IsVerified != nil {
		cafe.IsVerified = *in.IsVerified
	}
	if in.IsActive != nil {
		cafe.IsActive = *in.IsActive
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetLocation(ctx, tx, cafe.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		err := repo.CreateCafe(ctx, tx, cafe)
		if err != nil && isDuplicate(err) {
			cafe.Slug = utils.SlugWithSuffix(name, cafe.ID)
			err = repo.CreateCafe(ctx, tx, cafe)
		}
		if err != nil {
			return err
		}

		if cafe.IsActive {
			return repo.AdjustCafeCount(ctx, tx, cafe.LocationID, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cafe, nil
}

// Get returns an active cafe by slug, falling back to an ID lookup so nested
// routes can address a cafe either way.
func (s *CafeService) Get(ctx context.Context, slugOrID string) (*domain.Cafe, error) {
	cafe, err := repo.GetCafeBySlug(ctx, s.DB, slugOrID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cafe, err = repo.GetCafe(ctx, s.DB, slugOrID)
		if err == nil && !cafe.IsActive {
			return nil, ErrCafeNotFound
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}
	return cafe, nil
}

// GetByID returns a cafe regardless of active state, for admin edits.
func (s *CafeService) GetByID(ctx context.Context, id string) (*domain.Cafe, error) {
	cafe, err := repo.GetCafe(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}
	return cafe, nil
}

// List returns a page of active cafes matching the filter plus the total
// match count.
func (s *CafeService) List(ctx context.Context, f repo.CafeFilter, page, perPage int) ([]domain.Cafe, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := repo.CountCafes(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Cafe{}, 0, nil
	}
	items, err := repo.ListCafesPage(ctx, s.DB, f, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Popular returns the highest-rated active cafes that have at least one
// review.
func (s *CafeService) Popular(ctx context.Context, limit int) ([]domain.Cafe, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return repo.PopularCafes(ctx, s.DB, limit)
}

// Update applies the provided fields to an existing cafe and reconciles the
// location counters:
//
//	active, same location     -> no counter change
//	active, moved             -> -1 old location, +1 new location
//	active -> inactive        -> -1 the location it was counted under
//	inactive -> active        -> +1 the (possibly new) location
//	inactive, any move        -> no counter change
//
// The previous (location, active) pair is read inside the transaction, so
// concurrent updates to the same cafe serialize correctly.
func (s *CafeService) Update(ctx context.Context, id string, in CafeInput) (*domain.Cafe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var cafe *domain.Cafe
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cafe, err = repo.GetCafe(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCafeNotFound
			}
			return err
		}

		prevLocation := cafe.LocationID
		prevActive := cafe.IsActive

		if name := strings.TrimSpace(in.Name); name != "" {
			cafe.Name = name
		}
		if in.Description != "" {
			cafe.Description = in.Description
		}
		if in.Overview != "" {
			cafe.Overview = in.Overview
		}
		if in.LocationID != "" && in.LocationID != cafe.LocationID {
			if _, err := repo.GetLocation(ctx, tx, in.LocationID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrLocationNotFound
				}
				return err
			}
			cafe.LocationID = in.LocationID
		}
		if in.Address != "" {
			cafe.Address = in.Address
		}
		if in.AddressTwo != "" {
			cafe.AddressTwo = in.AddressTwo
		}
		if in.PostalCode != "" {
			cafe.PostalCode = in.PostalCode
		}
		if in.City != "" {
			cafe.City = strings.TrimSpace(in.City)
		}
		if in.Latitude != nil {
			cafe.Latitude = in.Latitude
		}
		if in.Longitude != nil {
			cafe.Longitude = in.Longitude
		}
		if in.Phone != "" {
			cafe.Phone = in.Phone
		}
		if in.Email != "" {
			cafe.Email = in.Email
		}
		if in.Website != "" {
			cafe.Website = in.Website
		}
		if in.ImageURL != "" {
			cafe.ImageURL = in.ImageURL
		}
		if in.ThumbnailURL != "" {
			cafe.ThumbnailURL = in.ThumbnailURL
		}
		if in.LogoURL != "" {
			cafe.LogoURL = in.LogoURL
		}
		if in.Gallery != nil {
			cafe.Gallery = jsonOrEmpty(in.Gallery)
		}
		if in.Category != "" {
			cafe.Category = in.Category
			cafe.CategoryColor = domain.CategoryColor(in.Category)
		}
		if in.PriceLevel != 0 {
			cafe.PriceLevel = in.PriceLevel
		}
		if in.Features != nil {
			cafe.Features = jsonOrEmpty(in.Features)
		}
		if in.Amenities != nil {
			cafe.Amenities = jsonOrEmpty(in.Amenities)
		}
		if in.OpeningHours != nil {
			cafe.OpeningHours = jsonOrEmpty(in.OpeningHours)
		}
		if in.Timezone != "" {
			cafe.Timezone = in.Timezone
		}
		if in.IsFeatured != nil {
			cafe.IsFeatured = *in.IsFeatured
		}
		if in.IsVerified != nil {
			cafe.IsVerified = *in.IsVerified
		}
		if in.IsActive != nil {
			cafe.IsActive = *in.IsActive
		}
		if in.OwnerID != nil {
			cafe.OwnerID = in.OwnerID
		}
		if in.OwnerRole != "" {
			cafe.OwnerRole = in.OwnerRole
		}

		if err := repo.UpdateCafe(ctx, tx, cafe); err != nil {
			return err
		}

		switch {
		case prevActive && cafe.IsActive && prevLocation != cafe.LocationID:
			if err := repo.AdjustCafeCount(ctx, tx, prevLocation, -1); err != nil {
				return err
			}
			return repo.AdjustCafeCount(ctx, tx, cafe.LocationID, 1)
		case prevActive && !cafe.IsActive:
			return repo.AdjustCafeCount(ctx, tx, prevLocation, -1)
		case !prevActive && cafe.IsActive:
			return repo.AdjustCafeCount(ctx, tx, cafe.LocationID, 1)
		default:
			// Still inactive, or active with nothing counter-relevant
			// changed.
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return cafe, nil
}

// Delete removes a cafe permanently. Reviews and favorites cascade at the
// database level; an active cafe is uncounted from its location first.
func (s *CafeService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cafe, err := repo.GetCafe(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCafeNotFound
			}
			return err
		}

		if err := repo.DeleteCafe(ctx, tx, cafe.ID); err != nil {
			return err
		}
		if cafe.IsActive {
			return repo.AdjustCafeCount(ctx, tx, cafe.LocationID, -1)
		}
		return nil
	})
}
