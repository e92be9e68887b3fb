// Package services – ReviewService
//
// This file implements the ReviewService, which governs how users review
// cafes. It enforces the business rules (one review per user per cafe, owner-
// only edits, owner-or-admin soft deletion, admin bulk moderation) and keeps
// the cafe's denormalized rating summary correct: every write that changes
// the set of active reviews recomputes the cafe's five rating fields and
// review count from scratch inside the same transaction, so readers always
// observe a summary consistent with the reviews.
//
// Service-level errors (e.g. ErrDuplicateReview, ErrReviewNotFound,
// ErrForbidden) are returned for predictable cases so handlers can map them
// to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
)

// ReviewService implements the use-cases around cafe reviews.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ReviewInput carries the writable fields of a review. The overall rating is
// required on create; the four dimension ratings are independently optional
// and nil means "not rated" rather than zero.
type ReviewInput struct {
	RatingOverall int
	RatingWifi    *int
	RatingPower   *int
	RatingNoise   *int
	RatingCoffee  *int

	Text     string
	Language string
	Photos   []string
}

func validRating(v int) bool { return v >= 1 && v <= 5 }

func (in *ReviewInput) validate(requireOverall bool) error {
	if requireOverall || in.RatingOverall != 0 {
		if !validRating(in.RatingOverall) {
			return ErrInvalidRating
		}
	}
	for _, dim := range []*int{in.RatingWifi, in.RatingPower, in.RatingNoise, in.RatingCoffee} {
		if dim != nil && !validRating(*dim) {
			return ErrInvalidRating
		}
	}
	return nil
}

// Create records userID's review of cafeID.
//
// Semantics and validation:
//   - The cafe must exist and be active; otherwise ErrCafeNotFound.
//   - RatingOverall must be 1..5; set dimension ratings likewise.
//   - A user reviews a cafe at most once. A soft-deleted earlier review
//     still occupies the slot, so the attempt yields ErrDuplicateReview.
//
// The insert and the rating recomputation run in one transaction.
func (s *ReviewService) Create(ctx context.Context, userID, cafeID string, in ReviewInput) (*domain.Review, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, errors.New("text is required")
	}

	rev := &domain.Review{
		ID:            uuid.NewString(),
		CafeID:        cafeID,
		UserID:        userID,
		RatingOverall: in.RatingOverall,
		RatingWifi:    in.RatingWifi,
		RatingPower:   in.RatingPower,
		RatingNoise:   in.RatingNoise,
		RatingCoffee:  in.RatingCoffee,
		Text:          text,
		Language:      in.Language,
		Photos:        jsonOrEmpty(sliceOrNil(in.Photos)),
	}
	if rev.Language == "" {
		rev.Language = "en"
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cafe, err := repo.GetCafe(ctx, tx, cafeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCafeNotFound
			}
			return err
		}
		if !cafe.IsActive {
			return ErrCafeNotFound
		}

		if _, err := repo.GetUserReview(ctx, tx, cafeID, userID); err == nil {
			return ErrDuplicateReview
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := repo.CreateReview(ctx, tx, rev); err != nil {
			if isDuplicate(err) {
				return ErrDuplicateReview
			}
			return err
		}
		return repo.RecomputeCafeRatings(ctx, tx, cafeID)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Update applies changed fields to userID's review. Only the author may edit;
// admins moderate via SetActive instead of editing other people's words.
func (s *ReviewService) Update(ctx context.Context, userID, cafeID, reviewID string, in ReviewInput) (*domain.Review, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}

	var rev *domain.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rev, err = repo.GetReview(ctx, tx, cafeID, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if rev.UserID != userID {
			return ErrForbidden
		}

		if in.RatingOverall != 0 {
			rev.RatingOverall = in.RatingOverall
		}
		if in.RatingWifi != nil {
			rev.RatingWifi = in.RatingWifi
		}
		if in.RatingPower != nil {
			rev.RatingPower = in.RatingPower
		}
		if in.RatingNoise != nil {
			rev.RatingNoise = in.RatingNoise
		}
		if in.RatingCoffee != nil {
			rev.RatingCoffee = in.RatingCoffee
		}
		if text := strings.TrimSpace(in.Text); text != "" {
			rev.Text = text
		}
		if in.Language != "" {
			rev.Language = in.Language
		}
		if in.Photos != nil {
			rev.Photos = jsonOrEmpty(in.Photos)
		}

		if err := repo.UpdateReview(ctx, tx, rev); err != nil {
			return err
		}
		return repo.RecomputeCafeRatings(ctx, tx, cafeID)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Delete soft-deletes a review. The author may always delete their own
// review; admins may delete anyone's. The row is kept with IsActive=false so
// the one-review-per-cafe rule still holds afterwards.
func (s *ReviewService) Delete(ctx context.Context, actor *domain.User, cafeID, reviewID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rev, err := repo.GetReview(ctx, tx, cafeID, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if rev.UserID != actor.ID && !actor.IsAdmin() {
			return ErrForbidden
		}

		if err := repo.SetReviewActive(ctx, tx, rev.ID, false); err != nil {
			return err
		}
		return repo.RecomputeCafeRatings(ctx, tx, cafeID)
	})
}

// SetActive is the admin bulk moderation operation: it flips the soft-delete
// flag on a batch of reviews and recomputes every affected cafe's rating
// summary, all in one transaction.
func (s *ReviewService) SetActive(ctx context.Context, ids []string, active bool) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cafeIDs, err := repo.SetReviewsActive(ctx, tx, ids, active)
		if err != nil {
			return err
		}
		for _, cafeID := range cafeIDs {
			if err := repo.RecomputeCafeRatings(ctx, tx, cafeID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListForCafe returns a page of a cafe's active reviews, newest first, plus
// the total count. The cafe must exist and be active.
func (s *ReviewService) ListForCafe(ctx context.Context, cafeID string, page, perPage int) ([]domain.Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	cafe, err := repo.GetCafe(ctx, s.DB, cafeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCafeNotFound
		}
		return nil, 0, err
	}
	if !cafe.IsActive {
		return nil, 0, ErrCafeNotFound
	}

	total, err := repo.CountCafeReviews(ctx, s.DB, cafeID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Review{}, 0, nil
	}
	items, err := repo.ListCafeReviewsPage(ctx, s.DB, cafeID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListForUser returns a page of the user's own active reviews with each
// review's cafe preloaded.
func (s *ReviewService) ListForUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := repo.CountUserReviews(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Review{}, 0, nil
	}
	items, err := repo.ListUserReviewsPage(ctx, s.DB, userID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func sliceOrNil(s []string) any {
	if s == nil {
		return nil
	}
	return s
}
