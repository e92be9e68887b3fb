// Package services defines the business logic for authentication, locations,
// cafes, reviews, and favorites. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Auth-related errors.
var (
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password does not meet the minimum
	// length requirement.
	ErrWeakPassword = errors.New("password too short")

	// ErrTokenInvalid is returned for unknown, malformed, or already-consumed
	// one-time tokens and refresh tokens.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired is returned for one-time tokens past their validity
	// window.
	ErrTokenExpired = errors.New("token expired")

	// ErrUserNotFound indicates that the requested user does not exist or is
	// deactivated.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyVerified is returned when a verified account requests another
	// verification token.
	ErrAlreadyVerified = errors.New("email already verified")
)

// Location-related errors.
var (
	// ErrLocationNotFound indicates that the requested location does not
	// exist or is not active.
	ErrLocationNotFound = errors.New("location not found")

	// ErrLocationHasCafes is returned when deleting a location that still has
	// cafes referencing it.
	ErrLocationHasCafes = errors.New("location still has cafes")
)

// Cafe-related errors.
var (
	// ErrCafeNotFound indicates that the requested cafe does not exist or is
	// not active.
	ErrCafeNotFound = errors.New("cafe not found")

	// ErrInvalidCategory is returned for a category outside the known set.
	ErrInvalidCategory = errors.New("unknown cafe category")

	// ErrInvalidPriceLevel is returned for a price level outside 1..4.
	ErrInvalidPriceLevel = errors.New("price level must be between 1 and 4")

	// ErrInvalidFeature is returned when a cafe lists a feature outside the
	// allowed vocabulary.
	ErrInvalidFeature = errors.New("unknown feature")
)

// Review-related errors.
var (
	// ErrReviewNotFound indicates that the requested review does not exist,
	// is soft-deleted, or belongs to a different cafe.
	ErrReviewNotFound = errors.New("review not found")

	// ErrDuplicateReview is returned when a user attempts a second review of
	// the same cafe. A soft-deleted earlier review still counts.
	ErrDuplicateReview = errors.New("review already exists for this cafe")

	// ErrInvalidRating is returned when a rating value is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrForbidden is returned when a user attempts to modify a resource
	// they do not own and lack the role to moderate.
	ErrForbidden = errors.New("not allowed")
)

// Favorite-related errors.
var (
	// ErrDuplicateFavorite is returned when saving a cafe that is already in
	// the user's favorites.
	ErrDuplicateFavorite = errors.New("cafe already in favorites")

	// ErrFavoriteNotFound is returned when removing a favorite that does not
	// exist.
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// isFKViolation detects foreign-key restriction errors on delete.
func isFKViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}
