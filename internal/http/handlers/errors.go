// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes provide
// clients with a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly
//     noted.
//   - Generic codes (e.g., bad_request, unauthorized, conflict) mirror common
//     HTTP status semantics to aid interoperability.
//   - Domain-specific codes (e.g., email_taken, duplicate_review) are reserved
//     for business rules that cannot be conveyed by status alone.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeEmailTaken        = "email_taken"
	ErrCodeInvalidCreds      = "invalid_credentials"
	ErrCodeWeakPassword      = "weak_password"
	ErrCodeTokenInvalid      = "token_invalid"
	ErrCodeTokenExpired      = "token_expired"
	ErrCodeAlreadyVerified   = "already_verified"
	ErrCodeDuplicateReview   = "duplicate_review"
	ErrCodeDuplicateFavorite = "duplicate_favorite"
	ErrCodeLocationInUse     = "location_in_use"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
