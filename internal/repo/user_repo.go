// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model
// and the auth audit log.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// CreateUser inserts a user row. Email uniqueness is enforced by the
// database; a duplicate surfaces as a raw DB error.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.IsActive = true
	u.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(u).Error
}

// GetUser fetches an active user by ID.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches an active user by email (callers lowercase first).
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByVerifToken fetches the unverified active user holding the given
// email verification token hash.
func GetUserByVerifToken(ctx context.Context, db *gorm.DB, tokenHash string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email_verif_token = ? AND is_email_verified = ? AND is_active = ?", tokenHash, false, true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByResetToken fetches the active user holding the given password
// reset token hash.
func GetUserByResetToken(ctx context.Context, db *gorm.DB, tokenHash string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("password_reset_token = ? AND is_active = ?", tokenHash, true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser persists changed fields of a user row.
func UpdateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// RecordAuthEvent appends an auth audit row. Audit failures are reported to
// the caller, which logs and moves on; auditing never blocks an auth flow.
func RecordAuthEvent(ctx context.Context, db *gorm.DB, ev *domain.AuthAudit) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(ev).Error
}
