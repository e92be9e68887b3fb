// Package services – AuthService
//
// This file implements the AuthService, which owns the account lifecycle:
// registration, credential login, token refresh with rotation, email
// verification, password change and reset, and profile updates. Passwords
// are stored as bcrypt hashes; one-time tokens (email verification, password
// reset) are stored as SHA256 digests and the plain form is handed back to
// the caller exactly once for delivery. Every auth-relevant event is appended
// to the audit log, and a failed audit write never fails the flow itself.
//
// Login deliberately returns the same ErrInvalidCredentials for an unknown
// email and a wrong password, so the API does not leak which emails have
// accounts. Password reset requests behave the same way: an unknown email
// reports success with no token issued.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/auth"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/repo"
)

// MinPasswordLen is the minimum accepted password length in bytes.
const MinPasswordLen = 8

// AuthService implements the account and session use-cases.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Tokens signs and verifies the JWT access/refresh pairs.
	Tokens *auth.Manager

	// EmailVerifTTL bounds how long an email verification link stays valid.
	EmailVerifTTL time.Duration
	// PasswordResetTTL bounds how long a password reset link stays valid.
	PasswordResetTTL time.Duration

	// BcryptCost overrides bcrypt.DefaultCost when positive; tests lower it.
	BcryptCost int

	// Now returns the current time; defaults to time.Now. Tests inject a
	// fixed clock to exercise token expiry.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

// ClientMeta carries the request attribution recorded in the audit log.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// audit appends an auth event; failures are logged and swallowed so auditing
// never blocks an auth flow.
func (s *AuthService) audit(ctx context.Context, eventType string, userID *string, email string, meta ClientMeta, success bool, reason string) {
	ev := &domain.AuthAudit{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   success,
		Reason:    reason,
	}
	if err := repo.RecordAuthEvent(ctx, s.DB, ev); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("auth audit write failed")
	}
}

// TokenPair is a signed access/refresh token pair.
type TokenPair struct {
	Access  string
	Refresh string
}

// RegisterResult is what Register hands back: the stored user plus the plain
// email verification token for delivery. The token is not retrievable later.
type RegisterResult struct {
	User        *domain.User
	VerifyToken string
}

// Register creates an account for the given email. Emails are normalized to
// lower case and must be unused; passwords must meet MinPasswordLen.
func (s *AuthService) Register(ctx context.Context, email, password, name string, meta ClientMeta) (*RegisterResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("email is required")
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return nil, err
	}

	verifyToken := auth.NewOneTimeToken()
	sentAt := s.now()
	u := &domain.User{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     string(hash),
		Name:             strings.TrimSpace(name),
		Role:             domain.RoleUser,
		IsActive:         true,
		EmailVerifToken:  auth.HashToken(verifyToken),
		EmailVerifSentAt: &sentAt,
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.audit(ctx, domain.AuditRegister, &u.ID, email, meta, true, "")
	return &RegisterResult{User: u, VerifyToken: verifyToken}, nil
}

// Login verifies the credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string, meta ClientMeta) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit(ctx, domain.AuditLoginFailure, nil, email, meta, false, "unknown email")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.audit(ctx, domain.AuditLoginFailure, &u.ID, email, meta, false, "wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	access, refresh, err := s.Tokens.IssuePair(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, domain.AuditLoginSuccess, &u.ID, email, meta, true, "")
	return u, &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and rotates the pair. The user is
// re-loaded so a deactivated account cannot keep refreshing, and role changes
// take effect on the next rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*domain.User, *TokenPair, error) {
	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}

	u, err := repo.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTokenInvalid
		}
		return nil, nil, err
	}

	access, refresh, err := s.Tokens.IssuePair(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, domain.AuditTokenRefresh, &u.ID, u.Email, meta, true, "")
	return u, &TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyEmail consumes an email verification token and marks the account
// verified. Tokens are one-shot: the stored digest is cleared on success.
func (s *AuthService) VerifyEmail(ctx context.Context, token string, meta ClientMeta) (*domain.User, error) {
	u, err := repo.GetUserByVerifToken(ctx, s.DB, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if auth.TokenExpired(u.EmailVerifSentAt, s.EmailVerifTTL, s.now()) {
		return nil, ErrTokenExpired
	}

	u.IsEmailVerified = true
	u.EmailVerifToken = ""
	u.EmailVerifSentAt = nil
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditEmailVerify, &u.ID, u.Email, meta, true, "")
	return u, nil
}

// ResendVerification issues a fresh email verification token for the logged-in
// user, replacing any outstanding one.
func (s *AuthService) ResendVerification(ctx context.Context, userID string, meta ClientMeta) (string, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if u.IsEmailVerified {
		return "", ErrAlreadyVerified
	}

	token := auth.NewOneTimeToken()
	sentAt := s.now()
	u.EmailVerifToken = auth.HashToken(token)
	u.EmailVerifSentAt = &sentAt
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return "", err
	}

	s.audit(ctx, domain.AuditEmailVerifyResend, &u.ID, u.Email, meta, true, "")
	return token, nil
}

// RequestPasswordReset issues a reset token for the account behind email.
// The returned string is empty when no active account exists; callers report
// success either way so the endpoint cannot be used to enumerate emails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string, meta ClientMeta) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	token := auth.NewOneTimeToken()
	sentAt := s.now()
	u.PasswordResetToken = auth.HashToken(token)
	u.PasswordResetSentAt = &sentAt
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return "", err
	}

	s.audit(ctx, domain.AuditPasswordResetRequest, &u.ID, email, meta, true, "")
	return token, nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string, meta ClientMeta) error {
	if len(newPassword) < MinPasswordLen {
		return ErrWeakPassword
	}

	u, err := repo.GetUserByResetToken(ctx, s.DB, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if auth.TokenExpired(u.PasswordResetSentAt, s.PasswordResetTTL, s.now()) {
		return ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost())
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.PasswordResetToken = ""
	u.PasswordResetSentAt = nil
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditPasswordResetConfirm, &u.ID, u.Email, meta, true, "")
	return nil
}

// ChangePassword replaces the password of a logged-in user after verifying
// the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string, meta ClientMeta) error {
	if len(newPassword) < MinPasswordLen {
		return ErrWeakPassword
	}

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		s.audit(ctx, domain.AuditPasswordChange, &u.ID, u.Email, meta, false, "wrong current password")
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost())
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditPasswordChange, &u.ID, u.Email, meta, true, "")
	return nil
}

// Profile returns the active user behind userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ProfileInput carries the writable profile fields.
type ProfileInput struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

// UpdateProfile applies the provided profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return nil, err
	}
	return u, nil
}
