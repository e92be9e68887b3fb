package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/auth"
	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

func newAuthSvc(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &AuthService{
		DB:               db,
		Tokens:           auth.NewManager("test-secret", 15*time.Minute, 7*24*time.Hour),
		EmailVerifTTL:    7 * 24 * time.Hour,
		PasswordResetTTL: 24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		Now:              func() time.Time { return now },
	}
	return svc
}

func TestRegister_NormalizesEmailAndIssuesVerifyToken(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "  Ada@Example.COM ", "s3cretpass", "Ada", ClientMeta{IP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "ada@example.com" {
		t.Fatalf("email = %q, want normalized lower case", res.User.Email)
	}
	if res.VerifyToken == "" {
		t.Fatal("expected a plain verification token")
	}
	// Only the digest is stored.
	if res.User.EmailVerifToken == res.VerifyToken {
		t.Fatal("plain token must not be persisted")
	}
	if res.User.EmailVerifToken != auth.HashToken(res.VerifyToken) {
		t.Fatal("stored token is not the digest of the issued one")
	}

	if _, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, "bob@example.com", "short", "", ClientMeta{}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLogin_SuccessAndFailuresIndistinguishable(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "Ada", ClientMeta{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, pair, err := svc.Login(ctx, "ADA@example.com", "s3cretpass", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("expected a full token pair")
	}
	claims, err := svc.Tokens.VerifyAccess(pair.Access)
	if err != nil || claims.UserID != u.ID {
		t.Fatalf("access token does not verify for the user: %v", err)
	}

	_, _, errWrongPass := svc.Login(ctx, "ada@example.com", "wrongpass", ClientMeta{})
	_, _, errNoUser := svc.Login(ctx, "ghost@example.com", "whatever1", ClientMeta{})
	if !errors.Is(errWrongPass, ErrInvalidCredentials) || !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Fatalf("both failures must be ErrInvalidCredentials, got %v / %v", errWrongPass, errNoUser)
	}

	// Both failure modes leave an audit trail.
	var audits int64
	svc.DB.Model(&domain.AuthAudit{}).Where("event_type = ?", domain.AuditLoginFailure).Count(&audits)
	if audits != 2 {
		t.Fatalf("login failure audits = %d, want 2", audits)
	}
}

func TestRefresh_RotatesAndChecksAccount(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, "ada@example.com", "s3cretpass", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, rotated, err := svc.Refresh(ctx, pair.Refresh, ClientMeta{})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.Access == "" || rotated.Refresh == "" {
		t.Fatal("expected a rotated pair")
	}

	// Access tokens are not refresh tokens.
	if _, _, err := svc.Refresh(ctx, pair.Access, ClientMeta{}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}

	// A deactivated account cannot refresh.
	svc.DB.Model(&domain.User{}).Where("id = ?", res.User.ID).Update("is_active", false)
	if _, _, err := svc.Refresh(ctx, rotated.Refresh, ClientMeta{}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for deactivated account, got %v", err)
	}
}

func TestVerifyEmail_ConsumesToken(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := svc.VerifyEmail(ctx, res.VerifyToken, ClientMeta{})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !u.IsEmailVerified || u.EmailVerifToken != "" {
		t.Fatalf("expected verified user with cleared token, got %+v", u)
	}

	// Second use finds nothing.
	if _, err := svc.VerifyEmail(ctx, res.VerifyToken, ClientMeta{}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on reuse, got %v", err)
	}
}

func TestVerifyEmail_Expired(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	base := svc.Now()
	svc.Now = func() time.Time { return base.Add(8 * 24 * time.Hour) }
	if _, err := svc.VerifyEmail(ctx, res.VerifyToken, ClientMeta{}); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestResendVerification_RotatesToken(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.ResendVerification(ctx, res.User.ID, ClientMeta{})
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if token == "" || token == res.VerifyToken {
		t.Fatalf("expected a fresh token, got %q", token)
	}

	// The registration token was replaced.
	if _, err := svc.VerifyEmail(ctx, res.VerifyToken, ClientMeta{}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for replaced token, got %v", err)
	}
	if _, err := svc.VerifyEmail(ctx, token, ClientMeta{}); err != nil {
		t.Fatalf("verify with rotated token: %v", err)
	}

	// Once verified, no more tokens.
	if _, err := svc.ResendVerification(ctx, res.User.ID, ClientMeta{}); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if _, err := svc.ResendVerification(ctx, "missing-id", ClientMeta{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unknown emails succeed silently with no token.
	token, err := svc.RequestPasswordReset(ctx, "ghost@example.com", ClientMeta{})
	if err != nil || token != "" {
		t.Fatalf("unknown email: token=%q err=%v, want empty and nil", token, err)
	}

	token, err = svc.RequestPasswordReset(ctx, "ada@example.com", ClientMeta{})
	if err != nil || token == "" {
		t.Fatalf("request: token=%q err=%v", token, err)
	}

	if err := svc.ResetPassword(ctx, token, "brandnewpass", ClientMeta{}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "brandnewpass", ClientMeta{}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "s3cretpass", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must be dead, got %v", err)
	}

	// The token was one-shot.
	if err := svc.ResetPassword(ctx, token, "anothernewpass", ClientMeta{}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on reuse, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "", ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, res.User.ID, "wrong", "brandnewpass", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, res.User.ID, "s3cretpass", "short", ClientMeta{}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, res.User.ID, "s3cretpass", "brandnewpass", ClientMeta{}); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "brandnewpass", ClientMeta{}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuthSvc(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "ada@example.com", "s3cretpass", "Ada", ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "Ada L."
	bio := "nomad"
	u, err := svc.UpdateProfile(ctx, res.User.ID, ProfileInput{Name: &name, Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Ada L." || u.Bio != "nomad" {
		t.Fatalf("profile not applied: %+v", u)
	}

	if _, err := svc.Profile(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
