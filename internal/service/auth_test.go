package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/infra/memstore"

	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 30*24*time.Hour, zap.NewNop())
	return svc, store
}

func register(t *testing.T, svc *AuthService) *domain.RegisterResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:       "maria@example.com",
		DisplayName: "Maria",
		Password:    "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg := register(t, svc)
	if reg.UserID == "" {
		t.Fatal("expected user id")
	}

	login, err := svc.Login(ctx, &domain.LoginRequest{Email: "maria@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if login.UserID != reg.UserID {
		t.Errorf("login user id %s, want %s", login.UserID, reg.UserID)
	}
	if login.DisplayName != "Maria" {
		t.Errorf("display name %s, want Maria", login.DisplayName)
	}

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != reg.UserID {
		t.Errorf("claims sub %s, want %s", claims.Sub, reg.UserID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	register(t, svc)
	_, err := svc.Register(ctx, &domain.RegisterRequest{
		Email:       "maria@example.com",
		DisplayName: "Other Maria",
		Password:    "another-pass",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{"bad email", domain.RegisterRequest{Email: "nope", DisplayName: "X", Password: "longenough"}},
		{"short password", domain.RegisterRequest{Email: "a@b.com", DisplayName: "X", Password: "short"}},
		{"missing name", domain.RegisterRequest{Email: "a@b.com", Password: "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tt.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	register(t, svc)

	for _, attempt := range []domain.LoginRequest{
		{Email: "maria@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct-horse"},
	} {
		_, err := svc.Login(ctx, &attempt)
		var unauthorized *domain.ErrUnauthorized
		if !errors.As(err, &unauthorized) {
			t.Errorf("expected ErrUnauthorized for %s, got %v", attempt.Email, err)
		}
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	register(t, svc)
	login, err := svc.Login(ctx, &domain.LoginRequest{Email: "maria@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token must rotate")
	}

	// Replaying the old token must fail and revoke the session family.
	_, err = svc.Refresh(ctx, &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized on replay, got %v", err)
	}
	_, err = svc.Refresh(ctx, &domain.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	if !errors.As(err, &unauthorized) {
		t.Errorf("expected the whole family revoked after replay, got %v", err)
	}
}

func TestLogout_RevokesRefreshTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg := register(t, svc)
	login, err := svc.Login(ctx, &domain.LoginRequest{Email: "maria@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, reg.UserID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Refresh(ctx, &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Errorf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg := register(t, svc)

	err := svc.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-pass",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, reg.UserID, &domain.ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "brand-new-pass",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Login(ctx, &domain.LoginRequest{Email: "maria@example.com", Password: "correct-horse"}); err == nil {
		t.Error("old password must stop working")
	}
	if _, err := svc.Login(ctx, &domain.LoginRequest{Email: "maria@example.com", Password: "brand-new-pass"}); err != nil {
		t.Errorf("new password must work: %v", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Error("expected error for garbage token")
	}

	other := NewAuthService(memstore.New(), "other-secret", time.Minute, time.Hour, zap.NewNop())
	token, err := other.signAccessToken("user-1", "a@b.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}
