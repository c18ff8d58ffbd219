package portfolio

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

func newTestAuth(t *testing.T) (*Auth, *SQLStore) {
	t.Helper()
	s := newTestStore(t)
	return newAuthWithCost(s, logger.Nop(), bcrypt.MinCost), s
}

func TestAuthCreateUserValidation(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "Me@Example.com ", "longenough", false},
		{"no at sign", "me.example.com", "longenough", true},
		{"short password", "you@example.com", "short", true},
		{"duplicate", "me@example.com", "longenough", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := a.CreateUser(ctx, tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateUser(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
			if err == nil && u.Email != "me@example.com" {
				t.Errorf("email not normalised: %q", u.Email)
			}
		})
	}
}

func TestAuthSignIn(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()
	u, err := a.CreateUser(ctx, "me@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}

	s, err := a.SignIn(ctx, " ME@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if s.UserID != u.ID || s.Email != u.Email || s.IssuedAt.IsZero() {
		t.Errorf("unexpected session: %+v", s)
	}

	if _, err := a.SignIn(ctx, "me@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.SignIn(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	got, err := a.CurrentUser(ctx, content.ViewerFor(s))
	if err != nil || got.ID != u.ID {
		t.Errorf("CurrentUser = %+v, %v", got, err)
	}
	if _, err := a.CurrentUser(ctx, content.Anonymous); !errors.Is(err, ErrNotFound) {
		t.Errorf("anonymous CurrentUser: expected ErrNotFound, got %v", err)
	}
}

func TestAuthBootstrap(t *testing.T) {
	a, s := newTestAuth(t)
	ctx := context.Background()

	if err := a.Bootstrap(ctx, "", ""); err != nil {
		t.Fatalf("Bootstrap without credentials: %v", err)
	}
	if n, _ := s.CountUsers(ctx); n != 0 {
		t.Fatalf("expected no users, got %d", n)
	}

	if err := a.Bootstrap(ctx, "admin@example.com", "password123"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	// A second bootstrap with other credentials is ignored.
	if err := a.Bootstrap(ctx, "other@example.com", "password456"); err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}
	if n, _ := s.CountUsers(ctx); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
	if _, err := a.SignIn(ctx, "admin@example.com", "password123"); err != nil {
		t.Errorf("bootstrapped admin cannot sign in: %v", err)
	}
}
