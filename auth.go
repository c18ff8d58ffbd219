package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

const minPasswordLength = 8

// Auth signs admins in against the users table.
type Auth struct {
	store Store
	log   logger.Logger
	cost  int

	// dummyHash is compared against when the email is unknown so both
	// failure paths take about as long.
	dummyHash []byte
}

// NewAuth creates an Auth using bcrypt.DefaultCost.
func NewAuth(s Store, log logger.Logger) *Auth {
	return newAuthWithCost(s, log, bcrypt.DefaultCost)
}

func newAuthWithCost(s Store, log logger.Logger, cost int) *Auth {
	if log == nil {
		log = logger.Nop()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), cost)
	return &Auth{store: s, log: log, cost: cost, dummyHash: dummy}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers an admin account.
func (a *Auth) CreateUser(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{Email: email, PasswordHash: string(hash)}
	if err := a.store.CreateUser(ctx, &u); err != nil {
		return User{}, err
	}
	a.log.Info("admin user created", logger.String("email", email))
	return u, nil
}

// Bootstrap creates the first admin from configuration when no user exists.
// Once any user exists it does nothing.
func (a *Auth) Bootstrap(ctx context.Context, email, password string) error {
	n, err := a.store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	if email == "" || password == "" {
		a.log.Warn("no admin user exists; set admin_email and admin_password or run `portfolio user add`")
		return nil
	}
	_, err = a.CreateUser(ctx, email, password)
	return err
}

// SignIn checks the credentials and returns a new session.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*content.Session, error) {
	u, err := a.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &content.Session{UserID: u.ID, Email: u.Email, IssuedAt: time.Now().UTC()}, nil
}

// CurrentUser returns the account behind the viewer's session.
func (a *Auth) CurrentUser(ctx context.Context, v content.Viewer) (User, error) {
	if !v.Authenticated() {
		return User{}, ErrNotFound
	}
	return a.store.GetUser(ctx, v.Session.UserID)
}
