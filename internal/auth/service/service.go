// Package service implements registration, login, and access token issuance.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"clientdesk_backend/internal/auth/repository"
	"clientdesk_backend/platform/apperr"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, u *repository.User) error
	FindByEmail(ctx context.Context, email string) (repository.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (repository.User, error)
}

// Service handles account creation and credential verification.
type Service struct {
	repo  Repository
	cfg   config.AuthServiceConfig
	clock clock.Clock
}

func New(repo Repository, cfg config.AuthServiceConfig, clk clock.Clock) *Service {
	return &Service{repo: repo, cfg: cfg, clock: clk}
}

// TokenPair is the login result. Only an access token is issued; sessions are
// kept short-lived and re-authenticated.
type TokenPair struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, name string) (repository.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return repository.User{}, apperr.Validation("email is required")
	}
	if len(password) < 8 {
		return repository.User{}, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user := &repository.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Roles:        []string{"member"},
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return repository.User{}, apperr.New(apperr.KindConflict, "email already registered")
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}
	return *user, nil
}

// Login verifies credentials and issues an access token. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (repository.User, TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, TokenPair{}, apperr.Unauthorized("invalid credentials")
		}
		return repository.User{}, TokenPair{}, apperr.Wrap(apperr.KindInternal, "login lookup failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return repository.User{}, TokenPair{}, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issueToken(user)
	if err != nil {
		return repository.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Me returns the account for an authenticated user id.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (repository.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return user, err
}

func (s *Service) issueToken(user repository.User) (TokenPair, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"roles": user.Roles,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	return TokenPair{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
